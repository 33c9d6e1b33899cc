package model

// SessionStatus is the two-state lifecycle of a search session.
type SessionStatus string

const (
	SessionActive   SessionStatus = "ACTIVE"
	SessionInactive SessionStatus = "INACTIVE"
)

// SearchSession is the per-user conversational search state. Sessions are keyed
// by user identifier and persisted as JSON in the session cache. Ending a
// session flips its status; sessions are never deleted.
type SearchSession struct {
	Status    SessionStatus    `json:"status"`
	LastQuery string           `json:"lastQuery,omitempty"`
	Results   []PropertyRecord `json:"results"`
	Filters   SearchParams     `json:"filters"`
}

// NewSearchSession builds the canonical empty ACTIVE session.
func NewSearchSession() *SearchSession {
	return &SearchSession{
		Status:  SessionActive,
		Results: []PropertyRecord{},
		Filters: SearchParams{},
	}
}
