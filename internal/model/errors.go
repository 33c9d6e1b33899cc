package model

import (
	"errors"
	"fmt"
)

// ErrNoSearchCriteria is returned by the orchestrator when a search request
// carries no populated constraints. Callers should re-prompt for criteria
// rather than report zero matches.
var ErrNoSearchCriteria = errors.New("no search criteria supplied")

// ErrSessionActive is returned when a new session is started for a user that
// already has an ACTIVE one. Silent overwrite would lose user-visible state.
var ErrSessionActive = errors.New("search session already active")

// ErrNoActiveSession is returned when a search requires an ACTIVE session and
// none exists.
var ErrNoActiveSession = errors.New("no active search session")

// InvalidParamsError reports malformed search parameters, such as an inverted
// range. It is surfaced to the caller immediately and never retried.
type InvalidParamsError struct {
	Field  string
	Reason string
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid search params: %s: %s", e.Field, e.Reason)
}

// SearchExecutionError reports a storage query failure during a search.
type SearchExecutionError struct {
	Err error
}

func (e *SearchExecutionError) Error() string {
	return fmt.Sprintf("search execution failed: %v", e.Err)
}

func (e *SearchExecutionError) Unwrap() error { return e.Err }

// PriceFetchError reports a marketplace price provider failure. The enrichment
// merger recovers from it internally; it never fails an overall search.
type PriceFetchError struct {
	Collection string
	Err        error
}

func (e *PriceFetchError) Error() string {
	return fmt.Sprintf("price fetch failed for collection %s: %v", e.Collection, e.Err)
}

func (e *PriceFetchError) Unwrap() error { return e.Err }
