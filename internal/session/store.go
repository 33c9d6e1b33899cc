// Package session owns the per-user search session lifecycle:
// (absent) -> ACTIVE -> INACTIVE. Sessions are persisted as JSON in a keyed
// cache; ending a session flips its status and never deletes it, so history is
// preserved. All operations are single-key read-modify-write with
// last-writer-wins semantics under concurrent access.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/metakai1/landsearch/internal/cache"
	"github.com/metakai1/landsearch/internal/model"
)

const keyPrefix = "property-search-"

// Store manages search sessions on top of a keyed cache.
type Store struct {
	cache  cache.Cache
	logger *logrus.Logger
}

// NewStore creates a session store.
func NewStore(c cache.Cache, logger *logrus.Logger) *Store {
	return &Store{cache: c, logger: logger}
}

func sessionKey(userID string) string {
	return keyPrefix + userID
}

// CreateSession writes a session for the user unconditionally, overwriting any
// existing one.
func (s *Store) CreateSession(ctx context.Context, userID string, sess *model.SearchSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKey(userID), payload); err != nil {
		return fmt.Errorf("failed to store session for %s: %w", userID, err)
	}
	return nil
}

// InitializeNewSession builds the canonical empty ACTIVE session and persists
// it. Starting a new session while one is ACTIVE is rejected with
// ErrSessionActive; overwriting silently would lose user-visible state.
func (s *Store) InitializeNewSession(ctx context.Context, userID string) (*model.SearchSession, error) {
	existing, err := s.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == model.SessionActive {
		return nil, model.ErrSessionActive
	}

	sess := model.NewSearchSession()
	if err := s.CreateSession(ctx, userID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession reads the user's session, or nil when none exists. Absence is a
// normal outcome, not an error.
func (s *Store) GetSession(ctx context.Context, userID string) (*model.SearchSession, error) {
	data, err := s.cache.Get(ctx, sessionKey(userID))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session for %s: %w", userID, err)
	}

	var sess model.SearchSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session for %s: %w", userID, err)
	}
	return &sess, nil
}

// UpdateResults replaces the result set on the user's session. When no session
// exists this is a silent no-op.
func (s *Store) UpdateResults(ctx context.Context, userID string, results []model.PropertyRecord) error {
	sess, err := s.GetSession(ctx, userID)
	if err != nil {
		return err
	}
	if sess == nil {
		s.logger.WithField("user_id", userID).Debug("update results skipped: no session")
		return nil
	}

	sess.Results = results
	return s.CreateSession(ctx, userID, sess)
}

// RecordSearch stores the latest query text, applied filters and result set on
// the user's session in a single write, for incremental refinement display.
// No-op when no session exists.
func (s *Store) RecordSearch(ctx context.Context, userID, query string, filters model.SearchParams, results []model.PropertyRecord) error {
	sess, err := s.GetSession(ctx, userID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	sess.LastQuery = query
	sess.Filters = filters
	sess.Results = results
	return s.CreateSession(ctx, userID, sess)
}

// EndSession transitions the user's session to INACTIVE, preserving its query,
// results and filters. Returns the ended session, or nil when none exists.
// Ending an already-INACTIVE session returns it unchanged.
func (s *Store) EndSession(ctx context.Context, userID string) (*model.SearchSession, error) {
	sess, err := s.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	sess.Status = model.SessionInactive
	if err := s.CreateSession(ctx, userID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
