package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/store"
)

// SessionStore is an in-memory implementation of store.SessionStore.
// Sessions are stored as deep copies so callers can never mutate stored
// state without going through Update.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.AssessmentSession

	// UpdateErr, when set, is returned by the next Update call and then
	// cleared. Useful for forcing failure paths in service tests.
	UpdateErr error
}

// Ensure SessionStore implements store.SessionStore
var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*domain.AssessmentSession),
	}
}

// cloneSession deep-copies a session so stored and returned states never
// alias each other.
func cloneSession(s *domain.AssessmentSession) *domain.AssessmentSession {
	clone := *s

	clone.QuotaRemaining = make(map[domain.Tier]int, len(s.QuotaRemaining))
	for band, n := range s.QuotaRemaining {
		clone.QuotaRemaining[band] = n
	}

	clone.AnswerTrace = append([]domain.AnswerRecord(nil), s.AnswerTrace...)
	clone.PoolResets = append([]domain.PoolResetEvent(nil), s.PoolResets...)

	if s.FinalAbility != nil {
		ability := *s.FinalAbility
		clone.FinalAbility = &ability
	}
	if s.CompletedAt != nil {
		completedAt := *s.CompletedAt
		clone.CompletedAt = &completedAt
	}
	if s.Profile != nil {
		profile := *s.Profile
		clone.Profile = &profile
	}

	return &clone
}

// Create implements store.SessionStore.Create
func (s *SessionStore) Create(_ context.Context, session *domain.AssessmentSession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return store.ErrDuplicate
	}

	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// Get implements store.SessionStore.Get
func (s *SessionStore) Get(_ context.Context, id uuid.UUID) (*domain.AssessmentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}

	return cloneSession(session), nil
}

// Update implements store.SessionStore.Update with the same optimistic
// concurrency semantics as the postgres store.
func (s *SessionStore) Update(_ context.Context, session *domain.AssessmentSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpdateErr != nil {
		err := s.UpdateErr
		s.UpdateErr = nil
		return err
	}

	if err := session.Validate(); err != nil {
		return err
	}

	stored, ok := s.sessions[session.ID]
	if !ok {
		return store.ErrSessionNotFound
	}

	if stored.Version != session.Version {
		return store.ErrVersionConflict
	}

	session.Version++
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// ListInProgressBefore implements store.SessionStore.ListInProgressBefore
func (s *SessionStore) ListInProgressBefore(_ context.Context, cutoff time.Time, limit int) ([]*domain.AssessmentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []*domain.AssessmentSession
	for _, session := range s.sessions {
		if session.Status == domain.SessionInProgress && session.StartedAt.Before(cutoff) {
			stale = append(stale, cloneSession(session))
		}
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].StartedAt.Before(stale[j].StartedAt)
	})

	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}

	return stale, nil
}

// WithTx implements store.SessionStore.WithTx
// The in-memory store has no transactions; it returns itself.
func (s *SessionStore) WithTx(_ *sql.Tx) store.SessionStore {
	return s
}
