package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/store"
)

// QuestionStore is an in-memory implementation of store.QuestionStore.
type QuestionStore struct {
	mu        sync.Mutex
	questions map[uuid.UUID]domain.Question
}

// Ensure QuestionStore implements store.QuestionStore
var _ store.QuestionStore = (*QuestionStore)(nil)

// NewQuestionStore creates an in-memory question store preloaded with the
// given fixture questions.
func NewQuestionStore(questions ...*domain.Question) *QuestionStore {
	qs := &QuestionStore{
		questions: make(map[uuid.UUID]domain.Question, len(questions)),
	}
	for _, q := range questions {
		qs.questions[q.ID] = *q
	}
	return qs
}

// GetPool implements store.QuestionStore.GetPool
// Results are ordered by ID for a stable pool ordering, matching the
// postgres store.
func (s *QuestionStore) GetPool(_ context.Context, subject string, band domain.Tier) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pool []domain.Question
	for _, q := range s.questions {
		if q.Subject == subject && q.Tier == band {
			pool = append(pool, q)
		}
	}

	sort.Slice(pool, func(i, j int) bool {
		return pool[i].ID.String() < pool[j].ID.String()
	})

	return pool, nil
}

// GetByID implements store.QuestionStore.GetByID
func (s *QuestionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, store.ErrQuestionNotFound
	}

	return &q, nil
}

// CreateMultiple implements store.QuestionStore.CreateMultiple
func (s *QuestionStore) CreateMultiple(_ context.Context, questions []*domain.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range questions {
		if _, exists := s.questions[q.ID]; exists {
			return store.ErrDuplicate
		}
	}
	for _, q := range questions {
		s.questions[q.ID] = *q
	}

	return nil
}

// WithTx implements store.QuestionStore.WithTx
// The in-memory store has no transactions; it returns itself.
func (s *QuestionStore) WithTx(_ *sql.Tx) store.QuestionStore {
	return s
}
