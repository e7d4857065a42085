package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
)

// QuestionStore defines the interface for the read-mostly question pool.
// The assessment engine only ever reads; CreateMultiple exists so fixture
// and seed pools can be loaded.
type QuestionStore interface {
	// GetPool returns every question for the given subject and difficulty
	// band. The engine assumes no pagination: band pools are small, fixed
	// sets. An empty result is not an error at this layer; the selector
	// decides whether it is fatal.
	GetPool(ctx context.Context, subject string, band domain.Tier) ([]domain.Question, error)

	// GetByID retrieves a question by its unique ID.
	// Returns ErrQuestionNotFound if the question does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)

	// CreateMultiple saves multiple questions to the store. Run it within a
	// transaction (via WithTx and RunInTransaction) so a partially loaded
	// pool never becomes visible.
	// Returns validation errors if any question data is invalid.
	CreateMultiple(ctx context.Context, questions []*domain.Question) error

	// WithTx returns a new QuestionStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) QuestionStore
}
