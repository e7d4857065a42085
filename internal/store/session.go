package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
)

// SessionStore defines the interface for assessment session persistence.
// The session row carries a version counter; Update rejects stale writes so
// two concurrent submissions against the same session can never interleave.
type SessionStore interface {
	// Create saves a new assessment session.
	// Returns validation errors from the domain session if data is invalid.
	// Returns ErrDuplicate if a session with the same ID already exists.
	Create(ctx context.Context, session *domain.AssessmentSession) error

	// Get retrieves a session by its unique ID, including the full ordered
	// answer trace and pool-reset audit log.
	// Returns ErrSessionNotFound if the session does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.AssessmentSession, error)

	// Update persists the session using optimistic concurrency: the write
	// only succeeds if the stored version still matches session.Version,
	// and increments the version on success (both in the row and on the
	// passed session).
	// Returns ErrSessionNotFound if the session does not exist.
	// Returns ErrVersionConflict if the row changed since it was loaded.
	Update(ctx context.Context, session *domain.AssessmentSession) error

	// ListInProgressBefore returns sessions still in_progress whose
	// started_at is older than the cutoff. Used by the abandoned-session
	// sweeper; results are ordered by started_at ascending and capped at
	// limit (0 means no cap).
	ListInProgressBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.AssessmentSession, error)

	// WithTx returns a new SessionStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service).
	WithTx(tx *sql.Tx) SessionStore
}
