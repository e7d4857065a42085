package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/platform/logger"
	"github.com/quizmith/adapt-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface.
// It accepts a database connection or transaction that should be initialized
// and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// sessionRow carries the JSONB-encoded columns between the domain session
// and the database row.
type sessionRow struct {
	quota       []byte
	trace       []byte
	resets      []byte
	profile     []byte
	completedAt sql.NullTime
	finalScore  sql.NullFloat64
}

// encodeSession serializes the session's composite fields for storage.
func encodeSession(session *domain.AssessmentSession) (*sessionRow, error) {
	quota, err := json.Marshal(session.QuotaRemaining)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quota: %w", err)
	}

	trace, err := json.Marshal(session.AnswerTrace)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answer trace: %w", err)
	}

	resets, err := json.Marshal(session.PoolResets)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pool resets: %w", err)
	}

	row := &sessionRow{quota: quota, trace: trace, resets: resets}

	if session.Profile != nil {
		row.profile, err = json.Marshal(session.Profile)
		if err != nil {
			return nil, fmt.Errorf("failed to encode profile: %w", err)
		}
	}
	if session.CompletedAt != nil {
		row.completedAt = sql.NullTime{Time: *session.CompletedAt, Valid: true}
	}
	if session.FinalAbility != nil {
		row.finalScore = sql.NullFloat64{Float64: *session.FinalAbility, Valid: true}
	}

	return row, nil
}

// decodeInto deserializes the composite columns back onto the session.
func (r *sessionRow) decodeInto(session *domain.AssessmentSession) error {
	if err := json.Unmarshal(r.quota, &session.QuotaRemaining); err != nil {
		return fmt.Errorf("failed to decode quota: %w", err)
	}

	if err := json.Unmarshal(r.trace, &session.AnswerTrace); err != nil {
		return fmt.Errorf("failed to decode answer trace: %w", err)
	}

	if len(r.resets) > 0 {
		if err := json.Unmarshal(r.resets, &session.PoolResets); err != nil {
			return fmt.Errorf("failed to decode pool resets: %w", err)
		}
	}

	if len(r.profile) > 0 {
		session.Profile = &domain.LearnerProfile{}
		if err := json.Unmarshal(r.profile, session.Profile); err != nil {
			return fmt.Errorf("failed to decode profile: %w", err)
		}
	}
	if r.completedAt.Valid {
		t := r.completedAt.Time
		session.CompletedAt = &t
	}
	if r.finalScore.Valid {
		score := r.finalScore.Float64
		session.FinalAbility = &score
	}

	return nil
}

// Create implements store.SessionStore.Create
// It saves a new assessment session to the database, handling domain validation.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.AssessmentSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	row, err := encodeSession(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO assessment_sessions (
			id, learner_id, subject, status, current_index, difficulty_tier,
			quota_remaining, answer_trace, pool_resets, final_ability,
			profile, version, started_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.LearnerID,
		session.Subject,
		string(session.Status),
		session.CurrentIndex,
		string(session.Tier),
		row.quota,
		row.trace,
		row.resets,
		row.finalScore,
		row.profile,
		session.Version,
		session.StartedAt,
		row.completedAt,
	)
	if err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("learner_id", session.LearnerID.String()))
		return MapError(err)
	}

	log.Info("session created",
		slog.String("session_id", session.ID.String()),
		slog.String("learner_id", session.LearnerID.String()),
		slog.String("subject", session.Subject))
	return nil
}

// Get implements store.SessionStore.Get
// It retrieves a session by its unique ID, including the full answer trace.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.AssessmentSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, learner_id, subject, status, current_index, difficulty_tier,
		       quota_remaining, answer_trace, pool_resets, final_ability,
		       profile, version, started_at, completed_at
		FROM assessment_sessions
		WHERE id = $1
	`

	var (
		session domain.AssessmentSession
		row     sessionRow
		status  string
		tier    string
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.LearnerID,
		&session.Subject,
		&status,
		&session.CurrentIndex,
		&tier,
		&row.quota,
		&row.trace,
		&row.resets,
		&row.finalScore,
		&row.profile,
		&session.Version,
		&session.StartedAt,
		&row.completedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug("session not found", slog.String("session_id", id.String()))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}

	session.Status = domain.SessionStatus(status)
	session.Tier = domain.Tier(tier)
	if err := row.decodeInto(&session); err != nil {
		log.Error("failed to decode session row",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, err
	}

	return &session, nil
}

// Update implements store.SessionStore.Update
// It persists the session with optimistic concurrency on the version column.
// Returns store.ErrVersionConflict if the row was modified since load, and
// store.ErrSessionNotFound if the session does not exist at all.
func (s *PostgresSessionStore) Update(ctx context.Context, session *domain.AssessmentSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	row, err := encodeSession(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE assessment_sessions
		SET status = $1,
		    current_index = $2,
		    difficulty_tier = $3,
		    quota_remaining = $4,
		    answer_trace = $5,
		    pool_resets = $6,
		    final_ability = $7,
		    profile = $8,
		    version = version + 1,
		    completed_at = $9
		WHERE id = $10 AND version = $11
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		string(session.Status),
		session.CurrentIndex,
		string(session.Tier),
		row.quota,
		row.trace,
		row.resets,
		row.finalScore,
		row.profile,
		row.completedAt,
		session.ID,
		session.Version,
	)
	if err != nil {
		log.Error("failed to update session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}

	if affected == 0 {
		// Either the row is gone or someone else won the version race.
		var exists bool
		checkErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM assessment_sessions WHERE id = $1)`,
			session.ID,
		).Scan(&exists)
		if checkErr != nil {
			return MapError(checkErr)
		}
		if !exists {
			return store.ErrSessionNotFound
		}

		log.Warn("optimistic concurrency conflict on session update",
			slog.String("session_id", session.ID.String()),
			slog.Int64("version", session.Version))
		return store.ErrVersionConflict
	}

	session.Version++

	log.Debug("session updated",
		slog.String("session_id", session.ID.String()),
		slog.String("status", string(session.Status)),
		slog.Int("current_index", session.CurrentIndex),
		slog.Int64("version", session.Version))
	return nil
}

// ListInProgressBefore implements store.SessionStore.ListInProgressBefore
// It returns in_progress sessions older than the cutoff, for the
// abandoned-session sweeper.
func (s *PostgresSessionStore) ListInProgressBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.AssessmentSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id
		FROM assessment_sessions
		WHERE status = $1 AND started_at < $2
		ORDER BY started_at ASC
	`
	args := []any{string(domain.SessionInProgress), cutoff}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list stale sessions", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	// Load each session in full; the sweep set is small and the Get path
	// already handles all the JSONB decoding.
	sessions := make([]*domain.AssessmentSession, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// WithTx implements store.SessionStore.WithTx
// It returns a new SessionStore instance that uses the provided transaction.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}
