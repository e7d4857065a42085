package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/platform/logger"
	"github.com/quizmith/adapt-api/internal/store"
)

// PostgresQuestionStore implements the store.QuestionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresQuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionStore creates a new PostgreSQL implementation of the
// QuestionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresQuestionStore(db store.DBTX, logger *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

// Ensure PostgresQuestionStore implements store.QuestionStore interface
var _ store.QuestionStore = (*PostgresQuestionStore)(nil)

const questionColumns = `id, subject, topic, difficulty_tier, text, correct_answer, options, created_at`

// scanQuestion reads a question row, decoding the JSONB options column.
func scanQuestion(scan func(dest ...any) error) (*domain.Question, error) {
	var (
		q       domain.Question
		tier    string
		options []byte
	)

	err := scan(
		&q.ID,
		&q.Subject,
		&q.Topic,
		&tier,
		&q.Text,
		&q.CorrectAnswer,
		&options,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	q.Tier = domain.Tier(tier)
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options: %w", err)
		}
	}

	return &q, nil
}

// GetPool implements store.QuestionStore.GetPool
// It returns every question in the subject's difficulty band, ordered by ID
// so callers see a stable pool ordering.
func (s *PostgresQuestionStore) GetPool(ctx context.Context, subject string, band domain.Tier) ([]domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE subject = $1 AND difficulty_tier = $2
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, subject, string(band))
	if err != nil {
		log.Error("failed to query question pool",
			slog.String("error", err.Error()),
			slog.String("subject", subject),
			slog.String("band", string(band)))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var pool []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, MapError(err)
		}
		pool = append(pool, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return pool, nil
}

// GetByID implements store.QuestionStore.GetByID
// Returns store.ErrQuestionNotFound if the question does not exist.
func (s *PostgresQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE id = $1
	`
	q, err := scanQuestion(s.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug("question not found", slog.String("question_id", id.String()))
			return nil, store.ErrQuestionNotFound
		}
		log.Error("failed to get question",
			slog.String("error", err.Error()),
			slog.String("question_id", id.String()))
		return nil, MapError(err)
	}

	return q, nil
}

// CreateMultiple implements store.QuestionStore.CreateMultiple
// It validates every question before writing any of them. Callers should
// run this inside a transaction so a partial pool never becomes visible.
func (s *PostgresQuestionStore) CreateMultiple(ctx context.Context, questions []*domain.Question) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, q := range questions {
		if err := q.Validate(); err != nil {
			log.Warn("question validation failed during create",
				slog.String("error", err.Error()),
				slog.String("question_id", q.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	query := `
		INSERT INTO questions (` + questionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("failed to encode options: %w", err)
		}

		_, err = s.db.ExecContext(
			ctx,
			query,
			q.ID,
			q.Subject,
			q.Topic,
			string(q.Tier),
			q.Text,
			q.CorrectAnswer,
			options,
			q.CreatedAt,
		)
		if err != nil {
			log.Error("failed to insert question",
				slog.String("error", err.Error()),
				slog.String("question_id", q.ID.String()))
			return MapError(err)
		}
	}

	log.Info("questions created", slog.Int("count", len(questions)))
	return nil
}

// WithTx implements store.QuestionStore.WithTx
// It returns a new QuestionStore instance that uses the provided transaction.
func (s *PostgresQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return &PostgresQuestionStore{
		db:     tx,
		logger: s.logger,
	}
}
