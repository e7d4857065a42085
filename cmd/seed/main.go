// Package main implements the question-pool seeding utility. It reads a
// JSON fixture file and inserts every question in a single transaction, so
// a failed run leaves the pool untouched.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/quizmith/adapt-api/internal/config"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/platform/logger"
	"github.com/quizmith/adapt-api/internal/platform/postgres"
	"github.com/quizmith/adapt-api/internal/store"
)

// seedQuestion is the fixture-file form of one question.
type seedQuestion struct {
	Subject       string   `json:"subject"`
	Topic         string   `json:"topic"`
	Tier          string   `json:"difficulty_tier"`
	Text          string   `json:"text"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options"`
}

func main() {
	file := flag.String("file", "questions.json", "path to the question fixture file")
	flag.Parse()

	if err := run(*file); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func run(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	slogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	questions, err := loadQuestions(path)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slogger.Error("Failed to close database", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	questionStore := postgres.NewPostgresQuestionStore(db, slogger)
	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return questionStore.WithTx(tx).CreateMultiple(ctx, questions)
	})
	if err != nil {
		return fmt.Errorf("failed to insert questions: %w", err)
	}

	slogger.Info("Question pool seeded",
		slog.Int("count", len(questions)),
		slog.String("file", path))
	return nil
}

// loadQuestions parses and validates the fixture file.
func loadQuestions(path string) ([]*domain.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var seeds []seedQuestion
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse fixture file: %w", err)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("fixture file %q contains no questions", path)
	}

	questions := make([]*domain.Question, 0, len(seeds))
	for i, seed := range seeds {
		q, err := domain.NewQuestion(
			seed.Subject,
			seed.Topic,
			domain.Tier(seed.Tier),
			seed.Text,
			seed.CorrectAnswer,
			seed.Options,
		)
		if err != nil {
			return nil, fmt.Errorf("invalid question at index %d: %w", i, err)
		}
		questions = append(questions, q)
	}

	return questions, nil
}
