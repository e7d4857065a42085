package assessment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/store"
)

// sweepBatchLimit caps how many stale sessions one sweep pass touches.
const sweepBatchLimit = 100

// SweeperConfig holds the timing policy for the abandoned-session sweeper.
type SweeperConfig struct {
	// Interval between sweep passes.
	Interval time.Duration
	// Retention is how long an in_progress session may sit idle before it
	// is considered abandoned.
	Retention time.Duration
}

// Sweeper periodically abandons in_progress sessions whose learners walked
// away. Each session is saved through the optimistic-concurrency path, so a
// sweep can never clobber a submission happening at the same moment.
type Sweeper struct {
	sessions store.SessionStore
	cfg      SweeperConfig
	logger   *slog.Logger
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSweeper creates a new Sweeper.
// Panics if sessions is nil or the configured durations are not positive.
// If logger is nil, a default logger will be used.
func NewSweeper(sessions store.SessionStore, cfg SweeperConfig, logger *slog.Logger) *Sweeper {
	if sessions == nil {
		panic("session store cannot be nil")
	}
	if cfg.Interval <= 0 || cfg.Retention <= 0 {
		panic("sweep interval and retention must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "session_sweeper")),
		now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop in a background goroutine. The loop runs
// until Stop is called or the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.doneCh)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.logger.Info("session sweeper started",
			slog.Duration("interval", s.cfg.Interval),
			slog.Duration("retention", s.cfg.Retention))

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("session sweeper stopping", slog.String("reason", "context cancelled"))
				return
			case <-s.stopCh:
				s.logger.Info("session sweeper stopping", slog.String("reason", "stop requested"))
				return
			case <-ticker.C:
				if n, err := s.Sweep(ctx); err != nil {
					s.logger.Error("sweep pass failed", slog.String("error", err.Error()))
				} else if n > 0 {
					s.logger.Info("sweep pass abandoned stale sessions", slog.Int("count", n))
				}
			}
		}
	}()
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

// Sweep runs one pass: every in_progress session older than the retention
// window is moved to abandoned. Returns the number of sessions abandoned.
// A version conflict on an individual session means a submission touched it
// mid-sweep; that session is simply skipped and reconsidered next pass.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.Retention)

	stale, err := s.sessions.ListInProgressBefore(ctx, cutoff, sweepBatchLimit)
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for _, sess := range stale {
		if err := sess.Transition(domain.SessionAbandoned); err != nil {
			continue
		}
		completedAt := s.now()
		sess.CompletedAt = &completedAt

		if err := s.sessions.Update(ctx, sess); err != nil {
			if errors.Is(err, store.ErrVersionConflict) || store.IsNotFoundError(err) {
				s.logger.Debug("skipping session touched mid-sweep",
					slog.String("session_id", sess.ID.String()))
				continue
			}
			return abandoned, err
		}

		s.logger.Info("abandoned stale session",
			slog.String("session_id", sess.ID.String()),
			slog.String("learner_id", sess.LearnerID.String()),
			slog.Time("started_at", sess.StartedAt))
		abandoned++
	}

	return abandoned, nil
}
