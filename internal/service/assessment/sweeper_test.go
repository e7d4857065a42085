package assessment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/mocks"
	"github.com/quizmith/adapt-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSession stores an in_progress session whose start time lies the given
// age in the past.
func seedSession(t *testing.T, sessions *mocks.SessionStore, age time.Duration) *domain.AssessmentSession {
	t.Helper()

	sess, err := domain.NewAssessmentSession(uuid.New(), testSubject, domain.TierEasy, map[domain.Tier]int{
		domain.TierEasy:   7,
		domain.TierMedium: 6,
		domain.TierHard:   7,
	})
	require.NoError(t, err)
	require.NoError(t, sess.Transition(domain.SessionInProgress))
	sess.StartedAt = time.Now().UTC().Add(-age)
	require.NoError(t, sessions.Create(context.Background(), sess))
	return sess
}

func TestSweepAbandonsStaleSessions(t *testing.T) {
	t.Parallel()

	sessions := mocks.NewSessionStore()
	ctx := context.Background()

	stale := seedSession(t, sessions, 2*time.Hour)
	fresh := seedSession(t, sessions, time.Minute)

	sweeper := NewSweeper(sessions, SweeperConfig{
		Interval:  time.Minute,
		Retention: 30 * time.Minute,
	}, testLogger())

	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := sessions.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionAbandoned, got.Status)
	assert.NotNil(t, got.CompletedAt)

	got, err = sessions.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionInProgress, got.Status)

	// A second pass finds nothing left to abandon.
	n, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSweepSkipsSessionsTouchedMidSweep(t *testing.T) {
	t.Parallel()

	sessions := mocks.NewSessionStore()
	ctx := context.Background()

	stale := seedSession(t, sessions, 2*time.Hour)

	sweeper := NewSweeper(sessions, SweeperConfig{
		Interval:  time.Minute,
		Retention: 30 * time.Minute,
	}, testLogger())

	// A version conflict means a submission won the race; the session is
	// left alone and picked up on the next pass.
	sessions.UpdateErr = store.ErrVersionConflict
	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, err := sessions.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionInProgress, got.Status)

	n, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSweeperLifecycle(t *testing.T) {
	t.Parallel()

	sessions := mocks.NewSessionStore()
	stale := seedSession(t, sessions, 2*time.Hour)

	sweeper := NewSweeper(sessions, SweeperConfig{
		Interval:  10 * time.Millisecond,
		Retention: 30 * time.Minute,
	}, testLogger())

	sweeper.Start(context.Background())
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		got, err := sessions.Get(context.Background(), stale.ID)
		return err == nil && got.Status == domain.SessionAbandoned
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewSweeperValidation(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewSweeper(nil, SweeperConfig{Interval: time.Minute, Retention: time.Minute}, nil)
	})
	assert.Panics(t, func() {
		NewSweeper(mocks.NewSessionStore(), SweeperConfig{Interval: 0, Retention: time.Minute}, nil)
	})
	assert.Panics(t, func() {
		NewSweeper(mocks.NewSessionStore(), SweeperConfig{Interval: time.Minute, Retention: 0}, nil)
	})
}
