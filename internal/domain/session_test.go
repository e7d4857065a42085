package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultQuota() map[Tier]int {
	return map[Tier]int{
		TierEasy:   7,
		TierMedium: 6,
		TierHard:   7,
	}
}

func newTestSession(t *testing.T) *AssessmentSession {
	t.Helper()
	sess, err := NewAssessmentSession(uuid.New(), "math", TierEasy, defaultQuota())
	require.NoError(t, err)
	return sess
}

func newTestRecord(t *testing.T, tier Tier, correct bool, index int) *AnswerRecord {
	t.Helper()
	q, err := NewQuestion("math", "fractions", tier, "2+2?", "4", nil)
	require.NoError(t, err)

	submitted := "4"
	if !correct {
		submitted = "5"
	}
	rec, err := NewAnswerRecord(q, submitted, correct, 1200, index, time.Now().UTC())
	require.NoError(t, err)
	return rec
}

func TestNewAssessmentSession(t *testing.T) {
	t.Parallel()

	quota := defaultQuota()
	sess, err := NewAssessmentSession(uuid.New(), "math", TierEasy, quota)
	require.NoError(t, err)

	assert.Equal(t, SessionNotStarted, sess.Status)
	assert.Equal(t, 0, sess.CurrentIndex)
	assert.Equal(t, int64(1), sess.Version)
	assert.Equal(t, 20, sess.TotalQuestions())
	assert.Empty(t, sess.AnswerTrace)

	quota[TierEasy] = 0
	assert.Equal(t, 7, sess.QuotaRemaining[TierEasy], "session copies the quota map")
}

func TestNewAssessmentSessionValidation(t *testing.T) {
	t.Parallel()

	_, err := NewAssessmentSession(uuid.Nil, "math", TierEasy, defaultQuota())
	assert.ErrorIs(t, err, ErrSessionLearnerIDEmpty)

	_, err = NewAssessmentSession(uuid.New(), "", TierEasy, defaultQuota())
	assert.ErrorIs(t, err, ErrSessionSubjectEmpty)

	_, err = NewAssessmentSession(uuid.New(), "math", Tier("brutal"), defaultQuota())
	assert.ErrorIs(t, err, ErrInvalidTier)

	_, err = NewAssessmentSession(uuid.New(), "math", TierEasy, nil)
	assert.ErrorIs(t, err, ErrSessionQuotaEmpty)
}

func TestSessionTransitions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		from    SessionStatus
		to      SessionStatus
		allowed bool
	}{
		{"not_started to in_progress", SessionNotStarted, SessionInProgress, true},
		{"not_started to completed", SessionNotStarted, SessionCompleted, false},
		{"in_progress to completed", SessionInProgress, SessionCompleted, true},
		{"in_progress to abandoned", SessionInProgress, SessionAbandoned, true},
		{"completed is terminal", SessionCompleted, SessionInProgress, false},
		{"abandoned is terminal", SessionAbandoned, SessionInProgress, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sess := newTestSession(t)
			sess.Status = tc.from

			err := sess.Transition(tc.to)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.to, sess.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidStatusTransition)
				assert.Equal(t, tc.from, sess.Status)
			}
		})
	}
}

func TestAppendAnswer(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t)
	require.NoError(t, sess.Transition(SessionInProgress))

	require.NoError(t, sess.AppendAnswer(newTestRecord(t, TierEasy, true, 0)))

	assert.Equal(t, 1, sess.CurrentIndex)
	assert.Len(t, sess.AnswerTrace, 1)
	assert.Equal(t, 6, sess.QuotaRemaining[TierEasy])
	assert.Equal(t, 19, sess.Remaining())
	assert.Equal(t, 20, sess.TotalQuestions(), "total stays fixed as quota converts to trace")
}

func TestAppendAnswerIndexMismatch(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t)
	err := sess.AppendAnswer(newTestRecord(t, TierEasy, true, 3))
	assert.ErrorIs(t, err, ErrTraceIndexMismatch)
	assert.Empty(t, sess.AnswerTrace)
}

func TestAppendAnswerQuotaExhausted(t *testing.T) {
	t.Parallel()

	sess, err := NewAssessmentSession(uuid.New(), "math", TierEasy, map[Tier]int{
		TierEasy:   1,
		TierMedium: 1,
		TierHard:   1,
	})
	require.NoError(t, err)

	require.NoError(t, sess.AppendAnswer(newTestRecord(t, TierEasy, true, 0)))

	err = sess.AppendAnswer(newTestRecord(t, TierEasy, true, 1))
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestPoolResetAudit(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t)
	assert.Equal(t, -1, sess.LastPoolResetIndex(TierEasy))

	sess.CurrentIndex = 3
	sess.RecordPoolReset(TierEasy, time.Now().UTC())
	sess.CurrentIndex = 9
	sess.RecordPoolReset(TierEasy, time.Now().UTC())
	sess.RecordPoolReset(TierHard, time.Now().UTC())

	assert.Equal(t, 9, sess.LastPoolResetIndex(TierEasy))
	assert.Equal(t, 9, sess.LastPoolResetIndex(TierHard))
	assert.Equal(t, -1, sess.LastPoolResetIndex(TierMedium))
	assert.Len(t, sess.PoolResets, 3)
}

func TestCheckConsistency(t *testing.T) {
	t.Parallel()

	t.Run("consistent session passes", func(t *testing.T) {
		t.Parallel()
		sess := newTestSession(t)
		require.NoError(t, sess.AppendAnswer(newTestRecord(t, TierEasy, true, 0)))
		require.NoError(t, sess.AppendAnswer(newTestRecord(t, TierMedium, false, 1)))
		assert.NoError(t, sess.CheckConsistency(20))
	})

	t.Run("trace length diverged from index", func(t *testing.T) {
		t.Parallel()
		sess := newTestSession(t)
		sess.CurrentIndex = 2
		assert.ErrorIs(t, sess.CheckConsistency(20), ErrTraceIndexMismatch)
	})

	t.Run("quota arithmetic mismatch", func(t *testing.T) {
		t.Parallel()
		sess := newTestSession(t)
		sess.QuotaRemaining[TierEasy] = 3
		assert.ErrorIs(t, sess.CheckConsistency(20), ErrQuotaArithmetic)
	})

	t.Run("record carries wrong index", func(t *testing.T) {
		t.Parallel()
		sess := newTestSession(t)
		require.NoError(t, sess.AppendAnswer(newTestRecord(t, TierEasy, true, 0)))
		sess.AnswerTrace[0].SequenceIndex = 5
		assert.ErrorIs(t, sess.CheckConsistency(20), ErrTraceIndexMismatch)
	})
}
