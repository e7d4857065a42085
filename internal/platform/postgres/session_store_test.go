package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRowRoundTrip(t *testing.T) {
	t.Parallel()

	sess, err := domain.NewAssessmentSession(uuid.New(), "math", domain.TierEasy, map[domain.Tier]int{
		domain.TierEasy:   7,
		domain.TierMedium: 6,
		domain.TierHard:   7,
	})
	require.NoError(t, err)
	require.NoError(t, sess.Transition(domain.SessionInProgress))

	rec := domain.AnswerRecord{
		QuestionID:      uuid.New(),
		Tier:            domain.TierEasy,
		Topic:           "fractions",
		SubmittedAnswer: "3/4",
		IsCorrect:       true,
		ResponseTimeMs:  6200,
		SequenceIndex:   0,
		Timestamp:       time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, sess.AppendAnswer(&rec))
	sess.RecordPoolReset(domain.TierEasy, time.Now().UTC().Truncate(time.Microsecond))

	completedAt := time.Now().UTC().Truncate(time.Microsecond)
	ability := 5.4
	sess.CompletedAt = &completedAt
	sess.FinalAbility = &ability
	sess.Profile = &domain.LearnerProfile{
		AbilityEstimate:  5.4,
		ConfidenceLow:    4.2,
		ConfidenceHigh:   6.6,
		ProficiencyLevel: domain.ProficiencyIntermediate,
		LearningStyle:    domain.StyleDeliberate,
		AccuracyByTier:   map[domain.Tier]float64{domain.TierEasy: 1.0},
		AccuracyByTopic:  map[string]float64{"fractions": 1.0},
		GeneratedAt:      completedAt,
	}

	row, err := encodeSession(sess)
	require.NoError(t, err)

	decoded := &domain.AssessmentSession{}
	require.NoError(t, row.decodeInto(decoded))

	assert.Equal(t, sess.QuotaRemaining, decoded.QuotaRemaining)
	assert.Equal(t, sess.AnswerTrace, decoded.AnswerTrace)
	assert.Equal(t, sess.PoolResets, decoded.PoolResets)
	require.NotNil(t, decoded.Profile)
	assert.Equal(t, *sess.Profile, *decoded.Profile)
	require.NotNil(t, decoded.FinalAbility)
	assert.Equal(t, ability, *decoded.FinalAbility)
	require.NotNil(t, decoded.CompletedAt)
	assert.True(t, completedAt.Equal(*decoded.CompletedAt))
}

func TestSessionRowRoundTripMinimal(t *testing.T) {
	t.Parallel()

	sess, err := domain.NewAssessmentSession(uuid.New(), "math", domain.TierEasy, map[domain.Tier]int{
		domain.TierEasy:   7,
		domain.TierMedium: 6,
		domain.TierHard:   7,
	})
	require.NoError(t, err)

	row, err := encodeSession(sess)
	require.NoError(t, err)

	decoded := &domain.AssessmentSession{}
	require.NoError(t, row.decodeInto(decoded))

	assert.Equal(t, sess.QuotaRemaining, decoded.QuotaRemaining)
	assert.Empty(t, decoded.AnswerTrace)
	assert.Empty(t, decoded.PoolResets)
	assert.Nil(t, decoded.Profile)
	assert.Nil(t, decoded.FinalAbility)
	assert.Nil(t, decoded.CompletedAt)
}
