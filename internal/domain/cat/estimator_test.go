package cat

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record builds one trace entry for estimator tests.
func record(tier domain.Tier, correct bool, index int) domain.AnswerRecord {
	return domain.AnswerRecord{
		QuestionID:      uuid.New(),
		Tier:            tier,
		Topic:           "arithmetic",
		SubmittedAnswer: "42",
		IsCorrect:       correct,
		ResponseTimeMs:  8000,
		SequenceIndex:   index,
		Timestamp:       time.Now().UTC(),
	}
}

func uniformTrace(tier domain.Tier, correct bool, n int) []domain.AnswerRecord {
	trace := make([]domain.AnswerRecord, n)
	for i := range trace {
		trace[i] = record(tier, correct, i)
	}
	return trace
}

func alternatingTrace(tier domain.Tier, n int) []domain.AnswerRecord {
	trace := make([]domain.AnswerRecord, n)
	for i := range trace {
		trace[i] = record(tier, i%2 == 0, i)
	}
	return trace
}

func allStrategies() []Strategy {
	return []Strategy{StrategyItemResponse, StrategyWeightedAverage, StrategyRuleBased, StrategyHybrid}
}

func TestNewEstimator(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()

	for _, strategy := range allStrategies() {
		est, err := NewEstimator(strategy, params)
		require.NoError(t, err)
		assert.Equal(t, strategy, est.Strategy())
	}

	_, err := NewEstimator(Strategy("oracle"), params)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestEstimateEmptyTrace(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()

	for _, strategy := range allStrategies() {
		est, err := NewEstimator(strategy, params)
		require.NoError(t, err)

		result := est.Estimate(nil)
		assert.Equal(t, AbilityMidpoint, result.Ability, "strategy %s", strategy)
		assert.Equal(t, AbilityMin, result.Low, "strategy %s", strategy)
		assert.Equal(t, AbilityMax, result.High, "strategy %s", strategy)
	}
}

func TestEstimateSaturation(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	est, err := NewEstimator(StrategyItemResponse, params)
	require.NoError(t, err)

	allCorrect := est.Estimate(uniformTrace(domain.TierHard, true, 10))
	assert.Equal(t, AbilityMax, allCorrect.Ability,
		"all-correct trace saturates at the scale maximum instead of diverging")

	allWrong := est.Estimate(uniformTrace(domain.TierEasy, false, 10))
	assert.Equal(t, AbilityMin, allWrong.Ability,
		"all-incorrect trace saturates at the scale minimum")
}

func TestEstimateOrdering(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()

	stronger := alternatingTrace(domain.TierMedium, 8)
	weaker := alternatingTrace(domain.TierMedium, 8)
	// Flip two of the stronger learner's misses into hits.
	stronger[1].IsCorrect = true
	stronger[3].IsCorrect = true

	for _, strategy := range []Strategy{StrategyItemResponse, StrategyWeightedAverage, StrategyHybrid} {
		est, err := NewEstimator(strategy, params)
		require.NoError(t, err)

		assert.Greater(t,
			est.Estimate(stronger).Ability,
			est.Estimate(weaker).Ability,
			"strategy %s ranks the stronger pattern higher", strategy)
	}
}

func TestEstimateBoundsRespected(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	traces := [][]domain.AnswerRecord{
		uniformTrace(domain.TierHard, true, 20),
		uniformTrace(domain.TierEasy, false, 20),
		alternatingTrace(domain.TierMedium, 7),
	}

	for _, strategy := range allStrategies() {
		est, err := NewEstimator(strategy, params)
		require.NoError(t, err)

		for _, trace := range traces {
			result := est.Estimate(trace)
			assert.GreaterOrEqual(t, result.Ability, AbilityMin)
			assert.LessOrEqual(t, result.Ability, AbilityMax)
			assert.GreaterOrEqual(t, result.Low, AbilityMin)
			assert.LessOrEqual(t, result.High, AbilityMax)
			assert.LessOrEqual(t, result.Low, result.High)
		}
	}
}

// Interval width must never grow as answers accumulate, whichever strategy
// is active.
func TestConfidenceWidthNonIncreasing(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	full := alternatingTrace(domain.TierMedium, 14)

	for _, strategy := range allStrategies() {
		est, err := NewEstimator(strategy, params)
		require.NoError(t, err)

		prev := est.Estimate(nil).Width()
		for n := 1; n <= len(full); n++ {
			width := est.Estimate(full[:n]).Width()
			assert.LessOrEqual(t, width, prev+1e-9,
				"strategy %s width grew at trace length %d", strategy, n)
			prev = width
		}
	}
}

func TestEstimateDeterministic(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	trace := alternatingTrace(domain.TierMedium, 9)

	for _, strategy := range allStrategies() {
		est, err := NewEstimator(strategy, params)
		require.NoError(t, err)

		first := est.Estimate(trace)
		second := est.Estimate(trace)
		assert.Equal(t, first, second, "strategy %s is pure", strategy)
	}
}

func TestWeightedAverageDemonstratedLevel(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	est, err := NewEstimator(StrategyWeightedAverage, params)
	require.NoError(t, err)

	// A correct medium answer demonstrates a level above the band midpoint,
	// an incorrect one a level below it; a balanced pair averages out.
	trace := []domain.AnswerRecord{
		record(domain.TierMedium, true, 0),
		record(domain.TierMedium, false, 1),
	}
	result := est.Estimate(trace)
	assert.InDelta(t, domain.TierMedium.Difficulty(), result.Ability, 1e-9)
}

func TestRuleBasedBuckets(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	est, err := NewEstimator(StrategyRuleBased, params)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		trace    []domain.AnswerRecord
		expected float64
	}{
		{
			name:     "dominant hard accuracy",
			trace:    uniformTrace(domain.TierHard, true, 10),
			expected: 9.0,
		},
		{
			name: "solid hard accuracy",
			trace: append(uniformTrace(domain.TierHard, true, 3),
				record(domain.TierHard, false, 3), record(domain.TierHard, false, 4)),
			expected: 7.5,
		},
		{
			name:     "balanced medium accuracy",
			trace:    alternatingTrace(domain.TierMedium, 8),
			expected: 5.0,
		},
		{
			name:     "strong easy accuracy only",
			trace:    uniformTrace(domain.TierEasy, true, 5),
			expected: 4.0,
		},
		{
			name:     "struggling everywhere",
			trace:    uniformTrace(domain.TierEasy, false, 5),
			expected: 1.5,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.expected, est.Estimate(tc.trace).Ability, 1e-9)
		})
	}
}

func TestHybridBlendStaysWithinComponents(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	hybrid, err := NewEstimator(StrategyHybrid, params)
	require.NoError(t, err)

	trace := alternatingTrace(domain.TierMedium, 10)

	var lo, hi float64 = AbilityMax, AbilityMin
	for _, strategy := range []Strategy{StrategyItemResponse, StrategyWeightedAverage, StrategyRuleBased} {
		est, err := NewEstimator(strategy, params)
		require.NoError(t, err)
		ability := est.Estimate(trace).Ability
		if ability < lo {
			lo = ability
		}
		if ability > hi {
			hi = ability
		}
	}

	blended := hybrid.Estimate(trace).Ability
	assert.GreaterOrEqual(t, blended, lo, "blend cannot undershoot every component")
	assert.LessOrEqual(t, blended, hi, "blend cannot overshoot every component")
}
