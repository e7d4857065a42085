package cat

import (
	"math"

	"github.com/quizmith/adapt-api/internal/domain"
)

// demonstratedOffset is how far above an item's difficulty a correct answer
// places the demonstrated level, and how far below an incorrect one does.
// Half the gap between adjacent band midpoints.
const demonstratedOffset = 1.5

// weightedAverageEstimator averages the demonstrated level of each answer:
// a correct answer shows ability above the item's difficulty, an incorrect
// one shows ability below it. It is the stable fallback for traces too
// short for an item-response fit.
type weightedAverageEstimator struct {
	params *Params
}

var _ Estimator = (*weightedAverageEstimator)(nil)

func (e *weightedAverageEstimator) Strategy() Strategy { return StrategyWeightedAverage }

func (e *weightedAverageEstimator) Estimate(trace []domain.AnswerRecord) Estimate {
	if len(trace) == 0 {
		return maximalUncertainty()
	}

	var sum float64
	for _, rec := range trace {
		demonstrated := rec.Tier.Difficulty() - demonstratedOffset
		if rec.IsCorrect {
			demonstrated = rec.Tier.Difficulty() + demonstratedOffset
		}
		sum += demonstrated
	}

	ability := sum / float64(len(trace))
	halfWidth := e.params.WeightedBaseHalfWidth / math.Sqrt(float64(len(trace)+1))
	return clampedInterval(ability, halfWidth)
}

// ruleBasedEstimator assigns a discrete ability bucket from hand-authored
// accuracy thresholds, evaluated in priority order from strongest evidence
// to weakest.
type ruleBasedEstimator struct {
	params *Params
}

var _ Estimator = (*ruleBasedEstimator)(nil)

func (e *ruleBasedEstimator) Strategy() Strategy { return StrategyRuleBased }

func (e *ruleBasedEstimator) Estimate(trace []domain.AnswerRecord) Estimate {
	if len(trace) == 0 {
		return maximalUncertainty()
	}

	acc := accuracyByTier(trace)
	ability := bucketFor(acc)
	return clampedInterval(ability, e.params.RuleHalfWidth)
}

// tierAccuracy holds attempt counts and accuracy for one band.
type tierAccuracy struct {
	attempts int
	correct  int
}

func (t tierAccuracy) accuracy() float64 {
	if t.attempts == 0 {
		return 0
	}
	return float64(t.correct) / float64(t.attempts)
}

func accuracyByTier(trace []domain.AnswerRecord) map[domain.Tier]tierAccuracy {
	acc := make(map[domain.Tier]tierAccuracy, 3)
	for _, rec := range trace {
		entry := acc[rec.Tier]
		entry.attempts++
		if rec.IsCorrect {
			entry.correct++
		}
		acc[rec.Tier] = entry
	}
	return acc
}

// bucketFor evaluates the threshold rules in priority order and returns the
// bucket's ability value. The first matching rule wins.
func bucketFor(acc map[domain.Tier]tierAccuracy) float64 {
	hard := acc[domain.TierHard]
	medium := acc[domain.TierMedium]
	easy := acc[domain.TierEasy]

	switch {
	case hard.attempts > 0 && hard.accuracy() >= 0.9:
		return 9.0
	case hard.attempts > 0 && hard.accuracy() >= 0.6:
		return 7.5
	case medium.attempts > 0 && medium.accuracy() >= 0.8:
		return 6.5
	case medium.attempts > 0 && medium.accuracy() >= 0.5:
		return 5.0
	case easy.attempts > 0 && easy.accuracy() >= 0.8:
		return 4.0
	case easy.attempts > 0 && easy.accuracy() >= 0.5:
		return 2.5
	default:
		return 1.5
	}
}

// overallAccuracy returns the plain proportion of correct answers.
func overallAccuracy(trace []domain.AnswerRecord) float64 {
	if len(trace) == 0 {
		return 0
	}
	correct := 0
	for _, rec := range trace {
		if rec.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(trace))
}
