package cat

import (
	"errors"
	"math"

	"github.com/quizmith/adapt-api/internal/domain"
)

// Strategy identifies an ability estimation algorithm.
type Strategy string

// Selectable estimation strategies.
const (
	StrategyItemResponse    Strategy = "item_response"
	StrategyWeightedAverage Strategy = "weighted_average"
	StrategyRuleBased       Strategy = "rule_based"
	StrategyHybrid          Strategy = "hybrid"
)

// Valid reports whether the strategy is one of the recognized values.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyItemResponse, StrategyWeightedAverage, StrategyRuleBased, StrategyHybrid:
		return true
	default:
		return false
	}
}

// ErrUnknownStrategy is returned when an estimator is requested for a
// strategy that does not exist.
var ErrUnknownStrategy = errors.New("unknown estimation strategy")

// Estimate is a scalar ability estimate with its confidence interval on the
// [AbilityMin, AbilityMax] scale.
type Estimate struct {
	Ability float64 `json:"ability"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
}

// Width returns the confidence interval width.
func (e Estimate) Width() float64 {
	return e.High - e.Low
}

// Estimator converts an ordered answer trace into an ability estimate.
// Implementations are pure: the same trace always produces the same
// estimate.
type Estimator interface {
	// Estimate computes the ability estimate for the given trace.
	// An empty trace yields the scale midpoint with maximal uncertainty.
	Estimate(trace []domain.AnswerRecord) Estimate

	// Strategy identifies the algorithm behind this estimator.
	Strategy() Strategy
}

// NewEstimator creates the estimator for the given strategy.
// Returns ErrUnknownStrategy for unrecognized strategies.
func NewEstimator(strategy Strategy, params *Params) (Estimator, error) {
	switch strategy {
	case StrategyItemResponse:
		return &itemResponseEstimator{params: params}, nil
	case StrategyWeightedAverage:
		return &weightedAverageEstimator{params: params}, nil
	case StrategyRuleBased:
		return &ruleBasedEstimator{params: params}, nil
	case StrategyHybrid:
		return &hybridEstimator{
			irt:      &itemResponseEstimator{params: params},
			weighted: &weightedAverageEstimator{params: params},
			rules:    &ruleBasedEstimator{params: params},
			params:   params,
		}, nil
	default:
		return nil, ErrUnknownStrategy
	}
}

// maximalUncertainty is the estimate returned for an empty trace: scale
// midpoint, interval spanning the whole scale.
func maximalUncertainty() Estimate {
	return Estimate{
		Ability: AbilityMidpoint,
		Low:     AbilityMin,
		High:    AbilityMax,
	}
}

// clampedInterval centers a confidence interval of the given half-width on
// the ability. Near the scale bounds the interval is shifted inward rather
// than truncated, so the reported width depends only on the half-width and
// stays non-increasing as the trace grows.
func clampedInterval(ability, halfWidth float64) Estimate {
	width := math.Min(2*halfWidth, AbilityMax-AbilityMin)

	low := ability - width/2
	if low < AbilityMin {
		low = AbilityMin
	}
	if low+width > AbilityMax {
		low = AbilityMax - width
	}

	return Estimate{
		Ability: clampAbility(ability),
		Low:     low,
		High:    low + width,
	}
}

func clampAbility(a float64) float64 {
	return math.Min(AbilityMax, math.Max(AbilityMin, a))
}

// hybridEstimator blends the three base strategies, weighting each by its
// precision (inverse squared interval half-width) so the more confident
// algorithm dominates. The blended half-width combines the component
// precisions the way Fisher information accumulates, which keeps the
// interval width non-increasing as the trace grows.
type hybridEstimator struct {
	irt      *itemResponseEstimator
	weighted *weightedAverageEstimator
	rules    *ruleBasedEstimator
	params   *Params
}

var _ Estimator = (*hybridEstimator)(nil)

func (e *hybridEstimator) Strategy() Strategy { return StrategyHybrid }

func (e *hybridEstimator) Estimate(trace []domain.AnswerRecord) Estimate {
	if len(trace) == 0 {
		return maximalUncertainty()
	}

	components := []Estimate{
		e.weighted.Estimate(trace),
		e.rules.Estimate(trace),
	}

	// The item-response fit is unstable on very short traces; keep it out
	// of the blend until the trace can support it.
	if len(trace) >= e.params.ShortTraceLength {
		components = append(components, e.irt.Estimate(trace))
	}

	var weightSum, abilitySum, precisionSum float64
	for _, c := range components {
		halfWidth := math.Max(c.Width()/2, 1e-3)
		precision := 1 / (halfWidth * halfWidth)
		weightSum += precision
		abilitySum += precision * c.Ability
		precisionSum += precision
	}

	ability := abilitySum / weightSum
	halfWidth := 1 / math.Sqrt(precisionSum)
	return clampedInterval(ability, halfWidth)
}
