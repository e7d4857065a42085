package cat

import (
	"math"

	"github.com/quizmith/adapt-api/internal/domain"
)

// The item-response fit works on a latent logit scale θ and maps back to
// the public [0,10] ability scale. θ = ±ThetaBound corresponds to the scale
// bounds, so saturated traces (all correct, all incorrect) pin the estimate
// to the bounds instead of diverging.

// thetaToAbility maps a latent θ onto the public ability scale.
func (p *Params) thetaToAbility(theta float64) float64 {
	return AbilityMidpoint + theta*(AbilityMax-AbilityMidpoint)/p.ThetaBound
}

// tierLogit maps a band's numeric difficulty midpoint onto the logit scale
// used as the item difficulty parameter.
func tierLogit(t domain.Tier) float64 {
	// 1-10 difficulty scale centered on 5.5, two difficulty points per logit.
	return (t.Difficulty() - 5.5) / 2
}

// itemResponseEstimator fits a one-parameter logistic model to the observed
// correct/incorrect pattern with a fixed-iteration Newton-Raphson update.
// Higher-difficulty correct answers push the estimate up harder than easy
// ones; missing an easy item pulls it down harder than missing a hard one.
type itemResponseEstimator struct {
	params *Params
}

var _ Estimator = (*itemResponseEstimator)(nil)

func (e *itemResponseEstimator) Strategy() Strategy { return StrategyItemResponse }

func (e *itemResponseEstimator) Estimate(trace []domain.AnswerRecord) Estimate {
	if len(trace) == 0 {
		return maximalUncertainty()
	}

	// Information is accumulated sequentially: each item contributes the
	// Fisher information it carried at the provisional estimate that held
	// when it was answered. Accumulated terms never change as the trace
	// grows, so the interval width shrinks monotonically with every answer.
	var (
		theta float64
		info  float64
	)
	for i := range trace {
		theta = e.fit(trace[:i+1])
		info += e.itemInformation(trace[i], theta)
	}

	se := 1 / math.Sqrt(info)
	halfWidth := e.params.ConfidenceZ * se * (AbilityMax - AbilityMidpoint) / e.params.ThetaBound
	return clampedInterval(e.params.thetaToAbility(theta), halfWidth)
}

// fit runs the fixed-iteration Newton-Raphson maximum-likelihood update for
// θ over the given trace, clamped to [-ThetaBound, ThetaBound].
func (e *itemResponseEstimator) fit(trace []domain.AnswerRecord) float64 {
	a := e.params.Discrimination
	theta := 0.0

	for iter := 0; iter < e.params.IRTIterations; iter++ {
		var gradient, curvature float64
		for _, rec := range trace {
			p := logistic(a * (theta - tierLogit(rec.Tier)))
			observed := 0.0
			if rec.IsCorrect {
				observed = 1.0
			}
			gradient += a * (observed - p)
			curvature += a * a * p * (1 - p)
		}

		if curvature < 1e-9 {
			break
		}
		theta += gradient / curvature
		theta = math.Min(e.params.ThetaBound, math.Max(-e.params.ThetaBound, theta))
	}

	return theta
}

// itemInformation returns the Fisher information one item contributes at θ.
func (e *itemResponseEstimator) itemInformation(rec domain.AnswerRecord, theta float64) float64 {
	a := e.params.Discrimination
	p := logistic(a * (theta - tierLogit(rec.Tier)))
	return a * a * p * (1 - p)
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
