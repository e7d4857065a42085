package cat

import (
	"fmt"

	"github.com/quizmith/adapt-api/internal/domain"
)

// Ability scale bounds. Estimates saturate at the bounds rather than
// diverging on degenerate traces.
const (
	AbilityMin      = 0.0
	AbilityMax      = 10.0
	AbilityMidpoint = (AbilityMin + AbilityMax) / 2
)

// ClampPolicy selects the tie-break rule used when a streak-driven tier
// would land on a band whose quota is already exhausted.
type ClampPolicy string

const (
	// ClampClosestBand walks outward from the suggested tier and picks the
	// nearest band with remaining quota, resolving equidistant ties in the
	// direction of the streak.
	ClampClosestBand ClampPolicy = "closest_band"

	// ClampHighestRemaining picks the band with the most remaining quota,
	// resolving ties toward the band closest to the suggested tier.
	ClampHighestRemaining ClampPolicy = "highest_remaining"
)

// Valid reports whether the policy is one of the recognized values.
func (p ClampPolicy) Valid() bool {
	return p == ClampClosestBand || p == ClampHighestRemaining
}

// Params defines all configurable parameters for the CAT engine.
type Params struct {
	// Quota is the fixed number of questions per band that a complete
	// session must contain.
	Quota map[domain.Tier]int

	// InitialTier is the band the first question is drawn from.
	InitialTier domain.Tier

	// UpThreshold is the correct-streak length that raises the tier.
	UpThreshold int

	// DownThreshold is the incorrect-streak length that lowers the tier.
	DownThreshold int

	// ClampPolicy is the quota-clamp tie-break rule.
	ClampPolicy ClampPolicy

	// Strategy selects the default ability estimation algorithm.
	Strategy Strategy

	// IRTIterations is the fixed Newton-Raphson iteration count for the
	// item-response fit.
	IRTIterations int

	// ThetaBound clamps the latent ability fit to [-ThetaBound, ThetaBound].
	ThetaBound float64

	// Discrimination is the common item discrimination weight.
	Discrimination float64

	// ConfidenceZ is the z-score used to widen the Fisher-information
	// standard error into a confidence interval.
	ConfidenceZ float64

	// ShortTraceLength is the trace length below which the item-response
	// fit is considered unstable and excluded from the hybrid blend.
	ShortTraceLength int

	// WeightedBaseHalfWidth is the half-width of the weighted-average
	// strategy's interval before shrinking with trace length.
	WeightedBaseHalfWidth float64

	// RuleHalfWidth is the fixed half-width of the rule-based strategy's
	// interval.
	RuleHalfWidth float64

	// HighAccuracy is the per-topic accuracy at or above which the topic is
	// classified as a strength.
	HighAccuracy float64

	// LowAccuracy is the per-topic accuracy below which the topic is
	// classified as a weakness.
	LowAccuracy float64

	// MinTopicAttempts is the minimum number of attempts a topic needs
	// before it can be classified either way.
	MinTopicAttempts int

	// TrailingWindow is the number of trailing answers the pattern
	// detectors inspect.
	TrailingWindow int

	// FastResponseMs separates "fast" from "slow" answers for the
	// learning-style heuristic.
	FastResponseMs int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values leave the corresponding default untouched.
type ParamsConfig struct {
	EasyQuota   int
	MediumQuota int
	HardQuota   int

	InitialTier   domain.Tier
	UpThreshold   int
	DownThreshold int
	ClampPolicy   ClampPolicy
	Strategy      Strategy

	IRTIterations         int
	ThetaBound            float64
	Discrimination        float64
	ConfidenceZ           float64
	ShortTraceLength      int
	WeightedBaseHalfWidth float64
	RuleHalfWidth         float64

	HighAccuracy     float64
	LowAccuracy      float64
	MinTopicAttempts int
	TrailingWindow   int
	FastResponseMs   int
}

// NewDefaultParams creates a new Params instance with default values:
// a 20-item test partitioned 7/6/7 across easy/medium/hard.
func NewDefaultParams() *Params {
	return &Params{
		Quota: map[domain.Tier]int{
			domain.TierEasy:   7,
			domain.TierMedium: 6,
			domain.TierHard:   7,
		},
		InitialTier:   domain.TierEasy,
		UpThreshold:   2,
		DownThreshold: 2,
		ClampPolicy:   ClampClosestBand,
		Strategy:      StrategyHybrid,

		IRTIterations:         10,
		ThetaBound:            3.0,
		Discrimination:        1.0,
		ConfidenceZ:           1.96,
		ShortTraceLength:      3,
		WeightedBaseHalfWidth: 4.0,
		RuleHalfWidth:         1.5,

		HighAccuracy:     0.8,
		LowAccuracy:      0.5,
		MinTopicAttempts: 2,
		TrailingWindow:   6,
		FastResponseMs:   15000,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.EasyQuota > 0 {
		params.Quota[domain.TierEasy] = config.EasyQuota
	}
	if config.MediumQuota > 0 {
		params.Quota[domain.TierMedium] = config.MediumQuota
	}
	if config.HardQuota > 0 {
		params.Quota[domain.TierHard] = config.HardQuota
	}

	if config.InitialTier != "" {
		params.InitialTier = config.InitialTier
	}
	if config.UpThreshold > 0 {
		params.UpThreshold = config.UpThreshold
	}
	if config.DownThreshold > 0 {
		params.DownThreshold = config.DownThreshold
	}
	if config.ClampPolicy != "" {
		params.ClampPolicy = config.ClampPolicy
	}
	if config.Strategy != "" {
		params.Strategy = config.Strategy
	}

	if config.IRTIterations > 0 {
		params.IRTIterations = config.IRTIterations
	}
	if config.ThetaBound > 0 {
		params.ThetaBound = config.ThetaBound
	}
	if config.Discrimination > 0 {
		params.Discrimination = config.Discrimination
	}
	if config.ConfidenceZ > 0 {
		params.ConfidenceZ = config.ConfidenceZ
	}
	if config.ShortTraceLength > 0 {
		params.ShortTraceLength = config.ShortTraceLength
	}
	if config.WeightedBaseHalfWidth > 0 {
		params.WeightedBaseHalfWidth = config.WeightedBaseHalfWidth
	}
	if config.RuleHalfWidth > 0 {
		params.RuleHalfWidth = config.RuleHalfWidth
	}

	if config.HighAccuracy > 0 {
		params.HighAccuracy = config.HighAccuracy
	}
	if config.LowAccuracy > 0 {
		params.LowAccuracy = config.LowAccuracy
	}
	if config.MinTopicAttempts > 0 {
		params.MinTopicAttempts = config.MinTopicAttempts
	}
	if config.TrailingWindow > 0 {
		params.TrailingWindow = config.TrailingWindow
	}
	if config.FastResponseMs > 0 {
		params.FastResponseMs = config.FastResponseMs
	}

	return params
}

// Validate checks the parameter set for internal consistency.
func (p *Params) Validate() error {
	if len(p.Quota) == 0 {
		return fmt.Errorf("%w: no band quotas configured", domain.ErrValidation)
	}
	for band, n := range p.Quota {
		if !band.Valid() {
			return fmt.Errorf("%w: quota band %q", domain.ErrInvalidTier, band)
		}
		if n <= 0 {
			return fmt.Errorf("%w: quota for band %q must be positive", domain.ErrValidation, band)
		}
	}
	if !p.InitialTier.Valid() {
		return fmt.Errorf("%w: initial tier %q", domain.ErrInvalidTier, p.InitialTier)
	}
	if p.UpThreshold < 1 || p.DownThreshold < 1 {
		return fmt.Errorf("%w: streak thresholds must be at least 1", domain.ErrValidation)
	}
	if !p.ClampPolicy.Valid() {
		return fmt.Errorf("%w: clamp policy %q", domain.ErrValidation, p.ClampPolicy)
	}
	if !p.Strategy.Valid() {
		return fmt.Errorf("%w: strategy %q", domain.ErrValidation, p.Strategy)
	}
	if p.LowAccuracy >= p.HighAccuracy {
		return fmt.Errorf("%w: low accuracy threshold must be below high threshold", domain.ErrValidation)
	}
	return nil
}

// TotalQuestions returns the configured test length.
func (p *Params) TotalQuestions() int {
	total := 0
	for _, n := range p.Quota {
		total += n
	}
	return total
}

// QuotaCopy returns an independent copy of the configured band quotas,
// suitable for seeding a new session's remaining-quota accounting.
func (p *Params) QuotaCopy() map[domain.Tier]int {
	quota := make(map[domain.Tier]int, len(p.Quota))
	for band, n := range p.Quota {
		quota[band] = n
	}
	return quota
}
