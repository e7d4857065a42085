package cat

import (
	"github.com/quizmith/adapt-api/internal/domain"
)

// Progression is the difficulty progression controller. It advances the
// session's target tier from the trailing answer streak and clamps the
// result so the fixed per-band quota stays satisfiable.
//
// The streak is computed from the persisted trace alone, so a resumed
// session always derives the same tier it held before a crash.
type Progression struct {
	params *Params
}

// NewProgression creates a progression controller with the given parameters.
func NewProgression(params *Params) *Progression {
	if params == nil {
		panic("params cannot be nil")
	}
	return &Progression{params: params}
}

// InitialTier returns the band the first question should be drawn from,
// clamped to a band that actually has quota.
func (p *Progression) InitialTier(quota map[domain.Tier]int) domain.Tier {
	return p.clampToQuota(p.params.InitialTier, 0, quota)
}

// NextTier computes the target band for the next question given the current
// tier, the answer trace so far and the remaining per-band quota.
//
// Transition rule: a trailing correct streak of length >= UpThreshold raises
// the tier one band, a trailing incorrect streak of length >= DownThreshold
// lowers it one band, anything else leaves it unchanged. While a streak
// persists past its threshold the tier keeps stepping one band per answer.
// The result is then clamped to a band with remaining quota.
func (p *Progression) NextTier(current domain.Tier, trace []domain.AnswerRecord, quota map[domain.Tier]int) domain.Tier {
	length, correct := trailingStreak(trace)

	direction := 0
	switch {
	case length >= p.params.UpThreshold && correct:
		direction = 1
	case length >= p.params.DownThreshold && !correct:
		direction = -1
	}

	suggested := domain.TierFromIndex(current.Index() + direction)
	return p.clampToQuota(suggested, direction, quota)
}

// trailingStreak returns the length of the uniform-correctness run at the
// tail of the trace and whether that run is correct. An empty trace has a
// zero-length streak.
func trailingStreak(trace []domain.AnswerRecord) (length int, correct bool) {
	if len(trace) == 0 {
		return 0, false
	}

	correct = trace[len(trace)-1].IsCorrect
	for i := len(trace) - 1; i >= 0; i-- {
		if trace[i].IsCorrect != correct {
			break
		}
		length++
	}
	return length, correct
}

// clampToQuota enforces the fixed per-band quota on a streak-suggested
// tier. If the suggested band still has quota it is used as-is; otherwise
// the configured ClampPolicy picks the substitute band. direction carries
// the streak's pull (+1 up, -1 down, 0 neutral) and resolves ties.
func (p *Progression) clampToQuota(suggested domain.Tier, direction int, quota map[domain.Tier]int) domain.Tier {
	if quota[suggested] > 0 {
		return suggested
	}

	switch p.params.ClampPolicy {
	case ClampHighestRemaining:
		return highestRemainingBand(suggested, quota)
	default:
		return closestBand(suggested, direction, quota)
	}
}

// closestBand walks outward from the suggested tier and returns the nearest
// band with remaining quota. Equidistant candidates resolve in the streak's
// direction; a neutral streak prefers the easier band.
func closestBand(suggested domain.Tier, direction int, quota map[domain.Tier]int) domain.Tier {
	tiers := domain.Tiers()
	idx := suggested.Index()

	for dist := 1; dist < len(tiers); dist++ {
		var candidates []domain.Tier
		lower, upper := idx-dist, idx+dist

		first, second := lower, upper
		if direction > 0 {
			first, second = upper, lower
		}
		for _, i := range []int{first, second} {
			if i >= 0 && i < len(tiers) && quota[tiers[i]] > 0 {
				candidates = append(candidates, tiers[i])
			}
		}
		if len(candidates) > 0 {
			return candidates[0]
		}
	}

	// Every band is exhausted: the session has no slots left and the
	// caller will not serve another question. Keep the suggestion.
	return suggested
}

// highestRemainingBand returns the band with the most remaining quota,
// resolving ties toward the band closest to the suggested tier.
func highestRemainingBand(suggested domain.Tier, quota map[domain.Tier]int) domain.Tier {
	best := suggested
	bestRemaining := 0
	bestDistance := len(domain.Tiers())

	for _, band := range domain.Tiers() {
		remaining := quota[band]
		if remaining <= 0 {
			continue
		}
		distance := abs(band.Index() - suggested.Index())
		if remaining > bestRemaining ||
			(remaining == bestRemaining && distance < bestDistance) {
			best = band
			bestRemaining = remaining
			bestDistance = distance
		}
	}

	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
