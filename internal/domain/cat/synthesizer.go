package cat

import (
	"fmt"
	"sort"
	"time"

	"github.com/quizmith/adapt-api/internal/domain"
)

// Synthesizer turns a completed session's trace into a LearnerProfile:
// per-bucket accuracy, strengths and weaknesses, pattern detection over the
// trailing window, a proficiency label and recommendations. Output is
// deterministic given the same trace and parameters.
type Synthesizer struct {
	params *Params
}

// NewSynthesizer creates a profile synthesizer with the given parameters.
func NewSynthesizer(params *Params) *Synthesizer {
	if params == nil {
		panic("params cannot be nil")
	}
	return &Synthesizer{params: params}
}

// Synthesize builds the learner profile for a completed session.
// Returns an error if the session is not in the completed state.
func (s *Synthesizer) Synthesize(session *domain.AssessmentSession, est Estimate) (*domain.LearnerProfile, error) {
	if session.Status != domain.SessionCompleted {
		return nil, fmt.Errorf("%w: cannot synthesize profile for %q session",
			domain.ErrInvalidStatus, session.Status)
	}

	trace := session.AnswerTrace
	topicAcc := accuracyByTopic(trace)

	profile := &domain.LearnerProfile{
		AbilityEstimate:  est.Ability,
		ConfidenceLow:    est.Low,
		ConfidenceHigh:   est.High,
		ProficiencyLevel: ProficiencyFor(est.Ability),
		LearningStyle:    s.learningStyle(trace),
		AccuracyByTier:   tierAccuracyMap(trace),
		AccuracyByTopic:  topicAccuracyMap(topicAcc),
		GeneratedAt:      time.Now().UTC(),
	}

	profile.Strengths, profile.Weaknesses = s.classifyTopics(topicAcc)
	profile.Recommendations = s.recommend(trace, profile.Weaknesses)

	return profile, nil
}

// ProficiencyFor maps an ability estimate onto the discrete proficiency
// scale via fixed cutpoints.
func ProficiencyFor(ability float64) domain.ProficiencyLevel {
	switch {
	case ability < 2:
		return domain.ProficiencyBeginner
	case ability < 4:
		return domain.ProficiencyDeveloping
	case ability < 6:
		return domain.ProficiencyIntermediate
	case ability < 8:
		return domain.ProficiencyAdvanced
	default:
		return domain.ProficiencyExpert
	}
}

// WeakTopics returns the topics whose running accuracy falls below the low
// threshold with enough attempts to judge. The result is sorted so the
// selector's weak-topic hint is deterministic.
func WeakTopics(trace []domain.AnswerRecord, params *Params) []string {
	var weak []string
	for topic, acc := range accuracyByTopic(trace) {
		if acc.attempts >= params.MinTopicAttempts && acc.accuracy() < params.LowAccuracy {
			weak = append(weak, topic)
		}
	}
	sort.Strings(weak)
	return weak
}

func accuracyByTopic(trace []domain.AnswerRecord) map[string]tierAccuracy {
	acc := make(map[string]tierAccuracy)
	for _, rec := range trace {
		entry := acc[rec.Topic]
		entry.attempts++
		if rec.IsCorrect {
			entry.correct++
		}
		acc[rec.Topic] = entry
	}
	return acc
}

func tierAccuracyMap(trace []domain.AnswerRecord) map[domain.Tier]float64 {
	out := make(map[domain.Tier]float64)
	for band, acc := range accuracyByTier(trace) {
		out[band] = acc.accuracy()
	}
	return out
}

func topicAccuracyMap(topicAcc map[string]tierAccuracy) map[string]float64 {
	out := make(map[string]float64, len(topicAcc))
	for topic, acc := range topicAcc {
		out[topic] = acc.accuracy()
	}
	return out
}

// classifyTopics splits topics into strengths and weaknesses by the
// configured accuracy thresholds. Topics with too few attempts stay
// unclassified. Both lists are sorted for deterministic output.
func (s *Synthesizer) classifyTopics(topicAcc map[string]tierAccuracy) (strengths, weaknesses []string) {
	for topic, acc := range topicAcc {
		if acc.attempts < s.params.MinTopicAttempts {
			continue
		}
		switch {
		case acc.accuracy() >= s.params.HighAccuracy:
			strengths = append(strengths, topic)
		case acc.accuracy() < s.params.LowAccuracy:
			weaknesses = append(weaknesses, topic)
		}
	}
	sort.Strings(strengths)
	sort.Strings(weaknesses)
	return strengths, weaknesses
}

// learningStyle derives the heuristic style label from median response
// time and overall accuracy.
func (s *Synthesizer) learningStyle(trace []domain.AnswerRecord) domain.LearningStyle {
	fast := medianResponseMs(trace) < s.params.FastResponseMs
	accurate := overallAccuracy(trace) >= 0.6

	switch {
	case fast && accurate:
		return domain.StyleIntuitive
	case fast && !accurate:
		return domain.StyleImpulsive
	case !fast && accurate:
		return domain.StyleDeliberate
	default:
		return domain.StyleMethodical
	}
}

func medianResponseMs(trace []domain.AnswerRecord) int {
	if len(trace) == 0 {
		return 0
	}
	times := make([]int, len(trace))
	for i, rec := range trace {
		times[i] = rec.ResponseTimeMs
	}
	sort.Ints(times)
	return times[len(times)/2]
}

// recommend runs the pattern detectors over the trailing window and adds a
// study recommendation for each detected weakness. Detectors run in a fixed
// order so output is deterministic.
func (s *Synthesizer) recommend(trace []domain.AnswerRecord, weaknesses []string) []domain.Recommendation {
	recs := []domain.Recommendation{}

	if s.detectPlateau(trace) {
		recs = append(recs, domain.Recommendation{
			Code:     "plateau",
			Severity: domain.SeverityMedium,
			Message:  "Progress has flattened over the last several answers; vary practice material to break the plateau.",
		})
	}

	if s.detectRegression(trace) {
		recs = append(recs, domain.Recommendation{
			Code:     "regression",
			Severity: domain.SeverityHigh,
			Message:  "Accuracy on recent easier questions fell below earlier harder ones; revisit fundamentals before advancing.",
		})
	}

	if s.detectSlowdown(trace) {
		recs = append(recs, domain.Recommendation{
			Code:     "response_time_escalation",
			Severity: domain.SeverityLow,
			Message:  "Response times climbed steadily toward the end; consider shorter sessions or a break before the next one.",
		})
	}

	for _, topic := range weaknesses {
		recs = append(recs, domain.Recommendation{
			Code:     "weak_topic",
			Severity: domain.SeverityMedium,
			Message:  fmt.Sprintf("Accuracy on %q is below the target threshold; schedule focused review of this topic.", topic),
		})
	}

	return recs
}

// detectPlateau reports whether the running accuracy stopped improving
// across the trailing window.
func (s *Synthesizer) detectPlateau(trace []domain.AnswerRecord) bool {
	window := s.params.TrailingWindow
	if len(trace) < window || window < 2 {
		return false
	}

	start := len(trace) - window
	baseline := overallAccuracy(trace[:start+1])
	for i := start + 1; i < len(trace); i++ {
		if overallAccuracy(trace[:i+1]) > baseline+1e-9 {
			return false
		}
	}
	return true
}

// detectRegression reports whether accuracy on the later, easier half of
// the trace dropped below accuracy on the earlier, harder half.
func (s *Synthesizer) detectRegression(trace []domain.AnswerRecord) bool {
	if len(trace) < 4 {
		return false
	}

	mid := len(trace) / 2
	earlier, later := trace[:mid], trace[mid:]

	if meanDifficulty(later) >= meanDifficulty(earlier) {
		return false
	}
	return overallAccuracy(later) < overallAccuracy(earlier)
}

// detectSlowdown reports whether response times increased monotonically
// over the trailing window.
func (s *Synthesizer) detectSlowdown(trace []domain.AnswerRecord) bool {
	window := s.params.TrailingWindow
	if len(trace) < window || window < 2 {
		return false
	}

	tail := trace[len(trace)-window:]
	for i := 1; i < len(tail); i++ {
		if tail[i].ResponseTimeMs <= tail[i-1].ResponseTimeMs {
			return false
		}
	}
	return true
}

func meanDifficulty(trace []domain.AnswerRecord) float64 {
	if len(trace) == 0 {
		return 0
	}
	sum := 0.0
	for _, rec := range trace {
		sum += rec.Tier.Difficulty()
	}
	return sum / float64(len(trace))
}
