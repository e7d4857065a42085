package domain

import "time"

// ProficiencyLevel is a discrete label derived from the final ability
// estimate via fixed cutpoints.
type ProficiencyLevel string

// Proficiency scale, ordered from lowest to highest.
const (
	ProficiencyBeginner     ProficiencyLevel = "beginner"
	ProficiencyDeveloping   ProficiencyLevel = "developing"
	ProficiencyIntermediate ProficiencyLevel = "intermediate"
	ProficiencyAdvanced     ProficiencyLevel = "advanced"
	ProficiencyExpert       ProficiencyLevel = "expert"
)

// LearningStyle is a heuristic label derived from the learner's response
// speed and accuracy across the completed trace.
type LearningStyle string

// Recognized learning styles.
const (
	// StyleIntuitive: fast and accurate.
	StyleIntuitive LearningStyle = "intuitive"
	// StyleDeliberate: slow and accurate.
	StyleDeliberate LearningStyle = "deliberate"
	// StyleImpulsive: fast and inaccurate.
	StyleImpulsive LearningStyle = "impulsive"
	// StyleMethodical: slow and inaccurate.
	StyleMethodical LearningStyle = "methodical"
)

// Severity tags a recommendation by how urgently it should be acted on.
type Severity string

// Recommendation severities.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Recommendation is one actionable suggestion in a learner profile, emitted
// either by a pattern detector or by the weakness analysis.
type Recommendation struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// LearnerProfile is the post-completion analysis of an assessment session.
// It is created exactly once, when the session completes, and is read-only
// afterward.
type LearnerProfile struct {
	AbilityEstimate  float64            `json:"ability_estimate"`
	ConfidenceLow    float64            `json:"confidence_low"`
	ConfidenceHigh   float64            `json:"confidence_high"`
	ProficiencyLevel ProficiencyLevel   `json:"proficiency_level"`
	Strengths        []string           `json:"strengths"`
	Weaknesses       []string           `json:"weaknesses"`
	LearningStyle    LearningStyle      `json:"learning_style"`
	Recommendations  []Recommendation   `json:"recommendations"`
	AccuracyByTier   map[Tier]float64   `json:"accuracy_by_tier"`
	AccuracyByTopic  map[string]float64 `json:"accuracy_by_topic"`
	GeneratedAt      time.Time          `json:"generated_at"`
}
