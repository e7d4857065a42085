package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Question-specific validation errors
var (
	// ErrQuestionIDEmpty is returned when a question ID is empty or nil.
	ErrQuestionIDEmpty = errors.New("question ID cannot be empty")

	// ErrQuestionTextEmpty is returned when a question's text is empty.
	ErrQuestionTextEmpty = errors.New("question text cannot be empty")

	// ErrQuestionSubjectEmpty is returned when a question's subject is empty.
	ErrQuestionSubjectEmpty = errors.New("question subject cannot be empty")

	// ErrQuestionTopicEmpty is returned when a question's topic is empty.
	ErrQuestionTopicEmpty = errors.New("question topic cannot be empty")

	// ErrQuestionAnswerEmpty is returned when a question has no correct answer.
	ErrQuestionAnswerEmpty = errors.New("question correct answer cannot be empty")
)

// Tier is a discrete difficulty band a question belongs to and that a
// session currently targets.
type Tier string

// Recognized difficulty tiers, ordered from easiest to hardest.
const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

// Tiers returns all difficulty tiers in ascending order of difficulty.
func Tiers() []Tier {
	return []Tier{TierEasy, TierMedium, TierHard}
}

// Valid reports whether the tier is one of the recognized values.
func (t Tier) Valid() bool {
	switch t {
	case TierEasy, TierMedium, TierHard:
		return true
	default:
		return false
	}
}

// Index returns the tier's position on the ordered scale (0 = easiest).
// Returns -1 for unrecognized tiers.
func (t Tier) Index() int {
	switch t {
	case TierEasy:
		return 0
	case TierMedium:
		return 1
	case TierHard:
		return 2
	default:
		return -1
	}
}

// TierFromIndex returns the tier at the given position on the ordered
// scale, clamping out-of-range indexes to the nearest bound.
func TierFromIndex(i int) Tier {
	tiers := Tiers()
	if i < 0 {
		return tiers[0]
	}
	if i >= len(tiers) {
		return tiers[len(tiers)-1]
	}
	return tiers[i]
}

// Difficulty maps the tier onto the numeric 1-10 difficulty scale,
// returning the midpoint of the tier's band.
func (t Tier) Difficulty() float64 {
	switch t {
	case TierEasy:
		return 2.0
	case TierMedium:
		return 5.0
	case TierHard:
		return 8.0
	default:
		return 5.0
	}
}

// Question represents a single item in the read-only question pool.
// Questions are owned by the question repository and are never mutated
// by the assessment engine.
type Question struct {
	ID            uuid.UUID `json:"id"`
	Subject       string    `json:"subject"`
	Topic         string    `json:"topic"`
	Tier          Tier      `json:"difficulty_tier"`
	Text          string    `json:"text"`
	CorrectAnswer string    `json:"correct_answer"`
	Options       []string  `json:"options,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewQuestion creates a new Question with the given attributes.
// It generates a new UUID for the question ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewQuestion(subject, topic string, tier Tier, text, correctAnswer string, options []string) (*Question, error) {
	q := &Question{
		ID:            uuid.New(),
		Subject:       subject,
		Topic:         topic,
		Tier:          tier,
		Text:          text,
		CorrectAnswer: correctAnswer,
		Options:       options,
		CreatedAt:     time.Now().UTC(),
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

// Validate checks if the Question has valid data.
// Returns an error if any field fails validation.
func (q *Question) Validate() error {
	if q.ID == uuid.Nil {
		return ErrQuestionIDEmpty
	}

	if strings.TrimSpace(q.Subject) == "" {
		return ErrQuestionSubjectEmpty
	}

	if strings.TrimSpace(q.Topic) == "" {
		return ErrQuestionTopicEmpty
	}

	if !q.Tier.Valid() {
		return ErrInvalidTier
	}

	if strings.TrimSpace(q.Text) == "" {
		return ErrQuestionTextEmpty
	}

	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return ErrQuestionAnswerEmpty
	}

	return nil
}

// IsCorrect reports whether the submitted answer matches the question's
// correct answer. Comparison is case-insensitive and ignores surrounding
// whitespace.
func (q *Question) IsCorrect(submitted string) bool {
	return strings.EqualFold(
		strings.TrimSpace(submitted),
		strings.TrimSpace(q.CorrectAnswer),
	)
}
