package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AnswerRecord captures a single graded answer within a session's trace.
// Records are created exactly once per submitted answer and are immutable
// thereafter; the ordered trace is the canonical source of truth for
// resume and profiling.
type AnswerRecord struct {
	QuestionID      uuid.UUID `json:"question_id"`
	Tier            Tier      `json:"difficulty_tier"`
	Topic           string    `json:"topic"`
	SubmittedAnswer string    `json:"submitted_answer"`
	IsCorrect       bool      `json:"is_correct"`
	ResponseTimeMs  int       `json:"response_time_ms"`
	SequenceIndex   int       `json:"sequence_index"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewAnswerRecord creates an AnswerRecord for a graded answer to the given
// question at the given position in the session trace.
// Returns an error if validation fails.
func NewAnswerRecord(
	question *Question,
	submitted string,
	isCorrect bool,
	responseTimeMs int,
	sequenceIndex int,
	now time.Time,
) (*AnswerRecord, error) {
	rec := &AnswerRecord{
		QuestionID:      question.ID,
		Tier:            question.Tier,
		Topic:           question.Topic,
		SubmittedAnswer: submitted,
		IsCorrect:       isCorrect,
		ResponseTimeMs:  responseTimeMs,
		SequenceIndex:   sequenceIndex,
		Timestamp:       now,
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Validate checks if the AnswerRecord has valid data.
// Returns an error if any field fails validation.
func (r *AnswerRecord) Validate() error {
	if r.QuestionID == uuid.Nil {
		return ErrQuestionIDEmpty
	}

	if !r.Tier.Valid() {
		return ErrInvalidTier
	}

	if strings.TrimSpace(r.SubmittedAnswer) == "" {
		return ErrEmptyAnswer
	}

	if r.ResponseTimeMs < 0 {
		return ErrInvalidResponseTime
	}

	if r.SequenceIndex < 0 {
		return ErrTraceIndexMismatch
	}

	return nil
}
