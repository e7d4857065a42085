// Package assessment implements the session state machine that drives an
// adaptive assessment from start to completion: question delivery, answer
// grading, ability estimation, difficulty progression and final profile
// synthesis. It owns the session lifecycle and is the only writer of
// assessment sessions.
package assessment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
)

// Service-specific errors
var (
	// ErrSessionNotActive is returned when an operation requires an
	// in_progress session but the session is in a terminal state.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrConcurrentModification is returned when a save loses the optimistic
	// concurrency race against another writer. The caller may retry with
	// freshly loaded state.
	ErrConcurrentModification = errors.New("session was modified concurrently")

	// ErrCorruptSession is returned when a loaded session fails its
	// structural consistency checks. Corruption is surfaced to an operator,
	// never silently repaired.
	ErrCorruptSession = errors.New("session state is corrupt")

	// ErrUnexpectedQuestion is returned when a submitted answer references a
	// question other than the one the session is currently waiting on.
	ErrUnexpectedQuestion = errors.New("answer does not match the pending question")

	// ErrProfileNotReady is returned when a profile is requested for a
	// session that has not completed.
	ErrProfileNotReady = errors.New("profile is only available for completed sessions")

	// ErrInvalidAnswer is returned when an answer payload fails validation.
	ErrInvalidAnswer = errors.New("invalid answer payload")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	// Operation that failed, e.g. "start session"
	Operation string
	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError with the given operation and
// underlying error.
func NewServiceError(operation string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Err: err}
}

// StartResult is the outcome of starting a new assessment session: the
// session identity plus the first question to present.
type StartResult struct {
	SessionID      uuid.UUID
	TotalQuestions int
	Question       *domain.Question
}

// SubmitAnswerInput carries one answer submission against the session's
// pending question.
type SubmitAnswerInput struct {
	QuestionID     uuid.UUID
	Answer         string
	ResponseTimeMs int
}

// SubmitResult is the outcome of grading one answer. While the session is
// in_progress, NextQuestion carries the follow-up item; on the final answer
// Status flips to completed and Profile carries the synthesized result.
type SubmitResult struct {
	Status         domain.SessionStatus
	IsCorrect      bool
	Ability        float64
	ConfidenceLow  float64
	ConfidenceHigh float64
	Answered       int
	Remaining      int
	NextQuestion   *domain.Question
	Profile        *domain.LearnerProfile
}

// AssessmentService defines the operations of the assessment state machine.
type AssessmentService interface {
	// Start creates a new in_progress session for the learner and subject
	// and selects the first question.
	Start(ctx context.Context, learnerID uuid.UUID, subject string) (*StartResult, error)

	// CurrentQuestion recomputes the question the session is waiting on.
	// Because selection is deterministic over persisted state, a resumed
	// session receives exactly the question it was shown before a crash.
	// Returns ErrSessionNotActive for terminal sessions.
	CurrentQuestion(ctx context.Context, sessionID uuid.UUID) (*domain.Question, error)

	// SubmitAnswer grades the answer to the session's pending question,
	// updates the ability estimate and difficulty tier, and either selects
	// the next question or completes the session and synthesizes the
	// learner profile.
	// Returns ErrUnexpectedQuestion if the answer names another question,
	// ErrSessionNotActive for terminal sessions, and
	// ErrConcurrentModification when a concurrent submission wins the save.
	SubmitAnswer(ctx context.Context, sessionID uuid.UUID, input SubmitAnswerInput) (*SubmitResult, error)

	// Abandon moves an in_progress session to the abandoned terminal state.
	Abandon(ctx context.Context, sessionID uuid.UUID) error

	// GetProfile returns the learner profile synthesized at completion.
	// Returns ErrProfileNotReady unless the session has completed.
	GetProfile(ctx context.Context, sessionID uuid.UUID) (*domain.LearnerProfile, error)
}
