package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session-specific validation errors
var (
	// ErrSessionIDEmpty is returned when a session ID is empty or nil.
	ErrSessionIDEmpty = errors.New("session ID cannot be empty")

	// ErrSessionLearnerIDEmpty is returned when a session's learner ID is empty or nil.
	ErrSessionLearnerIDEmpty = errors.New("session learner ID cannot be empty")

	// ErrSessionSubjectEmpty is returned when a session's subject is empty.
	ErrSessionSubjectEmpty = errors.New("session subject cannot be empty")

	// ErrSessionQuotaEmpty is returned when a session is created without any
	// band quota.
	ErrSessionQuotaEmpty = errors.New("session quota cannot be empty")
)

// SessionStatus represents the lifecycle state of an assessment session.
type SessionStatus string

// Possible session status values. Transitions are monotonic:
//
//	not_started → in_progress → {completed, abandoned}
const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// Valid reports whether the status is one of the recognized values.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionNotStarted, SessionInProgress, SessionCompleted, SessionAbandoned:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is a terminal state.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// CanTransitionTo reports whether the lifecycle state machine permits a
// transition from s to next.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionNotStarted:
		return next == SessionInProgress
	case SessionInProgress:
		return next == SessionCompleted || next == SessionAbandoned
	default:
		return false
	}
}

// PoolResetEvent records that a band's seen-set was cleared because every
// question in the band had already been shown in this session. The event is
// part of the session's audit log: a repeated question ID in the trace is
// only legal when a reset event for its band precedes the repeat.
type PoolResetEvent struct {
	Band       Tier      `json:"band"`
	AtIndex    int       `json:"at_index"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AssessmentSession is the per-learner state of one adaptive test run.
// It owns the canonical ordered answer trace and is mutated only by the
// assessment service. Version implements optimistic concurrency at the
// persistence boundary.
type AssessmentSession struct {
	ID             uuid.UUID        `json:"id"`
	LearnerID      uuid.UUID        `json:"learner_id"`
	Subject        string           `json:"subject"`
	Status         SessionStatus    `json:"status"`
	CurrentIndex   int              `json:"current_index"`
	Tier           Tier             `json:"difficulty_tier"`
	QuotaRemaining map[Tier]int     `json:"quota_remaining"`
	AnswerTrace    []AnswerRecord   `json:"answer_trace"`
	PoolResets     []PoolResetEvent `json:"pool_resets,omitempty"`
	FinalAbility   *float64         `json:"final_ability,omitempty"`
	Profile        *LearnerProfile  `json:"profile,omitempty"`
	Version        int64            `json:"version"`
	StartedAt      time.Time        `json:"started_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

// NewAssessmentSession creates a session in the not_started state with the
// given band quotas. The quota map is copied so callers cannot alias the
// session's internal accounting.
// Returns an error if validation fails.
func NewAssessmentSession(learnerID uuid.UUID, subject string, initialTier Tier, quota map[Tier]int) (*AssessmentSession, error) {
	quotaCopy := make(map[Tier]int, len(quota))
	for band, n := range quota {
		quotaCopy[band] = n
	}

	sess := &AssessmentSession{
		ID:             uuid.New(),
		LearnerID:      learnerID,
		Subject:        subject,
		Status:         SessionNotStarted,
		CurrentIndex:   0,
		Tier:           initialTier,
		QuotaRemaining: quotaCopy,
		AnswerTrace:    nil,
		Version:        1,
		StartedAt:      time.Now().UTC(),
	}

	if err := sess.Validate(); err != nil {
		return nil, err
	}

	return sess, nil
}

// Validate checks if the AssessmentSession has valid data.
// Returns an error if any field fails validation.
func (s *AssessmentSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}

	if s.LearnerID == uuid.Nil {
		return ErrSessionLearnerIDEmpty
	}

	if s.Subject == "" {
		return ErrSessionSubjectEmpty
	}

	if !s.Status.Valid() {
		return ErrInvalidStatus
	}

	if !s.Tier.Valid() {
		return ErrInvalidTier
	}

	if len(s.QuotaRemaining) == 0 {
		return ErrSessionQuotaEmpty
	}

	for band, n := range s.QuotaRemaining {
		if !band.Valid() {
			return fmt.Errorf("%w: quota band %q", ErrInvalidTier, band)
		}
		if n < 0 {
			return fmt.Errorf("%w: negative quota for band %q", ErrQuotaArithmetic, band)
		}
	}

	return nil
}

// TotalQuestions returns the configured test length: answers already in the
// trace plus the remaining quota across all bands.
func (s *AssessmentSession) TotalQuestions() int {
	total := len(s.AnswerTrace)
	for _, n := range s.QuotaRemaining {
		total += n
	}
	return total
}

// Remaining returns how many questions the session still has to deliver.
func (s *AssessmentSession) Remaining() int {
	remaining := 0
	for _, n := range s.QuotaRemaining {
		remaining += n
	}
	return remaining
}

// Transition moves the session to the next lifecycle state.
// Returns ErrInvalidStatusTransition if the move is not permitted.
func (s *AssessmentSession) Transition(next SessionStatus) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidStatusTransition, s.Status, next)
	}
	s.Status = next
	return nil
}

// AppendAnswer adds a graded answer to the trace, consuming one slot of the
// record's band quota and advancing the current index. The trace/index and
// quota invariants hold before and after the call.
func (s *AssessmentSession) AppendAnswer(rec *AnswerRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	if rec.SequenceIndex != s.CurrentIndex {
		return fmt.Errorf("%w: record index %d, session index %d",
			ErrTraceIndexMismatch, rec.SequenceIndex, s.CurrentIndex)
	}

	if s.QuotaRemaining[rec.Tier] <= 0 {
		return fmt.Errorf("%w: band %q", ErrQuotaExhausted, rec.Tier)
	}

	s.AnswerTrace = append(s.AnswerTrace, *rec)
	s.QuotaRemaining[rec.Tier]--
	s.CurrentIndex++
	return nil
}

// RecordPoolReset appends a pool-reset event for the given band to the
// session's audit log.
func (s *AssessmentSession) RecordPoolReset(band Tier, now time.Time) {
	s.PoolResets = append(s.PoolResets, PoolResetEvent{
		Band:       band,
		AtIndex:    s.CurrentIndex,
		OccurredAt: now,
	})
}

// LastPoolResetIndex returns the trace index of the most recent pool reset
// for the given band, or -1 if the band has never been reset.
func (s *AssessmentSession) LastPoolResetIndex(band Tier) int {
	last := -1
	for _, ev := range s.PoolResets {
		if ev.Band == band && ev.AtIndex > last {
			last = ev.AtIndex
		}
	}
	return last
}

// CheckConsistency verifies the structural invariants that every persisted
// session must satisfy: trace length equals current index, quota arithmetic
// adds up to the configured total, and every record sits at its own index.
// Violations indicate storage-level corruption and are surfaced, never
// silently repaired.
func (s *AssessmentSession) CheckConsistency(totalQuestions int) error {
	if len(s.AnswerTrace) != s.CurrentIndex {
		return fmt.Errorf("%w: trace length %d, current index %d",
			ErrTraceIndexMismatch, len(s.AnswerTrace), s.CurrentIndex)
	}

	if s.TotalQuestions() != totalQuestions {
		return fmt.Errorf("%w: quota remaining + trace = %d, configured total %d",
			ErrQuotaArithmetic, s.TotalQuestions(), totalQuestions)
	}

	for i, rec := range s.AnswerTrace {
		if rec.SequenceIndex != i {
			return fmt.Errorf("%w: record at position %d carries index %d",
				ErrTraceIndexMismatch, i, rec.SequenceIndex)
		}
	}

	return nil
}
