package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/domain/cat"
	"github.com/quizmith/adapt-api/internal/platform/logger"
	"github.com/quizmith/adapt-api/internal/store"
)

// service implements the AssessmentService interface.
type service struct {
	sessions    store.SessionStore
	questions   store.QuestionStore
	params      *cat.Params
	estimator   cat.Estimator
	progression *cat.Progression
	selector    *cat.Selector
	synthesizer *cat.Synthesizer
	now         func() time.Time
	logger      *slog.Logger
}

// Ensure service implements the AssessmentService interface
var _ AssessmentService = (*service)(nil)

// NewService creates a new AssessmentService with the given dependencies.
// Panics if sessions or questions is nil; a nil params falls back to the
// defaults and a nil logger falls back to slog.Default().
func NewService(
	sessions store.SessionStore,
	questions store.QuestionStore,
	params *cat.Params,
	log *slog.Logger,
) (AssessmentService, error) {
	if sessions == nil {
		panic("session store cannot be nil")
	}
	if questions == nil {
		panic("question store cannot be nil")
	}
	if params == nil {
		params = cat.NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine parameters: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "assessment_service"))

	estimator, err := cat.NewEstimator(params.Strategy, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create estimator: %w", err)
	}

	return &service{
		sessions:    sessions,
		questions:   questions,
		params:      params,
		estimator:   estimator,
		progression: cat.NewProgression(params),
		selector:    cat.NewSelector(log),
		synthesizer: cat.NewSynthesizer(params),
		now:         func() time.Time { return time.Now().UTC() },
		logger:      log,
	}, nil
}

// Start implements AssessmentService.Start
func (s *service) Start(ctx context.Context, learnerID uuid.UUID, subject string) (*StartResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	subject = strings.TrimSpace(subject)

	sess, err := domain.NewAssessmentSession(
		learnerID,
		subject,
		s.progression.InitialTier(s.params.QuotaCopy()),
		s.params.QuotaCopy(),
	)
	if err != nil {
		return nil, NewServiceError("start session", fmt.Errorf("%w: %v", domain.ErrValidation, err))
	}

	if err := sess.Transition(domain.SessionInProgress); err != nil {
		return nil, NewServiceError("start session", err)
	}

	first, err := s.selectQuestion(ctx, sess)
	if err != nil {
		return nil, NewServiceError("start session", err)
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, NewServiceError("start session", err)
	}

	log.Info("assessment session started",
		slog.String("session_id", sess.ID.String()),
		slog.String("learner_id", learnerID.String()),
		slog.String("subject", subject),
		slog.Int("total_questions", sess.TotalQuestions()),
		slog.String("initial_tier", string(sess.Tier)))

	return &StartResult{
		SessionID:      sess.ID,
		TotalQuestions: sess.TotalQuestions(),
		Question:       first,
	}, nil
}

// CurrentQuestion implements AssessmentService.CurrentQuestion
func (s *service) CurrentQuestion(ctx context.Context, sessionID uuid.UUID) (*domain.Question, error) {
	sess, err := s.loadActive(ctx, sessionID)
	if err != nil {
		return nil, NewServiceError("get current question", err)
	}

	// Recomputing the selection over the persisted trace yields the same
	// question the session was already shown; nothing is saved here.
	question, err := s.selectQuestion(ctx, sess)
	if err != nil {
		return nil, NewServiceError("get current question", err)
	}

	return question, nil
}

// SubmitAnswer implements AssessmentService.SubmitAnswer
func (s *service) SubmitAnswer(ctx context.Context, sessionID uuid.UUID, input SubmitAnswerInput) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(input.Answer) == "" {
		return nil, NewServiceError("submit answer", fmt.Errorf("%w: %v", ErrInvalidAnswer, domain.ErrEmptyAnswer))
	}
	if input.ResponseTimeMs < 0 {
		return nil, NewServiceError("submit answer", fmt.Errorf("%w: %v", ErrInvalidAnswer, domain.ErrInvalidResponseTime))
	}

	sess, err := s.loadActive(ctx, sessionID)
	if err != nil {
		return nil, NewServiceError("submit answer", err)
	}

	pending, err := s.selectQuestion(ctx, sess)
	if err != nil {
		return nil, NewServiceError("submit answer", err)
	}

	if input.QuestionID != pending.ID {
		return nil, NewServiceError("submit answer", fmt.Errorf("%w: submitted %s, pending %s",
			ErrUnexpectedQuestion, input.QuestionID, pending.ID))
	}

	isCorrect := pending.IsCorrect(input.Answer)

	rec, err := domain.NewAnswerRecord(pending, input.Answer, isCorrect, input.ResponseTimeMs, sess.CurrentIndex, s.now())
	if err != nil {
		return nil, NewServiceError("submit answer", fmt.Errorf("%w: %v", ErrInvalidAnswer, err))
	}

	if err := sess.AppendAnswer(rec); err != nil {
		return nil, NewServiceError("submit answer", err)
	}

	est := s.estimator.Estimate(sess.AnswerTrace)

	result := &SubmitResult{
		IsCorrect:      isCorrect,
		Ability:        est.Ability,
		ConfidenceLow:  est.Low,
		ConfidenceHigh: est.High,
		Answered:       len(sess.AnswerTrace),
		Remaining:      sess.Remaining(),
	}

	if sess.Remaining() == 0 {
		if err := s.complete(sess, est); err != nil {
			return nil, NewServiceError("submit answer", err)
		}
		result.Profile = sess.Profile
	} else {
		sess.Tier = s.progression.NextTier(sess.Tier, sess.AnswerTrace, sess.QuotaRemaining)

		next, err := s.selectQuestion(ctx, sess)
		if err != nil {
			return nil, NewServiceError("submit answer", err)
		}
		result.NextQuestion = next
	}
	result.Status = sess.Status

	if err := s.sessions.Update(ctx, sess); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, NewServiceError("submit answer", fmt.Errorf("%w: %v", ErrConcurrentModification, err))
		}
		return nil, NewServiceError("submit answer", err)
	}

	log.Info("answer recorded",
		slog.String("session_id", sess.ID.String()),
		slog.Int("index", sess.CurrentIndex-1),
		slog.Bool("correct", isCorrect),
		slog.String("tier", string(rec.Tier)),
		slog.Float64("ability", est.Ability),
		slog.String("status", string(sess.Status)))

	return result, nil
}

// Abandon implements AssessmentService.Abandon
func (s *service) Abandon(ctx context.Context, sessionID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.loadActive(ctx, sessionID)
	if err != nil {
		return NewServiceError("abandon session", err)
	}

	if err := sess.Transition(domain.SessionAbandoned); err != nil {
		return NewServiceError("abandon session", err)
	}
	completedAt := s.now()
	sess.CompletedAt = &completedAt

	if err := s.sessions.Update(ctx, sess); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return NewServiceError("abandon session", fmt.Errorf("%w: %v", ErrConcurrentModification, err))
		}
		return NewServiceError("abandon session", err)
	}

	log.Info("session abandoned",
		slog.String("session_id", sess.ID.String()),
		slog.Int("answered", len(sess.AnswerTrace)))
	return nil
}

// GetProfile implements AssessmentService.GetProfile
func (s *service) GetProfile(ctx context.Context, sessionID uuid.UUID) (*domain.LearnerProfile, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, NewServiceError("get profile", err)
	}

	if sess.Status != domain.SessionCompleted {
		return nil, NewServiceError("get profile", fmt.Errorf("%w: session is %s", ErrProfileNotReady, sess.Status))
	}

	if sess.Profile == nil {
		return nil, NewServiceError("get profile", fmt.Errorf("%w: completed session has no profile", ErrCorruptSession))
	}

	return sess.Profile, nil
}

// loadActive loads a session and verifies it is structurally consistent and
// still in_progress.
func (s *service) loadActive(ctx context.Context, sessionID uuid.UUID) (*domain.AssessmentSession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.CheckConsistency(s.params.TotalQuestions()); err != nil {
		s.logger.Error("session failed consistency check",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}

	if sess.Status != domain.SessionInProgress {
		return nil, fmt.Errorf("%w: session is %s", ErrSessionNotActive, sess.Status)
	}

	return sess, nil
}

// selectQuestion picks the question for the session's current index from the
// session's target band. A pool reset triggered by the rotation tracker is
// recorded on the session and persists with the caller's save; reselecting
// after a persisted reset is idempotent.
func (s *service) selectQuestion(ctx context.Context, sess *domain.AssessmentSession) (*domain.Question, error) {
	pool, err := s.questions.GetPool(ctx, sess.Subject, sess.Tier)
	if err != nil {
		return nil, err
	}

	return s.selector.NextQuestion(sess, sess.Tier, pool, cat.WeakTopics(sess.AnswerTrace, s.params))
}

// complete finalizes a session whose quotas are fully consumed: terminal
// transition, final ability, synthesized profile.
func (s *service) complete(sess *domain.AssessmentSession, est cat.Estimate) error {
	if err := sess.Transition(domain.SessionCompleted); err != nil {
		return err
	}
	completedAt := s.now()
	sess.CompletedAt = &completedAt

	ability := est.Ability
	sess.FinalAbility = &ability

	profile, err := s.synthesizer.Synthesize(sess, est)
	if err != nil {
		return err
	}
	sess.Profile = profile

	s.logger.Info("assessment session completed",
		slog.String("session_id", sess.ID.String()),
		slog.Float64("final_ability", ability),
		slog.String("proficiency", string(profile.ProficiencyLevel)))
	return nil
}
