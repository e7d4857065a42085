package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/api/shared"
	"github.com/quizmith/adapt-api/internal/service/assessment"
)

// AssessmentHandler exposes the assessment service over HTTP. It stays thin:
// decode, validate, call the service, map errors, encode.
type AssessmentHandler struct {
	service assessment.AssessmentService
	logger  *slog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
// Panics if service is nil. If logger is nil, a default logger will be used.
func NewAssessmentHandler(service assessment.AssessmentService, logger *slog.Logger) *AssessmentHandler {
	if service == nil {
		panic("assessment service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AssessmentHandler{
		service: service,
		logger:  logger.With(slog.String("component", "assessment_handler")),
	}
}

// Start handles POST /assessments
// It creates a new assessment session and returns the first question.
func (h *AssessmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartAssessmentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	learnerID, err := uuid.Parse(req.LearnerID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid learner ID")
		return
	}

	result, err := h.service.Start(r.Context(), learnerID, req.Subject)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, StartAssessmentResponse{
		SessionID:      result.SessionID.String(),
		TotalQuestions: result.TotalQuestions,
		Question:       toQuestionResponse(result.Question),
	})
}

// CurrentQuestion handles GET /assessments/{id}/question
// It returns the question the session is currently waiting on, recomputed
// deterministically from persisted state.
func (h *AssessmentHandler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.pathSessionID(w, r)
	if !ok {
		return
	}

	question, err := h.service.CurrentQuestion(r.Context(), sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toQuestionResponse(question))
}

// SubmitAnswer handles POST /assessments/{id}/answers
// It grades the answer and returns either the next question or, on the
// final answer, the synthesized learner profile.
func (h *AssessmentHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.pathSessionID(w, r)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid question ID")
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), sessionID, assessment.SubmitAnswerInput{
		QuestionID:     questionID,
		Answer:         req.Answer,
		ResponseTimeMs: req.ResponseTimeMs,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toSubmitAnswerResponse(result))
}

// Abandon handles POST /assessments/{id}/abandon
func (h *AssessmentHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.pathSessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.Abandon(r.Context(), sessionID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /assessments/{id}/profile
func (h *AssessmentHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.pathSessionID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toProfileResponse(profile))
}

// pathSessionID extracts and parses the {id} path parameter, writing a 400
// response on failure.
func (h *AssessmentHandler) pathSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Session ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}

	return id, true
}
