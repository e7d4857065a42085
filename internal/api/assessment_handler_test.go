package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/mocks"
	"github.com/quizmith/adapt-api/internal/service/assessment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAnswer = "alpha"

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	var questions []*domain.Question
	for _, tier := range domain.Tiers() {
		for i := 0; i < 8; i++ {
			q, err := domain.NewQuestion(
				"math",
				"fractions",
				tier,
				fmt.Sprintf("%s question %d", tier, i),
				testAnswer,
				[]string{"alpha", "beta", "gamma", "delta"},
			)
			require.NoError(t, err)
			questions = append(questions, q)
		}
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := assessment.NewService(mocks.NewSessionStore(), mocks.NewQuestionStore(questions...), nil, log)
	require.NoError(t, err)

	return NewRouter(NewAssessmentHandler(svc, log))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func startAssessment(t *testing.T, router http.Handler) StartAssessmentResponse {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/assessments", StartAssessmentRequest{
		LearnerID: uuid.New().String(),
		Subject:   "math",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp StartAssessmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testRouter(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStartAssessment(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	resp := startAssessment(t, router)

	_, err := uuid.Parse(resp.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, 20, resp.TotalQuestions)
	assert.Equal(t, "easy", resp.Question.DifficultyTier)
	assert.NotEmpty(t, resp.Question.Text)
}

// TestStartAssessmentNeverLeaksAnswer guards the grading boundary: the wire
// form of a question must not carry the correct answer.
func TestStartAssessmentNeverLeaksAnswer(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testRouter(t), http.MethodPost, "/assessments", StartAssessmentRequest{
		LearnerID: uuid.New().String(),
		Subject:   "math",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))

	var question map[string]any
	require.NoError(t, json.Unmarshal(raw["question"], &question))
	assert.NotContains(t, question, "correct_answer")
	assert.NotContains(t, question, "CorrectAnswer")
}

func TestStartAssessmentBadRequest(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	testCases := []struct {
		name string
		body any
	}{
		{"missing subject", StartAssessmentRequest{LearnerID: uuid.New().String()}},
		{"missing learner", StartAssessmentRequest{Subject: "math"}},
		{"malformed learner id", StartAssessmentRequest{LearnerID: "not-a-uuid", Subject: "math"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := doJSON(t, router, http.MethodPost, "/assessments", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitAnswer(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	start := startAssessment(t, router)

	rec := doJSON(t, router, http.MethodPost, "/assessments/"+start.SessionID+"/answers", SubmitAnswerRequest{
		QuestionID:     start.Question.ID,
		Answer:         testAnswer,
		ResponseTimeMs: 4000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmitAnswerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "in_progress", resp.Status)
	assert.True(t, resp.IsCorrect)
	assert.Equal(t, 1, resp.Answered)
	assert.Equal(t, 19, resp.Remaining)
	require.NotNil(t, resp.NextQuestion)
	assert.Nil(t, resp.FinalProfile)
	assert.GreaterOrEqual(t, resp.Ability.ConfidenceHigh, resp.Ability.ConfidenceLow)
}

func TestSubmitAnswerWrongQuestion(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	start := startAssessment(t, router)

	rec := doJSON(t, router, http.MethodPost, "/assessments/"+start.SessionID+"/answers", SubmitAnswerRequest{
		QuestionID:     uuid.New().String(),
		Answer:         testAnswer,
		ResponseTimeMs: 4000,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentQuestion(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	start := startAssessment(t, router)

	rec := doJSON(t, router, http.MethodGet, "/assessments/"+start.SessionID+"/question", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QuestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, start.Question.ID, resp.ID)
}

func TestSessionPathErrors(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/assessments/not-a-uuid/question", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/assessments/"+uuid.New().String()+"/question", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProfileBeforeCompletion(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	start := startAssessment(t, router)

	rec := doJSON(t, router, http.MethodGet, "/assessments/"+start.SessionID+"/profile", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAbandonAssessment(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	start := startAssessment(t, router)

	rec := doJSON(t, router, http.MethodPost, "/assessments/"+start.SessionID+"/abandon", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The session is terminal; further interaction conflicts.
	rec = doJSON(t, router, http.MethodGet, "/assessments/"+start.SessionID+"/question", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
