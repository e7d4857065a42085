package api

import (
	"time"

	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/service/assessment"
)

// StartAssessmentRequest is the request to start a new assessment session.
type StartAssessmentRequest struct {
	LearnerID string `json:"learner_id" validate:"required,uuid"`
	Subject   string `json:"subject"    validate:"required,min=1,max=200"`
}

// SubmitAnswerRequest is the request to answer the session's pending question.
type SubmitAnswerRequest struct {
	QuestionID     string `json:"question_id"      validate:"required,uuid"`
	Answer         string `json:"answer"           validate:"required"`
	ResponseTimeMs int    `json:"response_time_ms" validate:"gte=0"`
}

// QuestionResponse is the wire representation of a question. The correct
// answer is deliberately absent; grading happens server-side only.
type QuestionResponse struct {
	ID             string   `json:"id"`
	Subject        string   `json:"subject"`
	Topic          string   `json:"topic"`
	DifficultyTier string   `json:"difficulty_tier"`
	Text           string   `json:"text"`
	Options        []string `json:"options,omitempty"`
}

// AbilityResponse carries the current ability estimate with its confidence
// interval.
type AbilityResponse struct {
	Estimate       float64 `json:"estimate"`
	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
}

// StartAssessmentResponse is returned when a session starts.
type StartAssessmentResponse struct {
	SessionID      string           `json:"session_id"`
	TotalQuestions int              `json:"total_questions"`
	Question       QuestionResponse `json:"question"`
}

// SubmitAnswerResponse is returned after grading one answer. Exactly one of
// NextQuestion and FinalProfile is set, depending on Status.
type SubmitAnswerResponse struct {
	Status       string            `json:"status"`
	IsCorrect    bool              `json:"is_correct"`
	Ability      AbilityResponse   `json:"ability"`
	Answered     int               `json:"answered"`
	Remaining    int               `json:"remaining"`
	NextQuestion *QuestionResponse `json:"next_question,omitempty"`
	FinalProfile *ProfileResponse  `json:"final_profile,omitempty"`
}

// RecommendationResponse is one actionable suggestion in a profile.
type RecommendationResponse struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ProfileResponse is the wire representation of a learner profile.
type ProfileResponse struct {
	AbilityEstimate  float64                  `json:"ability_estimate"`
	ConfidenceLow    float64                  `json:"confidence_low"`
	ConfidenceHigh   float64                  `json:"confidence_high"`
	ProficiencyLevel string                   `json:"proficiency_level"`
	Strengths        []string                 `json:"strengths"`
	Weaknesses       []string                 `json:"weaknesses"`
	LearningStyle    string                   `json:"learning_style"`
	Recommendations  []RecommendationResponse `json:"recommendations"`
	AccuracyByTier   map[string]float64       `json:"accuracy_by_tier"`
	AccuracyByTopic  map[string]float64       `json:"accuracy_by_topic"`
	GeneratedAt      time.Time                `json:"generated_at"`
}

// toQuestionResponse converts a domain question to its wire representation.
func toQuestionResponse(q *domain.Question) QuestionResponse {
	return QuestionResponse{
		ID:             q.ID.String(),
		Subject:        q.Subject,
		Topic:          q.Topic,
		DifficultyTier: string(q.Tier),
		Text:           q.Text,
		Options:        q.Options,
	}
}

// toProfileResponse converts a domain profile to its wire representation.
func toProfileResponse(p *domain.LearnerProfile) *ProfileResponse {
	recs := make([]RecommendationResponse, 0, len(p.Recommendations))
	for _, rec := range p.Recommendations {
		recs = append(recs, RecommendationResponse{
			Code:     rec.Code,
			Severity: string(rec.Severity),
			Message:  rec.Message,
		})
	}

	byTier := make(map[string]float64, len(p.AccuracyByTier))
	for tier, acc := range p.AccuracyByTier {
		byTier[string(tier)] = acc
	}

	return &ProfileResponse{
		AbilityEstimate:  p.AbilityEstimate,
		ConfidenceLow:    p.ConfidenceLow,
		ConfidenceHigh:   p.ConfidenceHigh,
		ProficiencyLevel: string(p.ProficiencyLevel),
		Strengths:        p.Strengths,
		Weaknesses:       p.Weaknesses,
		LearningStyle:    string(p.LearningStyle),
		Recommendations:  recs,
		AccuracyByTier:   byTier,
		AccuracyByTopic:  p.AccuracyByTopic,
		GeneratedAt:      p.GeneratedAt,
	}
}

// toSubmitAnswerResponse converts a service submit result to its wire
// representation.
func toSubmitAnswerResponse(result *assessment.SubmitResult) SubmitAnswerResponse {
	resp := SubmitAnswerResponse{
		Status:    string(result.Status),
		IsCorrect: result.IsCorrect,
		Ability: AbilityResponse{
			Estimate:       result.Ability,
			ConfidenceLow:  result.ConfidenceLow,
			ConfidenceHigh: result.ConfidenceHigh,
		},
		Answered:  result.Answered,
		Remaining: result.Remaining,
	}

	if result.NextQuestion != nil {
		q := toQuestionResponse(result.NextQuestion)
		resp.NextQuestion = &q
	}
	if result.Profile != nil {
		resp.FinalProfile = toProfileResponse(result.Profile)
	}

	return resp
}
