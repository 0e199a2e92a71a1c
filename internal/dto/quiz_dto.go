package dto

import (
	"github.com/google/uuid"
)

type StartQuizRequest struct {
	BoardId       uuid.UUID `json:"board_id" validate:"required"`
	QuestionCount int       `json:"question_count" validate:"omitempty,min=1,max=20"`
	Model         string    `json:"model,omitempty"`
}

type StartQuizResponse struct {
	QuizId   uuid.UUID `json:"quiz_id"`
	Phase    string    `json:"phase"`
	Question string    `json:"question"`
	Index    int       `json:"index"`
	Total    int       `json:"total"`
}

type SubmitAnswerRequest struct {
	QuizId uuid.UUID `json:"quiz_id" validate:"required"`
	Answer string    `json:"answer" validate:"required"`
}

type SubmitAnswerResponse struct {
	Phase    string `json:"phase"`
	Feedback string `json:"feedback"`
	Correct  bool   `json:"correct"`
}

type ClarifyRequest struct {
	QuizId   uuid.UUID `json:"quiz_id" validate:"required"`
	Question string    `json:"question" validate:"required"`
}

type ClarifyResponse struct {
	Phase  string `json:"phase"`
	Answer string `json:"answer"`
}

type AdvanceQuizRequest struct {
	QuizId uuid.UUID `json:"quiz_id" validate:"required"`
}

type AdvanceQuizResponse struct {
	Phase    string `json:"phase"`
	Question string `json:"question,omitempty"`
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Summary  string `json:"summary,omitempty"`
	Score    int    `json:"score"`
}
