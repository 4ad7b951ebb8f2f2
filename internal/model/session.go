package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates test session states.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// TestSession represents one user's attempt at a template. QuestionOrder is
// fixed at creation and never changes afterwards; shuffle, if configured, is
// applied exactly once before the session is persisted.
type TestSession struct {
	ID            uuid.UUID       `json:"id"`
	TemplateID    uuid.UUID       `json:"template_id"`
	UserID        string          `json:"user_id"`
	Status        SessionStatus   `json:"status"`
	QuestionOrder []uuid.UUID     `json:"question_order"`
	Score         json.RawMessage `json:"score,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
}

// RecordAnswerRequest is the payload for submitting an answer.
type RecordAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Response   string `json:"response" binding:"required,max=4000"`
}
