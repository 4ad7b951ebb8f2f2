package model

import (
	"time"

	"github.com/google/uuid"
)

// TestAnswer is one recorded response within a session. Resubmitting the same
// question overwrites the previous response; the (session, question) pair is
// unique so progress counts never double.
type TestAnswer struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Response   string    `json:"response"`
	AnsweredAt time.Time `json:"answered_at"`
}
