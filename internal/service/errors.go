package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// NotFoundError reports a missing (or inactive) template or session.
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// DuplicateSessionError reports an attempt to start a second in-progress
// session for the same (user, template) pair. It carries the existing
// session's id so the caller can resume or surface it.
type DuplicateSessionError struct {
	ExistingSessionID uuid.UUID
	TemplateID        uuid.UUID
	UserID            string
}

func (e *DuplicateSessionError) Error() string {
	return fmt.Sprintf("user %s already has in-progress session %s for template %s",
		e.UserID, e.ExistingSessionID, e.TemplateID)
}

// InvalidStateError reports an operation attempted on a session in the wrong
// lifecycle state.
type InvalidStateError struct {
	SessionID uuid.UUID
	Status    model.SessionStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session %s is %s, not IN_PROGRESS", e.SessionID, e.Status)
}

// NotInSessionError reports an answer submitted for a question outside the
// session's assigned question order.
type NotInSessionError struct {
	SessionID  uuid.UUID
	QuestionID uuid.UUID
}

func (e *NotInSessionError) Error() string {
	return fmt.Sprintf("question %s is not assigned to session %s", e.QuestionID, e.SessionID)
}
