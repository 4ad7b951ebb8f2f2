package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/talentlens/talentlens-backend/internal/config"
	"github.com/talentlens/talentlens-backend/internal/model"
	"github.com/talentlens/talentlens-backend/internal/scoring"
)

// TemplateStore resolves test templates.
type TemplateStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.TestTemplate, error)
}

// SessionStore persists test sessions. Create must rely on the store's
// partial uniqueness guarantee: when a concurrent create for the same
// (user, template) pair wins first, the loser gets pgx.ErrNoRows. Complete
// must guard the transition the same way, updating only an IN_PROGRESS row
// and returning pgx.ErrNoRows when none matched.
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error)
	GetInProgress(ctx context.Context, userID string, templateID uuid.UUID) (*model.TestSession, error)
	Create(ctx context.Context, s *model.TestSession) error
	Complete(ctx context.Context, id uuid.UUID, score json.RawMessage) error
}

// AnswerStore persists answers with a uniqueness constraint on
// (session, question).
type AnswerStore interface {
	Upsert(ctx context.Context, a *model.TestAnswer) error
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.TestAnswer, error)
}

// Selector assembles the question order for a new session.
type Selector interface {
	Select(ctx context.Context, tmpl *model.TestTemplate) ([]uuid.UUID, error)
}

// SessionView is the assembled read model for a session.
type SessionView struct {
	ID                uuid.UUID            `json:"id"`
	TemplateID        uuid.UUID            `json:"template_id"`
	UserID            string               `json:"user_id"`
	Status            model.SessionStatus  `json:"status"`
	TotalQuestions    int                  `json:"total_questions"`
	AnsweredQuestions int                  `json:"answered_questions"`
	QuestionOrder     []uuid.UUID          `json:"question_order"`
	Score             *scoring.ScoreResult `json:"score,omitempty"`
	StartedAt         time.Time            `json:"started_at"`
	FinishedAt        *time.Time           `json:"finished_at,omitempty"`
}

// Progress reports answered/total after recording an answer.
type Progress struct {
	SessionID uuid.UUID `json:"session_id"`
	Answered  int       `json:"answered"`
	Total     int       `json:"total"`
}

// answerEvent is queued for the audit worker after each recorded answer.
type answerEvent struct {
	SessionID  string    `json:"session_id"`
	QuestionID string    `json:"question_id"`
	Response   string    `json:"response"`
	RecordedAt time.Time `json:"recorded_at"`
}

// progressEvent is published on the template monitor channel.
type progressEvent struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
}

// SessionService owns the test session lifecycle.
type SessionService struct {
	templates TemplateStore
	sessions  SessionStore
	answers   AnswerStore
	selector  Selector
	registry  *scoring.Registry
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	templates TemplateStore,
	sessions SessionStore,
	answers AnswerStore,
	selector Selector,
	registry *scoring.Registry,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		templates: templates,
		sessions:  sessions,
		answers:   answers,
		selector:  selector,
		registry:  registry,
		rdb:       rdb,
		log:       log.With().Str("component", "session_service").Logger(),
	}
}

// StartSession creates a new in-progress session for (template, user). At
// most one in-progress session may exist per pair; a second attempt fails
// with DuplicateSessionError carrying the existing session's id.
func (s *SessionService) StartSession(ctx context.Context, templateID uuid.UUID, userID string) (*SessionView, error) {
	tmpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "template", ID: templateID}
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	if !tmpl.Active {
		return nil, &NotFoundError{Resource: "template", ID: templateID}
	}

	existing, err := s.sessions.GetInProgress(ctx, userID, templateID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing session: %w", err)
	}
	if existing != nil {
		return nil, &DuplicateSessionError{
			ExistingSessionID: existing.ID,
			TemplateID:        templateID,
			UserID:            userID,
		}
	}

	order, err := s.selector.Select(ctx, tmpl)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}

	session := &model.TestSession{
		TemplateID:    templateID,
		UserID:        userID,
		Status:        model.SessionStatusInProgress,
		QuestionOrder: order,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the create race: the store's partial unique index let
			// exactly one concurrent insert through. Surface the winner.
			winner, fetchErr := s.sessions.GetInProgress(ctx, userID, templateID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent start detected, but fetch failed: %w", fetchErr)
			}
			return nil, &DuplicateSessionError{
				ExistingSessionID: winner.ID,
				TemplateID:        templateID,
				UserID:            userID,
			}
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &SessionView{
		ID:             session.ID,
		TemplateID:     templateID,
		UserID:         userID,
		Status:         model.SessionStatusInProgress,
		TotalQuestions: len(order),
		QuestionOrder:  order,
		StartedAt:      session.StartedAt,
	}, nil
}

// RecordAnswer persists a response for a question assigned to the session and
// returns updated progress. Resubmissions overwrite.
func (s *SessionService) RecordAnswer(ctx context.Context, userID string, sessionID, questionID uuid.UUID, response string) (*Progress, error) {
	session, err := s.getInProgress(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	assigned := false
	for _, qid := range session.QuestionOrder {
		if qid == questionID {
			assigned = true
			break
		}
	}
	if !assigned {
		return nil, &NotInSessionError{SessionID: sessionID, QuestionID: questionID}
	}

	answer := &model.TestAnswer{
		SessionID:  sessionID,
		QuestionID: questionID,
		Response:   response,
	}
	if err := s.answers.Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	answered, err := s.answers.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}

	progress := &Progress{
		SessionID: sessionID,
		Answered:  answered,
		Total:     len(session.QuestionOrder),
	}
	s.emitAnswerEvents(ctx, session, answer, progress)
	return progress, nil
}

// CompleteSession scores the session and transitions it to COMPLETED.
func (s *SessionService) CompleteSession(ctx context.Context, userID string, sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.getInProgress(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	tmpl, err := s.templates.GetByID(ctx, session.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	answers, err := s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	strategy, err := s.registry.StrategyFor(tmpl.Goal)
	if err != nil {
		// Misconfigured template goal is a server fault, not user error.
		s.log.Error().Err(err).
			Str("template_id", tmpl.ID.String()).
			Str("goal", string(tmpl.Goal)).
			Msg("No scoring strategy for template goal")
		return nil, err
	}

	result, err := strategy.Score(session, answers)
	if err != nil {
		return nil, fmt.Errorf("score session: %w", err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode score: %w", err)
	}
	if err := s.sessions.Complete(ctx, sessionID, raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the complete race (or a repeat landed after completion):
			// the guarded UPDATE matched no IN_PROGRESS row.
			return nil, &InvalidStateError{SessionID: sessionID, Status: model.SessionStatusCompleted}
		}
		return nil, fmt.Errorf("complete session: %w", err)
	}

	now := time.Now()
	return &SessionView{
		ID:                session.ID,
		TemplateID:        session.TemplateID,
		UserID:            session.UserID,
		Status:            model.SessionStatusCompleted,
		TotalQuestions:    len(session.QuestionOrder),
		AnsweredQuestions: len(answers),
		QuestionOrder:     session.QuestionOrder,
		Score:             result,
		StartedAt:         session.StartedAt,
		FinishedAt:        &now,
	}, nil
}

// GetSession assembles the session view. The answered count always comes
// from a live count query, never a cached counter.
func (s *SessionService) GetSession(ctx context.Context, userID string, sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "session", ID: sessionID}
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		// Sessions are private; hide existence from other users.
		return nil, &NotFoundError{Resource: "session", ID: sessionID}
	}

	answered, err := s.answers.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}

	view := &SessionView{
		ID:                session.ID,
		TemplateID:        session.TemplateID,
		UserID:            session.UserID,
		Status:            session.Status,
		TotalQuestions:    len(session.QuestionOrder),
		AnsweredQuestions: answered,
		QuestionOrder:     session.QuestionOrder,
		StartedAt:         session.StartedAt,
		FinishedAt:        session.FinishedAt,
	}
	if len(session.Score) > 0 {
		var result scoring.ScoreResult
		if err := json.Unmarshal(session.Score, &result); err != nil {
			return nil, fmt.Errorf("decode score: %w", err)
		}
		view.Score = &result
	}
	return view, nil
}

// getInProgress loads a session owned by userID and verifies it is still
// IN_PROGRESS.
func (s *SessionService) getInProgress(ctx context.Context, userID string, sessionID uuid.UUID) (*model.TestSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "session", ID: sessionID}
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		// Sessions are private; hide existence from other users.
		return nil, &NotFoundError{Resource: "session", ID: sessionID}
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, &InvalidStateError{SessionID: sessionID, Status: session.Status}
	}
	return session, nil
}

// emitAnswerEvents queues the audit event and publishes live progress.
// Both are best-effort: monitoring never blocks answer recording.
func (s *SessionService) emitAnswerEvents(ctx context.Context, session *model.TestSession, answer *model.TestAnswer, progress *Progress) {
	if s.rdb == nil {
		return
	}

	event, _ := json.Marshal(answerEvent{
		SessionID:  session.ID.String(),
		QuestionID: answer.QuestionID.String(),
		Response:   answer.Response,
		RecordedAt: answer.AnsweredAt,
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.AnswerEventsQueue, event).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to queue answer event")
	}

	live, _ := json.Marshal(progressEvent{
		SessionID: session.ID.String(),
		UserID:    session.UserID,
		Answered:  progress.Answered,
		Total:     progress.Total,
	})
	channel := config.CacheKey.TemplateMonitorChannel(session.TemplateID.String())
	if err := s.rdb.Publish(ctx, channel, live).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to publish progress event")
	}
}
