package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/talentlens/talentlens-backend/internal/model"
	"github.com/talentlens/talentlens-backend/internal/scoring"
)

type fakeTemplateStore struct {
	templates map[uuid.UUID]*model.TestTemplate
}

func (f *fakeTemplateStore) GetByID(_ context.Context, id uuid.UUID) (*model.TestTemplate, error) {
	tmpl, ok := f.templates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return tmpl, nil
}

// fakeSessionStore mimics the partial unique index: a second in-progress
// insert for the same (user, template) pair returns pgx.ErrNoRows, exactly
// like ON CONFLICT DO NOTHING RETURNING with no row produced.
type fakeSessionStore struct {
	sessions map[uuid.UUID]*model.TestSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*model.TestSession)}
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.TestSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) GetInProgress(_ context.Context, userID string, templateID uuid.UUID) (*model.TestSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.TemplateID == templateID && s.Status == model.SessionStatusInProgress {
			copied := *s
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) Create(ctx context.Context, s *model.TestSession) error {
	if _, err := f.GetInProgress(ctx, s.UserID, s.TemplateID); err == nil {
		return pgx.ErrNoRows
	}
	s.ID = uuid.New()
	s.StartedAt = time.Now()
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeSessionStore) Complete(_ context.Context, id uuid.UUID, score json.RawMessage) error {
	s, ok := f.sessions[id]
	if !ok || s.Status != model.SessionStatusInProgress {
		// The guarded UPDATE matches only an IN_PROGRESS row.
		return pgx.ErrNoRows
	}
	now := time.Now()
	s.Status = model.SessionStatusCompleted
	s.Score = score
	s.FinishedAt = &now
	return nil
}

type fakeAnswerStore struct {
	answers map[uuid.UUID]map[uuid.UUID]model.TestAnswer
}

func newFakeAnswerStore() *fakeAnswerStore {
	return &fakeAnswerStore{answers: make(map[uuid.UUID]map[uuid.UUID]model.TestAnswer)}
}

func (f *fakeAnswerStore) Upsert(_ context.Context, a *model.TestAnswer) error {
	if f.answers[a.SessionID] == nil {
		f.answers[a.SessionID] = make(map[uuid.UUID]model.TestAnswer)
	}
	a.ID = uuid.New()
	a.AnsweredAt = time.Now()
	f.answers[a.SessionID][a.QuestionID] = *a
	return nil
}

func (f *fakeAnswerStore) CountBySession(_ context.Context, sessionID uuid.UUID) (int, error) {
	return len(f.answers[sessionID]), nil
}

func (f *fakeAnswerStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.TestAnswer, error) {
	var out []model.TestAnswer
	for _, a := range f.answers[sessionID] {
		out = append(out, a)
	}
	return out, nil
}

type fixedSelector struct {
	order []uuid.UUID
}

func (f *fixedSelector) Select(context.Context, *model.TestTemplate) ([]uuid.UUID, error) {
	return f.order, nil
}

func newTestService(tmpl *model.TestTemplate, order []uuid.UUID) (*SessionService, *fakeSessionStore, *fakeAnswerStore) {
	templates := &fakeTemplateStore{templates: map[uuid.UUID]*model.TestTemplate{tmpl.ID: tmpl}}
	sessions := newFakeSessionStore()
	answers := newFakeAnswerStore()
	svc := NewSessionService(
		templates, sessions, answers,
		&fixedSelector{order: order},
		scoring.DefaultRegistry(),
		nil, zerolog.Nop(),
	)
	return svc, sessions, answers
}

func overviewTemplate() *model.TestTemplate {
	return &model.TestTemplate{
		ID:     uuid.New(),
		Name:   "Quick Overview",
		Goal:   model.GoalOverview,
		Active: true,
	}
}

func TestStartSession(t *testing.T) {
	tmpl := overviewTemplate()
	order := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	svc, _, _ := newTestService(tmpl, order)

	view, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Status != model.SessionStatusInProgress {
		t.Errorf("status = %q, want IN_PROGRESS", view.Status)
	}
	if view.TotalQuestions != 3 {
		t.Errorf("total questions = %d, want 3", view.TotalQuestions)
	}
	if view.ID == uuid.Nil {
		t.Error("session id not assigned")
	}
}

func TestStartSessionInactiveTemplate(t *testing.T) {
	tmpl := overviewTemplate()
	tmpl.Active = false
	svc, _, _ := newTestService(tmpl, nil)

	_, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for inactive template, got %v", err)
	}
}

func TestStartSessionDuplicateCarriesExistingID(t *testing.T) {
	tmpl := overviewTemplate()
	svc, _, _ := newTestService(tmpl, []uuid.UUID{uuid.New()})

	first, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("first start: %v", err)
	}

	_, err = svc.StartSession(context.Background(), tmpl.ID, "user-1")
	var dup *DuplicateSessionError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateSessionError, got %v", err)
	}
	if dup.ExistingSessionID != first.ID {
		t.Errorf("existing id = %s, want %s", dup.ExistingSessionID, first.ID)
	}
	if dup.TemplateID != tmpl.ID || dup.UserID != "user-1" {
		t.Error("duplicate error missing pair identity")
	}
}

// raceLoserStore simulates the window where the pre-check sees no session but
// a concurrent create wins the insert: GetInProgress fails until Create has
// been attempted once.
type raceLoserStore struct {
	*fakeSessionStore
	winner       *model.TestSession
	createCalled bool
}

func (r *raceLoserStore) GetInProgress(ctx context.Context, userID string, templateID uuid.UUID) (*model.TestSession, error) {
	if !r.createCalled {
		return nil, pgx.ErrNoRows
	}
	copied := *r.winner
	return &copied, nil
}

func (r *raceLoserStore) Create(ctx context.Context, s *model.TestSession) error {
	r.createCalled = true
	return pgx.ErrNoRows // the partial unique index let the winner through
}

func TestStartSessionRaceLoserSurfacesWinner(t *testing.T) {
	tmpl := overviewTemplate()
	winner := &model.TestSession{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		UserID:     "user-1",
		Status:     model.SessionStatusInProgress,
	}

	templates := &fakeTemplateStore{templates: map[uuid.UUID]*model.TestTemplate{tmpl.ID: tmpl}}
	store := &raceLoserStore{fakeSessionStore: newFakeSessionStore(), winner: winner}
	svc := NewSessionService(
		templates, store, newFakeAnswerStore(),
		&fixedSelector{order: []uuid.UUID{uuid.New()}},
		scoring.DefaultRegistry(),
		nil, zerolog.Nop(),
	)

	_, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	var dup *DuplicateSessionError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateSessionError, got %v", err)
	}
	if dup.ExistingSessionID != winner.ID {
		t.Errorf("existing id = %s, want winner %s", dup.ExistingSessionID, winner.ID)
	}
}

func TestRecordAnswerProgressAndOverwrite(t *testing.T) {
	tmpl := overviewTemplate()
	order := []uuid.UUID{uuid.New(), uuid.New()}
	svc, _, _ := newTestService(tmpl, order)

	view, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	progress, err := svc.RecordAnswer(context.Background(), "user-1", view.ID, order[0], "4")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if progress.Answered != 1 || progress.Total != 2 {
		t.Errorf("progress = %d/%d, want 1/2", progress.Answered, progress.Total)
	}

	// Resubmission overwrites; the count must not grow.
	progress, err = svc.RecordAnswer(context.Background(), "user-1", view.ID, order[0], "5")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if progress.Answered != 1 {
		t.Errorf("answered after overwrite = %d, want 1", progress.Answered)
	}
}

func TestRecordAnswerQuestionOutsideOrder(t *testing.T) {
	tmpl := overviewTemplate()
	svc, _, _ := newTestService(tmpl, []uuid.UUID{uuid.New()})

	view, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	stray := uuid.New()
	_, err = svc.RecordAnswer(context.Background(), "user-1", view.ID, stray, "3")
	var notIn *NotInSessionError
	if !errors.As(err, &notIn) {
		t.Fatalf("expected NotInSessionError, got %v", err)
	}
	if notIn.QuestionID != stray {
		t.Errorf("error carries question %s, want %s", notIn.QuestionID, stray)
	}
}

func TestRecordAnswerCompletedSession(t *testing.T) {
	tmpl := overviewTemplate()
	order := []uuid.UUID{uuid.New()}
	svc, _, _ := newTestService(tmpl, order)

	view, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.CompleteSession(context.Background(), "user-1", view.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err = svc.RecordAnswer(context.Background(), "user-1", view.ID, order[0], "3")
	var invalid *InvalidStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if invalid.Status != model.SessionStatusCompleted {
		t.Errorf("error carries status %q, want COMPLETED", invalid.Status)
	}
}

func TestCompleteSessionScores(t *testing.T) {
	tmpl := overviewTemplate()
	order := []uuid.UUID{uuid.New(), uuid.New()}
	svc, sessions, _ := newTestService(tmpl, order)

	view, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, qid := range order {
		if _, err := svc.RecordAnswer(context.Background(), "user-1", view.ID, qid, "5"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	completed, err := svc.CompleteSession(context.Background(), "user-1", view.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != model.SessionStatusCompleted {
		t.Errorf("status = %q, want COMPLETED", completed.Status)
	}
	if completed.Score == nil {
		t.Fatal("score missing")
	}
	if completed.Score.RawScore != 100 {
		t.Errorf("raw score = %v, want 100", completed.Score.RawScore)
	}
	if completed.Score.Outcome != "ADVANCED" {
		t.Errorf("outcome = %q, want ADVANCED", completed.Score.Outcome)
	}

	// The persisted record carries the encoded score.
	stored := sessions.sessions[view.ID]
	if stored.Status != model.SessionStatusCompleted || len(stored.Score) == 0 {
		t.Error("session store not updated with score")
	}
}

func TestCompleteZeroQuestionSession(t *testing.T) {
	tmpl := overviewTemplate()
	svc, _, _ := newTestService(tmpl, nil)

	view, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("a zero-question session must still start: %v", err)
	}
	if view.TotalQuestions != 0 {
		t.Errorf("total questions = %d, want 0", view.TotalQuestions)
	}

	completed, err := svc.CompleteSession(context.Background(), "user-1", view.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Score.Outcome != "INCOMPLETE" {
		t.Errorf("outcome = %q, want INCOMPLETE", completed.Score.Outcome)
	}
}

// staleReadStore models two completes whose reads both land before either
// update commits: GetByID keeps reporting IN_PROGRESS, so only the guarded
// update in Complete can arbitrate the transition.
type staleReadStore struct {
	*fakeSessionStore
	session   *model.TestSession
	completed int
}

func (s *staleReadStore) GetByID(_ context.Context, id uuid.UUID) (*model.TestSession, error) {
	copied := *s.session
	copied.Status = model.SessionStatusInProgress
	return &copied, nil
}

func (s *staleReadStore) Complete(_ context.Context, id uuid.UUID, score json.RawMessage) error {
	if s.session.Status != model.SessionStatusInProgress {
		return pgx.ErrNoRows
	}
	s.completed++
	now := time.Now()
	s.session.Status = model.SessionStatusCompleted
	s.session.Score = score
	s.session.FinishedAt = &now
	return nil
}

func TestCompleteSessionRaceLoserGetsInvalidState(t *testing.T) {
	tmpl := overviewTemplate()
	session := &model.TestSession{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		UserID:     "user-1",
		Status:     model.SessionStatusInProgress,
		StartedAt:  time.Now(),
	}

	templates := &fakeTemplateStore{templates: map[uuid.UUID]*model.TestTemplate{tmpl.ID: tmpl}}
	store := &staleReadStore{fakeSessionStore: newFakeSessionStore(), session: session}
	svc := NewSessionService(
		templates, store, newFakeAnswerStore(),
		&fixedSelector{},
		scoring.DefaultRegistry(),
		nil, zerolog.Nop(),
	)

	if _, err := svc.CompleteSession(context.Background(), "user-1", session.ID); err != nil {
		t.Fatalf("first complete: %v", err)
	}

	_, err := svc.CompleteSession(context.Background(), "user-1", session.ID)
	var invalid *InvalidStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidStateError for the racing complete, got %v", err)
	}
	if invalid.Status != model.SessionStatusCompleted {
		t.Errorf("error carries status %q, want COMPLETED", invalid.Status)
	}
	if store.completed != 1 {
		t.Errorf("complete persisted %d times, want exactly 1", store.completed)
	}
}

func TestReStartAfterCompletion(t *testing.T) {
	tmpl := overviewTemplate()
	svc, _, _ := newTestService(tmpl, []uuid.UUID{uuid.New()})

	first, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := svc.CompleteSession(context.Background(), "user-1", first.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Completion releases the duplicate guard for the pair.
	second, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("re-start after completion: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a fresh session id")
	}
}

func TestSessionsIndependentAcrossUsers(t *testing.T) {
	tmpl := overviewTemplate()
	svc, _, _ := newTestService(tmpl, []uuid.UUID{uuid.New()})

	if _, err := svc.StartSession(context.Background(), tmpl.ID, "user-1"); err != nil {
		t.Fatalf("user-1 start: %v", err)
	}
	if _, err := svc.StartSession(context.Background(), tmpl.ID, "user-2"); err != nil {
		t.Fatalf("user-2 must start independently: %v", err)
	}
}

func TestGetSessionHiddenFromOtherUsers(t *testing.T) {
	tmpl := overviewTemplate()
	svc, _, _ := newTestService(tmpl, []uuid.UUID{uuid.New()})

	view, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = svc.GetSession(context.Background(), "user-2", view.ID)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for foreign session, got %v", err)
	}
}

func TestGetSessionLiveAnsweredCount(t *testing.T) {
	tmpl := overviewTemplate()
	order := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	svc, _, answers := newTestService(tmpl, order)

	view, err := svc.StartSession(context.Background(), tmpl.ID, "user-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Write answers behind the service's back; the view must reflect the
	// store, not any cached counter.
	for _, qid := range order[:2] {
		answers.Upsert(context.Background(), &model.TestAnswer{SessionID: view.ID, QuestionID: qid, Response: "3"})
	}

	got, err := svc.GetSession(context.Background(), "user-1", view.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AnsweredQuestions != 2 {
		t.Errorf("answered = %d, want 2", got.AnsweredQuestions)
	}
}
