package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// SessionRepository handles test session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func scanSession(row interface{ Scan(dest ...any) error }) (*model.TestSession, error) {
	s := &model.TestSession{}
	var order []byte
	err := row.Scan(&s.ID, &s.TemplateID, &s.UserID, &s.Status, &order, &s.Score, &s.StartedAt, &s.FinishedAt)
	if err != nil {
		return nil, err
	}
	if len(order) > 0 {
		if err := json.Unmarshal(order, &s.QuestionOrder); err != nil {
			return nil, fmt.Errorf("decode question_order: %w", err)
		}
	}
	return s, nil
}

// GetByID retrieves a session by its id.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, template_id, user_id, status, question_order, score, started_at, finished_at
		 FROM test_sessions WHERE id = $1`, id)
	return scanSession(row)
}

// GetInProgress retrieves the in-progress session for a (user, template)
// pair, or pgx.ErrNoRows if none exists.
func (r *SessionRepository) GetInProgress(ctx context.Context, userID string, templateID uuid.UUID) (*model.TestSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, template_id, user_id, status, question_order, score, started_at, finished_at
		 FROM test_sessions
		 WHERE user_id = $1 AND template_id = $2 AND status = $3`,
		userID, templateID, model.SessionStatusInProgress)
	return scanSession(row)
}

// Create inserts a new in-progress session. The partial unique index on
// (user_id, template_id) WHERE status = 'IN_PROGRESS' makes this the
// authoritative duplicate guard: the loser of a concurrent create gets no row
// back (pgx.ErrNoRows) instead of a constraint fault.
func (r *SessionRepository) Create(ctx context.Context, s *model.TestSession) error {
	order, err := json.Marshal(s.QuestionOrder)
	if err != nil {
		return fmt.Errorf("encode question_order: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO test_sessions (template_id, user_id, status, question_order)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, template_id) WHERE status = 'IN_PROGRESS' DO NOTHING
		 RETURNING id, started_at`,
		s.TemplateID, s.UserID, model.SessionStatusInProgress, order,
	).Scan(&s.ID, &s.StartedAt)
}

// Complete transitions a session from IN_PROGRESS to COMPLETED with its
// score result. The status predicate makes the store the authority on the
// transition, like the create guard: a racing or repeated complete matches
// zero rows and gets pgx.ErrNoRows instead of overwriting the score.
func (r *SessionRepository) Complete(ctx context.Context, id uuid.UUID, score json.RawMessage) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET status = $1, score = $2, finished_at = $3
		 WHERE id = $4 AND status = $5`,
		model.SessionStatusCompleted, score, time.Now(), id, model.SessionStatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
