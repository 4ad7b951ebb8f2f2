package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// AnswerRepository handles test answer data access.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Upsert records an answer. A resubmission for the same (session, question)
// pair overwrites the previous response; the unique constraint guarantees the
// progress count never double-counts a question.
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.TestAnswer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO test_answers (session_id, question_id, response)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, question_id)
		 DO UPDATE SET response = EXCLUDED.response, answered_at = NOW()
		 RETURNING id, answered_at`,
		a.SessionID, a.QuestionID, a.Response,
	).Scan(&a.ID, &a.AnsweredAt)
}

// CountBySession returns the number of answered questions in a session.
func (r *AnswerRepository) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_answers WHERE session_id = $1`, sessionID,
	).Scan(&count)
	return count, err
}

// ListBySession retrieves all answers for a session ordered by answer time.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.TestAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, response, answered_at
		 FROM test_answers
		 WHERE session_id = $1
		 ORDER BY answered_at`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.TestAnswer
	for rows.Next() {
		var a model.TestAnswer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.Response, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
