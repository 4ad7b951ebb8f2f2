package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles assessment question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListUniversalIDs retrieves up to limit active universal question ids in a
// stable order. Balancing by type or difficulty, when needed, belongs to this
// query, not to the selection engine.
func (r *QuestionRepository) ListUniversalIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM assessment_questions
		 WHERE universal AND active
		 ORDER BY id
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ListActiveIDsByIndicator retrieves up to limit active question ids for an
// indicator in a stable order.
func (r *QuestionRepository) ListActiveIDsByIndicator(ctx context.Context, indicatorID uuid.UUID, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM assessment_questions
		 WHERE indicator_id = $1 AND active
		 ORDER BY id
		 LIMIT $2`, indicatorID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

type idRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanIDs(rows idRows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
