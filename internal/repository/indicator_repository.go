package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IndicatorRepository handles behavioral indicator data access.
type IndicatorRepository struct {
	pool *pgxpool.Pool
}

// NewIndicatorRepository creates a new IndicatorRepository.
func NewIndicatorRepository(pool *pgxpool.Pool) *IndicatorRepository {
	return &IndicatorRepository{pool: pool}
}

// ListActiveIDsByCompetency retrieves active indicator ids for a competency
// in a stable order.
func (r *IndicatorRepository) ListActiveIDsByCompetency(ctx context.Context, competencyID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM behavioral_indicators
		 WHERE competency_id = $1 AND active
		 ORDER BY id`, competencyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}
