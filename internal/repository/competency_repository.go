package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// CompetencyRepository handles competency data access.
type CompetencyRepository struct {
	pool *pgxpool.Pool
}

// NewCompetencyRepository creates a new CompetencyRepository.
func NewCompetencyRepository(pool *pgxpool.Pool) *CompetencyRepository {
	return &CompetencyRepository{pool: pool}
}

// ListActive retrieves all active competencies ordered by name.
func (r *CompetencyRepository) ListActive(ctx context.Context) ([]model.Competency, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, category, weight, active, created_at, updated_at
		 FROM competencies
		 WHERE active
		 ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var competencies []model.Competency
	for rows.Next() {
		var c model.Competency
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Weight, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		competencies = append(competencies, c)
	}
	return competencies, rows.Err()
}
