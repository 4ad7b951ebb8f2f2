package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// TemplateRepository handles test template data access.
type TemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

const templateColumns = `id, name, goal, active, competency_ids, questions_per_indicator, universal_question_count, shuffle, created_at`

func scanTemplate(row interface{ Scan(dest ...any) error }) (*model.TestTemplate, error) {
	t := &model.TestTemplate{}
	var competencyIDs []byte
	err := row.Scan(&t.ID, &t.Name, &t.Goal, &t.Active, &competencyIDs,
		&t.QuestionsPerIndicator, &t.UniversalQuestionCount, &t.Shuffle, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(competencyIDs) > 0 {
		if err := json.Unmarshal(competencyIDs, &t.CompetencyIDs); err != nil {
			return nil, fmt.Errorf("decode competency_ids: %w", err)
		}
	}
	return t, nil
}

// GetByID retrieves a template by its id.
func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestTemplate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM test_templates WHERE id = $1`, id)
	return scanTemplate(row)
}

// ListActive retrieves all active templates ordered by name.
func (r *TemplateRepository) ListActive(ctx context.Context) ([]model.TestTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM test_templates WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []model.TestTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}
