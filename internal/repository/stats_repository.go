package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// StatsRepository issues the scalar count, list-filter count, group-by, and
// average queries behind the entity stats report. Every query is read-only
// and independent; no cross-query consistency is required.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// ─── Competencies ───────────────────────────────────────────────────

// CompetencyCounts returns the total, active, and with-indicators counts for
// the competency population.
func (r *StatsRepository) CompetencyCounts(ctx context.Context) (total, active, withIndicators int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM competencies),
			(SELECT COUNT(*) FROM competencies WHERE active),
			(SELECT COUNT(DISTINCT c.id) FROM competencies c
			   JOIN behavioral_indicators i ON i.competency_id = c.id)`,
	).Scan(&total, &active, &withIndicators)
	return
}

// AvgCompetencyWeight returns the unrounded average competency weight, 0 for
// an empty population.
func (r *StatsRepository) AvgCompetencyWeight(ctx context.Context) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(weight), 0) FROM competencies`,
	).Scan(&avg)
	return avg, err
}

// CountCompetenciesByCategory returns competency counts grouped by category.
// Absent categories emit no row; the service layer zero-fills the domain.
func (r *StatsRepository) CountCompetenciesByCategory(ctx context.Context) (map[model.CompetencyCategory]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM competencies GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.CompetencyCategory]int)
	for rows.Next() {
		var category model.CompetencyCategory
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

// ─── Indicators ─────────────────────────────────────────────────────

// IndicatorCounts returns the total, active, and with-active-questions counts
// for the indicator population.
func (r *StatsRepository) IndicatorCounts(ctx context.Context) (total, active, withActiveQuestions int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM behavioral_indicators),
			(SELECT COUNT(*) FROM behavioral_indicators WHERE active),
			(SELECT COUNT(DISTINCT i.id) FROM behavioral_indicators i
			   JOIN assessment_questions q ON q.indicator_id = i.id AND q.active)`,
	).Scan(&total, &active, &withActiveQuestions)
	return
}

// CountIndicatorsWithMeasurementIn counts indicators whose measurement type
// is in the given subset. The subset is a query parameter, not baked into the
// SQL, so the caller controls the filter list.
func (r *StatsRepository) CountIndicatorsWithMeasurementIn(ctx context.Context, types []model.MeasurementType) (int, error) {
	values := make([]string, len(types))
	for i, t := range types {
		values[i] = string(t)
	}
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM behavioral_indicators WHERE measurement_type = ANY($1)`,
		values,
	).Scan(&count)
	return count, err
}

// AvgObservabilityComplexity returns the unrounded average indicator
// observability complexity.
func (r *StatsRepository) AvgObservabilityComplexity(ctx context.Context) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(observability_complexity), 0) FROM behavioral_indicators`,
	).Scan(&avg)
	return avg, err
}

// CountIndicatorsByScope returns indicator counts grouped by context scope.
func (r *StatsRepository) CountIndicatorsByScope(ctx context.Context) (map[model.ContextScope]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT context_scope, COUNT(*) FROM behavioral_indicators GROUP BY context_scope`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.ContextScope]int)
	for rows.Next() {
		var scope model.ContextScope
		var count int
		if err := rows.Scan(&scope, &count); err != nil {
			return nil, err
		}
		counts[scope] = count
	}
	return counts, rows.Err()
}

// ─── Questions ──────────────────────────────────────────────────────

// QuestionCounts returns the total, active, and with-active-indicator counts
// for the question population.
func (r *StatsRepository) QuestionCounts(ctx context.Context) (total, active, withActiveIndicator int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM assessment_questions),
			(SELECT COUNT(*) FROM assessment_questions WHERE active),
			(SELECT COUNT(*) FROM assessment_questions q
			   JOIN behavioral_indicators i ON q.indicator_id = i.id
			 WHERE i.active)`,
	).Scan(&total, &active, &withActiveIndicator)
	return
}

// CountQuestionsWithDifficultyIn counts questions whose difficulty is in the
// given subset, passed through as a query parameter.
func (r *StatsRepository) CountQuestionsWithDifficultyIn(ctx context.Context, levels []model.DifficultyLevel) (int, error) {
	values := make([]string, len(levels))
	for i, l := range levels {
		values[i] = string(l)
	}
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assessment_questions WHERE difficulty = ANY($1)`,
		values,
	).Scan(&count)
	return count, err
}

// AvgQuestionTimeLimit returns the unrounded average question time limit in
// seconds.
func (r *StatsRepository) AvgQuestionTimeLimit(ctx context.Context) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(time_limit_seconds), 0) FROM assessment_questions`,
	).Scan(&avg)
	return avg, err
}

// CountQuestionsByType returns question counts grouped by type. Only types
// with at least one question emit a row.
func (r *StatsRepository) CountQuestionsByType(ctx context.Context) (map[model.QuestionType]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_type, COUNT(*) FROM assessment_questions GROUP BY question_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.QuestionType]int)
	for rows.Next() {
		var qt model.QuestionType
		var count int
		if err := rows.Scan(&qt, &count); err != nil {
			return nil, err
		}
		counts[qt] = count
	}
	return counts, rows.Err()
}

// CountQuestionsByDifficulty returns question counts grouped by difficulty.
func (r *StatsRepository) CountQuestionsByDifficulty(ctx context.Context) (map[model.DifficultyLevel]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT difficulty, COUNT(*) FROM assessment_questions GROUP BY difficulty`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.DifficultyLevel]int)
	for rows.Next() {
		var d model.DifficultyLevel
		var count int
		if err := rows.Scan(&d, &count); err != nil {
			return nil, err
		}
		counts[d] = count
	}
	return counts, rows.Err()
}
