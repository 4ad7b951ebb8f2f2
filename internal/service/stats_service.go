package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/talentlens/talentlens-backend/internal/config"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// StatsSource issues the scalar/group-by queries behind the stats report, one
// population per method group.
type StatsSource interface {
	CompetencyCounts(ctx context.Context) (total, active, withIndicators int, err error)
	AvgCompetencyWeight(ctx context.Context) (float64, error)
	CountCompetenciesByCategory(ctx context.Context) (map[model.CompetencyCategory]int, error)

	IndicatorCounts(ctx context.Context) (total, active, withActiveQuestions int, err error)
	CountIndicatorsWithMeasurementIn(ctx context.Context, types []model.MeasurementType) (int, error)
	AvgObservabilityComplexity(ctx context.Context) (float64, error)
	CountIndicatorsByScope(ctx context.Context) (map[model.ContextScope]int, error)

	QuestionCounts(ctx context.Context) (total, active, withActiveIndicator int, err error)
	CountQuestionsWithDifficultyIn(ctx context.Context, levels []model.DifficultyLevel) (int, error)
	AvgQuestionTimeLimit(ctx context.Context) (float64, error)
	CountQuestionsByType(ctx context.Context) (map[model.QuestionType]int, error)
	CountQuestionsByDifficulty(ctx context.Context) (map[model.DifficultyLevel]int, error)
}

// CompetencyReport summarizes the competency population.
type CompetencyReport struct {
	Total          int                              `json:"total"`
	Active         int                              `json:"active"`
	WithIndicators int                              `json:"with_indicators"`
	AvgWeight      float64                          `json:"avg_weight"`
	ByCategory     map[model.CompetencyCategory]int `json:"by_category"`
}

// IndicatorReport summarizes the indicator population.
type IndicatorReport struct {
	Total                 int                        `json:"total"`
	Active                int                        `json:"active"`
	WithActiveQuestions   int                        `json:"with_active_questions"`
	Measurable            int                        `json:"measurable"`
	AvgObservabilityScore float64                    `json:"avg_observability_complexity"`
	ByContextScope        map[model.ContextScope]int `json:"by_context_scope"`
}

// QuestionReport summarizes the question population.
type QuestionReport struct {
	Total               int                           `json:"total"`
	Active              int                           `json:"active"`
	WithActiveIndicator int                           `json:"with_active_indicator"`
	Hard                int                           `json:"hard"`
	AvgTimeLimitSeconds float64                       `json:"avg_time_limit_seconds"`
	ByType              map[model.QuestionType]int    `json:"by_type"`
	ByDifficulty        map[model.DifficultyLevel]int `json:"by_difficulty"`
}

// EntityStats is the full aggregate report over the three entity populations.
type EntityStats struct {
	Competencies CompetencyReport `json:"competencies"`
	Indicators   IndicatorReport  `json:"indicators"`
	Questions    QuestionReport   `json:"questions"`
}

// StatsService assembles the aggregate entity statistics report. The report
// is dashboard-grade: sub-reports are fetched concurrently with no
// cross-query consistency guarantee, and the assembled result is cached in
// Redis with a short TTL.
type StatsService struct {
	source StatsSource
	rdb    *redis.Client
	cfg    *config.Config
	log    zerolog.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(source StatsSource, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *StatsService {
	return &StatsService{
		source: source,
		rdb:    rdb,
		cfg:    cfg,
		log:    log.With().Str("component", "stats_service").Logger(),
	}
}

// GetEntityStats returns the aggregate report, serving from the Redis cache
// when fresh. A query failure in any sub-report fails the whole call; no
// partial report is produced.
func (s *StatsService) GetEntityStats(ctx context.Context) (*EntityStats, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, config.CacheKey.EntityStatsKey()).Result()
		if err == nil {
			var stats EntityStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("Stats cache read failed")
		}
	}

	stats, err := s.computeEntityStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		raw, _ := json.Marshal(stats)
		if err := s.rdb.Set(ctx, config.CacheKey.EntityStatsKey(), raw, s.cfg.StatsCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Stats cache write failed")
		}
	}
	return stats, nil
}

// Prewarm computes and caches the report once, typically at boot.
func (s *StatsService) Prewarm(ctx context.Context) error {
	stats, err := s.computeEntityStats(ctx)
	if err != nil {
		return err
	}
	if s.rdb != nil {
		raw, _ := json.Marshal(stats)
		return s.rdb.Set(ctx, config.CacheKey.EntityStatsKey(), raw, s.cfg.StatsCacheTTL).Err()
	}
	return nil
}

// computeEntityStats fires the three population sub-reports concurrently and
// surfaces the first failure.
func (s *StatsService) computeEntityStats(ctx context.Context) (*EntityStats, error) {
	var (
		stats                                    EntityStats
		competencyErr, indicatorErr, questionErr error
		wg                                       sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		stats.Competencies, competencyErr = s.competencyReport(ctx)
	}()
	go func() {
		defer wg.Done()
		stats.Indicators, indicatorErr = s.indicatorReport(ctx)
	}()
	go func() {
		defer wg.Done()
		stats.Questions, questionErr = s.questionReport(ctx)
	}()
	wg.Wait()

	for _, err := range []error{competencyErr, indicatorErr, questionErr} {
		if err != nil {
			return nil, err
		}
	}
	return &stats, nil
}

func (s *StatsService) competencyReport(ctx context.Context) (CompetencyReport, error) {
	var report CompetencyReport
	var err error

	report.Total, report.Active, report.WithIndicators, err = s.source.CompetencyCounts(ctx)
	if err != nil {
		return report, err
	}

	avg, err := s.source.AvgCompetencyWeight(ctx)
	if err != nil {
		return report, err
	}
	report.AvgWeight = roundHalfUp1(avg)

	sparse, err := s.source.CountCompetenciesByCategory(ctx)
	if err != nil {
		return report, err
	}
	report.ByCategory = fillDomain(model.AllCompetencyCategories, sparse)
	return report, nil
}

func (s *StatsService) indicatorReport(ctx context.Context) (IndicatorReport, error) {
	var report IndicatorReport
	var err error

	report.Total, report.Active, report.WithActiveQuestions, err = s.source.IndicatorCounts(ctx)
	if err != nil {
		return report, err
	}

	report.Measurable, err = s.source.CountIndicatorsWithMeasurementIn(ctx, model.MeasurableTypes)
	if err != nil {
		return report, err
	}

	avg, err := s.source.AvgObservabilityComplexity(ctx)
	if err != nil {
		return report, err
	}
	report.AvgObservabilityScore = roundHalfUp1(avg)

	sparse, err := s.source.CountIndicatorsByScope(ctx)
	if err != nil {
		return report, err
	}
	report.ByContextScope = fillDomain(model.AllContextScopes, sparse)
	return report, nil
}

func (s *StatsService) questionReport(ctx context.Context) (QuestionReport, error) {
	var report QuestionReport
	var err error

	report.Total, report.Active, report.WithActiveIndicator, err = s.source.QuestionCounts(ctx)
	if err != nil {
		return report, err
	}

	report.Hard, err = s.source.CountQuestionsWithDifficultyIn(ctx, model.HardDifficulties)
	if err != nil {
		return report, err
	}

	avg, err := s.source.AvgQuestionTimeLimit(ctx)
	if err != nil {
		return report, err
	}
	report.AvgTimeLimitSeconds = roundHalfUp1(avg)

	// Question-type breakdown deliberately keeps only counts > 0, unlike the
	// fixed-domain breakdowns.
	byType, err := s.source.CountQuestionsByType(ctx)
	if err != nil {
		return report, err
	}
	report.ByType = make(map[model.QuestionType]int, len(byType))
	for qt, count := range byType {
		if count > 0 {
			report.ByType[qt] = count
		}
	}

	sparse, err := s.source.CountQuestionsByDifficulty(ctx)
	if err != nil {
		return report, err
	}
	report.ByDifficulty = fillDomain(model.AllDifficultyLevels, sparse)
	return report, nil
}

// fillDomain merges sparse group-by rows over the full enumerated domain so
// absent values report zero.
func fillDomain[K comparable](domain []K, sparse map[K]int) map[K]int {
	full := make(map[K]int, len(domain))
	for _, key := range domain {
		full[key] = sparse[key]
	}
	return full
}

// roundHalfUp1 rounds to one decimal place, half away from zero on the
// rounding digit: 3.1499 -> 3.1, 3.456 -> 3.5.
func roundHalfUp1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
