package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/talentlens/talentlens-backend/internal/config"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// fakeStatsSource returns canned values and records the filter lists it was
// handed, so tests can assert the subsets are passed as parameters.
type fakeStatsSource struct {
	avgWeight        float64
	avgComplexity    float64
	avgTimeLimit     float64
	byCategory       map[model.CompetencyCategory]int
	byScope          map[model.ContextScope]int
	byType           map[model.QuestionType]int
	byDifficulty     map[model.DifficultyLevel]int
	measurementsSeen []model.MeasurementType
	difficultiesSeen []model.DifficultyLevel
}

func (f *fakeStatsSource) CompetencyCounts(context.Context) (int, int, int, error) {
	return 10, 8, 6, nil
}

func (f *fakeStatsSource) AvgCompetencyWeight(context.Context) (float64, error) {
	return f.avgWeight, nil
}

func (f *fakeStatsSource) CountCompetenciesByCategory(context.Context) (map[model.CompetencyCategory]int, error) {
	return f.byCategory, nil
}

func (f *fakeStatsSource) IndicatorCounts(context.Context) (int, int, int, error) {
	return 20, 15, 12, nil
}

func (f *fakeStatsSource) CountIndicatorsWithMeasurementIn(_ context.Context, types []model.MeasurementType) (int, error) {
	f.measurementsSeen = types
	return 14, nil
}

func (f *fakeStatsSource) AvgObservabilityComplexity(context.Context) (float64, error) {
	return f.avgComplexity, nil
}

func (f *fakeStatsSource) CountIndicatorsByScope(context.Context) (map[model.ContextScope]int, error) {
	return f.byScope, nil
}

func (f *fakeStatsSource) QuestionCounts(context.Context) (int, int, int, error) {
	return 100, 90, 80, nil
}

func (f *fakeStatsSource) CountQuestionsWithDifficultyIn(_ context.Context, levels []model.DifficultyLevel) (int, error) {
	f.difficultiesSeen = levels
	return 30, nil
}

func (f *fakeStatsSource) AvgQuestionTimeLimit(context.Context) (float64, error) {
	return f.avgTimeLimit, nil
}

func (f *fakeStatsSource) CountQuestionsByType(context.Context) (map[model.QuestionType]int, error) {
	return f.byType, nil
}

func (f *fakeStatsSource) CountQuestionsByDifficulty(context.Context) (map[model.DifficultyLevel]int, error) {
	return f.byDifficulty, nil
}

func newStatsService(source StatsSource) *StatsService {
	return NewStatsService(source, nil, &config.Config{}, zerolog.Nop())
}

func TestRoundHalfUp1(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{3.1499, 3.1},
		{3.456, 3.5},
		{2.25, 2.3},
		{0, 0},
		{99.95, 100},
	}
	for _, tc := range cases {
		if got := roundHalfUp1(tc.in); got != tc.want {
			t.Errorf("roundHalfUp1(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestEntityStatsAveragesRounded(t *testing.T) {
	source := &fakeStatsSource{
		avgWeight:     3.1499,
		avgComplexity: 3.456,
		avgTimeLimit:  59.96,
	}
	svc := newStatsService(source)

	stats, err := svc.GetEntityStats(context.Background())
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Competencies.AvgWeight != 3.1 {
		t.Errorf("avg weight = %v, want 3.1", stats.Competencies.AvgWeight)
	}
	if stats.Indicators.AvgObservabilityScore != 3.5 {
		t.Errorf("avg complexity = %v, want 3.5", stats.Indicators.AvgObservabilityScore)
	}
	if stats.Questions.AvgTimeLimitSeconds != 60 {
		t.Errorf("avg time limit = %v, want 60", stats.Questions.AvgTimeLimitSeconds)
	}
}

func TestEntityStatsZeroFillsFixedDomains(t *testing.T) {
	source := &fakeStatsSource{
		byCategory:   map[model.CompetencyCategory]int{model.CategoryCognitive: 4},
		byScope:      map[model.ContextScope]int{model.ScopeTeam: 7},
		byDifficulty: map[model.DifficultyLevel]int{model.DifficultyExpert: 2},
	}
	svc := newStatsService(source)

	stats, err := svc.GetEntityStats(context.Background())
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}

	if len(stats.Competencies.ByCategory) != len(model.AllCompetencyCategories) {
		t.Errorf("category breakdown has %d keys, want %d",
			len(stats.Competencies.ByCategory), len(model.AllCompetencyCategories))
	}
	if stats.Competencies.ByCategory[model.CategoryLeadership] != 0 {
		t.Error("absent category must report zero")
	}
	if stats.Competencies.ByCategory[model.CategoryCognitive] != 4 {
		t.Error("present category count lost in zero-fill")
	}

	if len(stats.Indicators.ByContextScope) != len(model.AllContextScopes) {
		t.Errorf("scope breakdown has %d keys, want %d",
			len(stats.Indicators.ByContextScope), len(model.AllContextScopes))
	}
	if len(stats.Questions.ByDifficulty) != len(model.AllDifficultyLevels) {
		t.Errorf("difficulty breakdown has %d keys, want %d",
			len(stats.Questions.ByDifficulty), len(model.AllDifficultyLevels))
	}
}

func TestEntityStatsTypeBreakdownStaysSparse(t *testing.T) {
	source := &fakeStatsSource{
		byType: map[model.QuestionType]int{
			model.QuestionTypeLikert: 50,
			model.QuestionTypeMCQ:    0,
		},
	}
	svc := newStatsService(source)

	stats, err := svc.GetEntityStats(context.Background())
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}

	if len(stats.Questions.ByType) != 1 {
		t.Errorf("type breakdown has %d keys, want 1 (only counts > 0)", len(stats.Questions.ByType))
	}
	if _, present := stats.Questions.ByType[model.QuestionTypeMCQ]; present {
		t.Error("zero-count type must be omitted")
	}
}

func TestEntityStatsFilterSubsetsPassedAsParameters(t *testing.T) {
	source := &fakeStatsSource{}
	svc := newStatsService(source)

	if _, err := svc.GetEntityStats(context.Background()); err != nil {
		t.Fatalf("get stats: %v", err)
	}

	wantMeasurements := []model.MeasurementType{
		model.MeasurementFrequency, model.MeasurementQuality, model.MeasurementImpact,
	}
	if len(source.measurementsSeen) != len(wantMeasurements) {
		t.Fatalf("measurable filter has %d entries, want %d", len(source.measurementsSeen), len(wantMeasurements))
	}
	for i, m := range wantMeasurements {
		if source.measurementsSeen[i] != m {
			t.Errorf("measurable filter[%d] = %q, want %q", i, source.measurementsSeen[i], m)
		}
	}

	wantDifficulties := []model.DifficultyLevel{
		model.DifficultyAdvanced, model.DifficultyExpert, model.DifficultySpecialized,
	}
	if len(source.difficultiesSeen) != len(wantDifficulties) {
		t.Fatalf("hard filter has %d entries, want %d", len(source.difficultiesSeen), len(wantDifficulties))
	}
	for i, d := range wantDifficulties {
		if source.difficultiesSeen[i] != d {
			t.Errorf("hard filter[%d] = %q, want %q", i, source.difficultiesSeen[i], d)
		}
	}
}

func TestEntityStatsEmptyPopulations(t *testing.T) {
	// All-zero source: averages stay 0, fixed domains still fully keyed.
	empty := &emptyStatsSource{}
	svc := newStatsService(empty)

	stats, err := svc.GetEntityStats(context.Background())
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Competencies.AvgWeight != 0 {
		t.Errorf("avg weight = %v, want 0", stats.Competencies.AvgWeight)
	}
	if len(stats.Competencies.ByCategory) != len(model.AllCompetencyCategories) {
		t.Error("empty population must still report the full category domain")
	}
	if len(stats.Questions.ByType) != 0 {
		t.Error("empty population must report an empty type breakdown")
	}
}

type emptyStatsSource struct{}

func (emptyStatsSource) CompetencyCounts(context.Context) (int, int, int, error) { return 0, 0, 0, nil }
func (emptyStatsSource) AvgCompetencyWeight(context.Context) (float64, error)    { return 0, nil }
func (emptyStatsSource) CountCompetenciesByCategory(context.Context) (map[model.CompetencyCategory]int, error) {
	return nil, nil
}
func (emptyStatsSource) IndicatorCounts(context.Context) (int, int, int, error) { return 0, 0, 0, nil }
func (emptyStatsSource) CountIndicatorsWithMeasurementIn(context.Context, []model.MeasurementType) (int, error) {
	return 0, nil
}
func (emptyStatsSource) AvgObservabilityComplexity(context.Context) (float64, error) { return 0, nil }
func (emptyStatsSource) CountIndicatorsByScope(context.Context) (map[model.ContextScope]int, error) {
	return nil, nil
}
func (emptyStatsSource) QuestionCounts(context.Context) (int, int, int, error) { return 0, 0, 0, nil }
func (emptyStatsSource) CountQuestionsWithDifficultyIn(context.Context, []model.DifficultyLevel) (int, error) {
	return 0, nil
}
func (emptyStatsSource) AvgQuestionTimeLimit(context.Context) (float64, error) { return 0, nil }
func (emptyStatsSource) CountQuestionsByType(context.Context) (map[model.QuestionType]int, error) {
	return nil, nil
}
func (emptyStatsSource) CountQuestionsByDifficulty(context.Context) (map[model.DifficultyLevel]int, error) {
	return nil, nil
}
