package scoring

import (
	"strconv"

	"github.com/talentlens/talentlens-backend/internal/model"
)

// scaleMax is the top of the 5-point response scale used by LIKERT and
// scale-graded SJT items.
const scaleMax = 5

// sumScaleResponses adds up the numeric responses in answers. Non-numeric
// responses (open-ended text, option keys) count toward completion but carry
// no scale value.
func sumScaleResponses(answers []model.TestAnswer) (sum float64, numeric int) {
	for _, a := range answers {
		v, err := strconv.Atoi(a.Response)
		if err != nil || v < 1 || v > scaleMax {
			continue
		}
		sum += float64(v)
		numeric++
	}
	return sum, numeric
}

// ────────────────────────────────────────────────────────────────────────────
// Overview strategy
// ────────────────────────────────────────────────────────────────────────────

// OverviewStrategy scores OVERVIEW sessions: the raw score is the mean scale
// response normalized to 100, weighted by completion rate, banded into a
// coarse outcome.
type OverviewStrategy struct{}

func NewOverviewStrategy() *OverviewStrategy { return &OverviewStrategy{} }

func (s *OverviewStrategy) Name() string { return "overview" }

func (s *OverviewStrategy) Goals() []model.AssessmentGoal {
	return []model.AssessmentGoal{model.GoalOverview}
}

func (s *OverviewStrategy) Score(session *model.TestSession, answers []model.TestAnswer) (*ScoreResult, error) {
	total := len(session.QuestionOrder)
	answered := len(answers)

	result := &ScoreResult{
		Strategy:       s.Name(),
		MaxScore:       100,
		TotalQuestions: total,
		Answered:       answered,
	}
	if total == 0 {
		result.Outcome = "INCOMPLETE"
		return result, nil
	}

	result.CompletionRate = float64(answered) / float64(total)

	sum, numeric := sumScaleResponses(answers)
	if numeric > 0 {
		mean := sum / float64(numeric)
		result.RawScore = (mean / scaleMax) * 100 * result.CompletionRate
	}

	result.Outcome = bandOutcome(result.RawScore, result.CompletionRate, 0.5)
	return result, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Deep-dive strategy
// ────────────────────────────────────────────────────────────────────────────

// DeepDiveStrategy scores per-competency sessions (COMPETENCY_DEEP_DIVE and
// FULL_SPECTRUM). Same scale normalization as overview, but a session must be
// at least 80% complete before any band above INCOMPLETE is awarded.
type DeepDiveStrategy struct{}

func NewDeepDiveStrategy() *DeepDiveStrategy { return &DeepDiveStrategy{} }

func (s *DeepDiveStrategy) Name() string { return "deep_dive" }

func (s *DeepDiveStrategy) Goals() []model.AssessmentGoal {
	return []model.AssessmentGoal{model.GoalCompetencyDeepDive, model.GoalFullSpectrum}
}

func (s *DeepDiveStrategy) Score(session *model.TestSession, answers []model.TestAnswer) (*ScoreResult, error) {
	total := len(session.QuestionOrder)
	answered := len(answers)

	result := &ScoreResult{
		Strategy:       s.Name(),
		MaxScore:       100,
		TotalQuestions: total,
		Answered:       answered,
	}
	if total == 0 {
		result.Outcome = "INCOMPLETE"
		return result, nil
	}

	result.CompletionRate = float64(answered) / float64(total)

	sum, numeric := sumScaleResponses(answers)
	if numeric > 0 {
		mean := sum / float64(numeric)
		result.RawScore = (mean / scaleMax) * 100
	}

	result.Outcome = bandOutcome(result.RawScore, result.CompletionRate, 0.8)
	return result, nil
}

// bandOutcome maps a 0-100 score to a categorical outcome. Sessions below
// minCompletion are INCOMPLETE regardless of score.
func bandOutcome(score, completion, minCompletion float64) string {
	if completion < minCompletion {
		return "INCOMPLETE"
	}
	switch {
	case score >= 85:
		return "ADVANCED"
	case score >= 65:
		return "PROFICIENT"
	case score >= 40:
		return "DEVELOPING"
	default:
		return "EMERGING"
	}
}
