package scoring

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/talentlens/talentlens-backend/internal/model"
)

type stubStrategy struct {
	name  string
	goals []model.AssessmentGoal
}

func (s *stubStrategy) Name() string                  { return s.name }
func (s *stubStrategy) Goals() []model.AssessmentGoal { return s.goals }
func (s *stubStrategy) Score(*model.TestSession, []model.TestAnswer) (*ScoreResult, error) {
	return &ScoreResult{Strategy: s.name}, nil
}

func TestRegistryRejectsOverlappingGoals(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubStrategy{name: "first", goals: []model.AssessmentGoal{model.GoalOverview}}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	err := r.Register(&stubStrategy{
		name:  "second",
		goals: []model.AssessmentGoal{model.GoalFullSpectrum, model.GoalOverview},
	})
	if err == nil {
		t.Fatal("expected overlap rejection, got nil")
	}

	// The rejected strategy must not claim any goal, including the
	// non-overlapping one it arrived with.
	if _, err := r.StrategyFor(model.GoalFullSpectrum); err == nil {
		t.Fatal("partially registered strategy leaked into the registry")
	}
}

func TestRegistryUnsupportedGoal(t *testing.T) {
	r := NewRegistry()
	_, err := r.StrategyFor(model.GoalCompetencyDeepDive)
	if err == nil {
		t.Fatal("expected error for unclaimed goal")
	}

	var unsupported *UnsupportedConfigError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedConfigError, got %T", err)
	}
	if unsupported.Goal != model.GoalCompetencyDeepDive {
		t.Fatalf("error carries goal %q, want %q", unsupported.Goal, model.GoalCompetencyDeepDive)
	}
}

func TestDefaultRegistryCoversAllGoals(t *testing.T) {
	r := DefaultRegistry()
	for _, goal := range []model.AssessmentGoal{
		model.GoalOverview,
		model.GoalCompetencyDeepDive,
		model.GoalFullSpectrum,
	} {
		if _, err := r.StrategyFor(goal); err != nil {
			t.Errorf("goal %q unclaimed: %v", goal, err)
		}
	}
}

func sessionWithQuestions(n int) *model.TestSession {
	s := &model.TestSession{}
	for i := 0; i < n; i++ {
		s.QuestionOrder = append(s.QuestionOrder, uuid.New())
	}
	return s
}

func answers(responses ...string) []model.TestAnswer {
	out := make([]model.TestAnswer, len(responses))
	for i, r := range responses {
		out[i] = model.TestAnswer{Response: r}
	}
	return out
}

func TestOverviewScoreWeightsByCompletion(t *testing.T) {
	s := NewOverviewStrategy()
	session := sessionWithQuestions(4)

	// Two of four answered, both max scale: mean 5 -> 100, halved by
	// completion rate 0.5.
	result, err := s.Score(session, answers("5", "5"))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.RawScore != 50 {
		t.Errorf("raw score = %v, want 50", result.RawScore)
	}
	if result.CompletionRate != 0.5 {
		t.Errorf("completion rate = %v, want 0.5", result.CompletionRate)
	}
	if result.Outcome != "DEVELOPING" {
		t.Errorf("outcome = %q, want DEVELOPING", result.Outcome)
	}
}

func TestOverviewIgnoresNonNumericResponses(t *testing.T) {
	s := NewOverviewStrategy()
	session := sessionWithQuestions(2)

	// The open-ended answer counts toward completion but not the mean.
	result, err := s.Score(session, answers("4", "free text"))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Answered != 2 {
		t.Errorf("answered = %d, want 2", result.Answered)
	}
	// mean 4 -> 80, full completion.
	if result.RawScore != 80 {
		t.Errorf("raw score = %v, want 80", result.RawScore)
	}
}

func TestOverviewZeroQuestionSession(t *testing.T) {
	s := NewOverviewStrategy()
	result, err := s.Score(&model.TestSession{}, nil)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Outcome != "INCOMPLETE" {
		t.Errorf("outcome = %q, want INCOMPLETE", result.Outcome)
	}
	if result.RawScore != 0 {
		t.Errorf("raw score = %v, want 0", result.RawScore)
	}
}

func TestDeepDiveRequiresHighCompletion(t *testing.T) {
	s := NewDeepDiveStrategy()
	session := sessionWithQuestions(10)

	// 7 of 10 answered is below the 0.8 floor: INCOMPLETE regardless of
	// the strong responses.
	result, err := s.Score(session, answers("5", "5", "5", "5", "5", "5", "5"))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Outcome != "INCOMPLETE" {
		t.Errorf("outcome = %q, want INCOMPLETE", result.Outcome)
	}
	// The raw score is still reported un-weighted.
	if result.RawScore != 100 {
		t.Errorf("raw score = %v, want 100", result.RawScore)
	}
}

func TestDeepDiveBands(t *testing.T) {
	s := NewDeepDiveStrategy()
	cases := []struct {
		responses []string
		want      string
	}{
		{[]string{"5", "5", "5", "5"}, "ADVANCED"},     // 100
		{[]string{"4", "4", "3", "4"}, "PROFICIENT"},   // 75
		{[]string{"2", "3", "2", "3"}, "DEVELOPING"},   // 50
		{[]string{"1", "1", "1", "2"}, "EMERGING"},     // 25
	}

	for _, tc := range cases {
		session := sessionWithQuestions(len(tc.responses))
		result, err := s.Score(session, answers(tc.responses...))
		if err != nil {
			t.Fatalf("score: %v", err)
		}
		if result.Outcome != tc.want {
			t.Errorf("responses %v: outcome = %q, want %q", tc.responses, result.Outcome, tc.want)
		}
	}
}
