package scoring

import (
	"fmt"

	"github.com/talentlens/talentlens-backend/internal/model"
)

// ScoreResult holds the raw metrics and categorical outcome produced when a
// session is completed.
type ScoreResult struct {
	Strategy       string  `json:"strategy"`
	RawScore       float64 `json:"raw_score"`
	MaxScore       float64 `json:"max_score"`
	TotalQuestions int     `json:"total_questions"`
	Answered       int     `json:"answered"`
	CompletionRate float64 `json:"completion_rate"`
	Outcome        string  `json:"outcome"`
}

// Strategy scores a completed session. Each strategy declares the template
// goals it supports; claims must not overlap across registered strategies.
type Strategy interface {
	Name() string
	Goals() []model.AssessmentGoal
	Score(session *model.TestSession, answers []model.TestAnswer) (*ScoreResult, error)
}

// UnsupportedConfigError reports a template goal no registered strategy
// claims. This is a server-side configuration fault, not user error.
type UnsupportedConfigError struct {
	Goal model.AssessmentGoal
}

func (e *UnsupportedConfigError) Error() string {
	return fmt.Sprintf("no scoring strategy registered for goal %q", e.Goal)
}

// Registry maps template goals to scoring strategies. Overlapping claims are
// rejected at registration so dispatch never needs a tie-break.
type Registry struct {
	byGoal map[model.AssessmentGoal]Strategy
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byGoal: make(map[model.AssessmentGoal]Strategy)}
}

// Register adds a strategy, failing if any of its goals is already claimed.
func (r *Registry) Register(s Strategy) error {
	for _, goal := range s.Goals() {
		if existing, ok := r.byGoal[goal]; ok {
			return fmt.Errorf("goal %q already claimed by strategy %q", goal, existing.Name())
		}
	}
	for _, goal := range s.Goals() {
		r.byGoal[goal] = s
	}
	return nil
}

// StrategyFor returns the strategy claiming the given goal.
func (r *Registry) StrategyFor(goal model.AssessmentGoal) (Strategy, error) {
	s, ok := r.byGoal[goal]
	if !ok {
		return nil, &UnsupportedConfigError{Goal: goal}
	}
	return s, nil
}

// DefaultRegistry builds the registry with the built-in strategies. It panics
// on overlap since that is a programming error caught at startup.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []Strategy{NewOverviewStrategy(), NewDeepDiveStrategy()} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}
