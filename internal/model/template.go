package model

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentGoal is the scenario tag driving question selection and scoring.
type AssessmentGoal string

const (
	GoalOverview           AssessmentGoal = "OVERVIEW"
	GoalCompetencyDeepDive AssessmentGoal = "COMPETENCY_DEEP_DIVE"
	GoalFullSpectrum       AssessmentGoal = "FULL_SPECTRUM"
)

// TestTemplate is a configured blueprint defining how a session is assembled.
// Templates are authored externally and read-only to the assessment core.
type TestTemplate struct {
	ID                     uuid.UUID      `json:"id"`
	Name                   string         `json:"name"`
	Goal                   AssessmentGoal `json:"goal"`
	Active                 bool           `json:"active"`
	CompetencyIDs          []uuid.UUID    `json:"competency_ids"`
	QuestionsPerIndicator  int            `json:"questions_per_indicator"`
	UniversalQuestionCount int            `json:"universal_question_count"`
	Shuffle                bool           `json:"shuffle"`
	CreatedAt              time.Time      `json:"created_at"`
}
