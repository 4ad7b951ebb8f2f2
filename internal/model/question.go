package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionTypeLikert    QuestionType = "LIKERT"
	QuestionTypeMCQ       QuestionType = "MCQ"
	QuestionTypeSJT       QuestionType = "SJT"
	QuestionTypeOpenEnded QuestionType = "OPEN_ENDED"
	QuestionTypeRanking   QuestionType = "RANKING"
)

// AllQuestionTypes lists the full question-type domain.
var AllQuestionTypes = []QuestionType{
	QuestionTypeLikert,
	QuestionTypeMCQ,
	QuestionTypeSJT,
	QuestionTypeOpenEnded,
	QuestionTypeRanking,
}

// DifficultyLevel enumerates question difficulty.
type DifficultyLevel string

const (
	DifficultyBasic        DifficultyLevel = "BASIC"
	DifficultyIntermediate DifficultyLevel = "INTERMEDIATE"
	DifficultyAdvanced     DifficultyLevel = "ADVANCED"
	DifficultyExpert       DifficultyLevel = "EXPERT"
	DifficultySpecialized  DifficultyLevel = "SPECIALIZED"
)

// AllDifficultyLevels lists the full difficulty domain in report order.
var AllDifficultyLevels = []DifficultyLevel{
	DifficultyBasic,
	DifficultyIntermediate,
	DifficultyAdvanced,
	DifficultyExpert,
	DifficultySpecialized,
}

// HardDifficulties is the fixed subset of levels counted as "hard" by the
// stats report.
var HardDifficulties = []DifficultyLevel{
	DifficultyAdvanced,
	DifficultyExpert,
	DifficultySpecialized,
}

// AssessmentQuestion is a single test item. A question tied to an indicator
// belongs to that indicator's competency; a universal question carries no
// indicator reference and is eligible for overview-style sessions.
type AssessmentQuestion struct {
	ID               uuid.UUID       `json:"id"`
	IndicatorID      *uuid.UUID      `json:"indicator_id,omitempty"`
	Prompt           string          `json:"prompt"`
	Options          json.RawMessage `json:"options"`
	QuestionType     QuestionType    `json:"question_type"`
	Difficulty       DifficultyLevel `json:"difficulty"`
	TimeLimitSeconds int             `json:"time_limit_seconds"`
	Universal        bool            `json:"universal"`
	Active           bool            `json:"active"`
}
