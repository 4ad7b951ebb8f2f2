package model

import (
	"time"

	"github.com/google/uuid"
)

// CompetencyCategory enumerates the fixed set of competency categories.
type CompetencyCategory string

const (
	CategoryCognitive     CompetencyCategory = "COGNITIVE"
	CategoryInterpersonal CompetencyCategory = "INTERPERSONAL"
	CategoryLeadership    CompetencyCategory = "LEADERSHIP"
	CategoryTechnical     CompetencyCategory = "TECHNICAL"
)

// AllCompetencyCategories lists the full category domain in report order.
var AllCompetencyCategories = []CompetencyCategory{
	CategoryCognitive,
	CategoryInterpersonal,
	CategoryLeadership,
	CategoryTechnical,
}

// Competency represents a measurable skill or trait category composed of
// behavioral indicators. Competencies are authored by administrative flows
// and are read-only to the assessment core.
type Competency struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Category  CompetencyCategory `json:"category"`
	Weight    float64            `json:"weight"`
	Active    bool               `json:"active"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
