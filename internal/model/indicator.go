package model

import (
	"github.com/google/uuid"
)

// ContextScope enumerates where an indicator is observable.
type ContextScope string

const (
	ScopeIndividual     ContextScope = "INDIVIDUAL"
	ScopeTeam           ContextScope = "TEAM"
	ScopeOrganizational ContextScope = "ORGANIZATIONAL"
	ScopeStrategic      ContextScope = "STRATEGIC"
)

// AllContextScopes lists the full context-scope domain in report order.
var AllContextScopes = []ContextScope{
	ScopeIndividual,
	ScopeTeam,
	ScopeOrganizational,
	ScopeStrategic,
}

// MeasurementType enumerates how an indicator is measured.
type MeasurementType string

const (
	MeasurementFrequency MeasurementType = "FREQUENCY"
	MeasurementQuality   MeasurementType = "QUALITY"
	MeasurementImpact    MeasurementType = "IMPACT"
	MeasurementPresence  MeasurementType = "PRESENCE"
)

// MeasurableTypes is the fixed subset of measurement types counted as
// "measurable" by the stats report.
var MeasurableTypes = []MeasurementType{
	MeasurementFrequency,
	MeasurementQuality,
	MeasurementImpact,
}

// BehavioralIndicator is an observable, measurable facet of a competency,
// linked to assessment questions. Read-only to the assessment core.
type BehavioralIndicator struct {
	ID                      uuid.UUID       `json:"id"`
	CompetencyID            uuid.UUID       `json:"competency_id"`
	Name                    string          `json:"name"`
	ContextScope            ContextScope    `json:"context_scope"`
	MeasurementType         MeasurementType `json:"measurement_type"`
	ObservabilityComplexity int             `json:"observability_complexity"`
	Active                  bool            `json:"active"`
}
