package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// IndicatorSource lists active indicators for the selection engine.
type IndicatorSource interface {
	ListActiveIDsByCompetency(ctx context.Context, competencyID uuid.UUID) ([]uuid.UUID, error)
}

// QuestionSource lists candidate question ids for the selection engine.
type QuestionSource interface {
	ListUniversalIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	ListActiveIDsByIndicator(ctx context.Context, indicatorID uuid.UUID, limit int) ([]uuid.UUID, error)
}

// QuestionSelector assembles the ordered question set for a new session.
// Selection is deterministic for a fixed question population unless the
// template's shuffle flag is set.
type QuestionSelector struct {
	indicators IndicatorSource
	questions  QuestionSource

	// shuffle permutes the final order in place. Swappable in tests.
	shuffle func([]uuid.UUID)
}

// NewQuestionSelector creates a new QuestionSelector.
func NewQuestionSelector(indicators IndicatorSource, questions QuestionSource) *QuestionSelector {
	return &QuestionSelector{
		indicators: indicators,
		questions:  questions,
		shuffle: func(ids []uuid.UUID) {
			rand.Shuffle(len(ids), func(i, j int) {
				ids[i], ids[j] = ids[j], ids[i]
			})
		},
	}
}

// Select returns the ordered question ids for the template. An exhausted
// candidate pool yields an empty list, never an error; the orchestrator still
// creates a zero-question session.
func (s *QuestionSelector) Select(ctx context.Context, tmpl *model.TestTemplate) ([]uuid.UUID, error) {
	if tmpl.Goal == model.GoalOverview {
		ids, err := s.questions.ListUniversalIDs(ctx, tmpl.UniversalQuestionCount)
		if err != nil {
			return nil, fmt.Errorf("list universal questions: %w", err)
		}
		return ids, nil
	}

	// Per-competency goals: questions_per_indicator active questions for
	// every active indicator, concatenated in competency order then
	// indicator order.
	var order []uuid.UUID
	for _, competencyID := range tmpl.CompetencyIDs {
		indicatorIDs, err := s.indicators.ListActiveIDsByCompetency(ctx, competencyID)
		if err != nil {
			return nil, fmt.Errorf("list indicators for competency %s: %w", competencyID, err)
		}
		for _, indicatorID := range indicatorIDs {
			questionIDs, err := s.questions.ListActiveIDsByIndicator(ctx, indicatorID, tmpl.QuestionsPerIndicator)
			if err != nil {
				return nil, fmt.Errorf("list questions for indicator %s: %w", indicatorID, err)
			}
			order = append(order, questionIDs...)
		}
	}

	// Shuffle permutes the final concatenation only; per-indicator quotas
	// are already fixed at this point.
	if tmpl.Shuffle {
		s.shuffle(order)
	}
	return order, nil
}
