package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentlens/talentlens-backend/internal/config"
	"github.com/talentlens/talentlens-backend/internal/database"
	"github.com/talentlens/talentlens-backend/internal/logger"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// Seeds a small but fully-linked assessment catalog: competencies with
// indicators and questions, a universal question pool, and one template per
// assessment goal.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding Assessment Catalog ===")

	competencies := []struct {
		name     string
		category model.CompetencyCategory
		weight   float64
	}{
		{"Analytical Thinking", model.CategoryCognitive, 1.5},
		{"Active Communication", model.CategoryInterpersonal, 1.0},
		{"Team Leadership", model.CategoryLeadership, 1.2},
		{"Systems Proficiency", model.CategoryTechnical, 1.0},
	}

	scopes := model.AllContextScopes
	measurements := []model.MeasurementType{
		model.MeasurementFrequency,
		model.MeasurementQuality,
		model.MeasurementImpact,
		model.MeasurementPresence,
	}

	likertOptions, _ := json.Marshal([]string{
		"Never", "Rarely", "Sometimes", "Often", "Always",
	})

	competencyIDs := make([]uuid.UUID, 0, len(competencies))
	questionCount := 0

	for ci, comp := range competencies {
		var compID uuid.UUID
		err := pool.QueryRow(ctx,
			`INSERT INTO competencies (name, category, weight)
			 VALUES ($1, $2, $3) RETURNING id`,
			comp.name, comp.category, comp.weight,
		).Scan(&compID)
		if err != nil {
			log.Fatal().Err(err).Str("competency", comp.name).Msg("Failed to insert competency")
		}
		competencyIDs = append(competencyIDs, compID)

		// Three indicators per competency, cycling scope and measurement.
		for ii := 0; ii < 3; ii++ {
			var indicatorID uuid.UUID
			err := pool.QueryRow(ctx,
				`INSERT INTO behavioral_indicators
				   (competency_id, name, context_scope, measurement_type, observability_complexity)
				 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				compID,
				fmt.Sprintf("%s indicator %d", comp.name, ii+1),
				scopes[(ci+ii)%len(scopes)],
				measurements[(ci+ii)%len(measurements)],
				(ii%3)+1,
			).Scan(&indicatorID)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to insert indicator")
			}

			// Four Likert questions per indicator.
			for qi := 0; qi < 4; qi++ {
				difficulty := model.AllDifficultyLevels[(ii+qi)%len(model.AllDifficultyLevels)]
				if err := insertQuestion(ctx, pool,
					&indicatorID,
					fmt.Sprintf("How often do you demonstrate %s (aspect %d)?", comp.name, qi+1),
					likertOptions, difficulty, false,
				); err != nil {
					log.Fatal().Err(err).Msg("Failed to insert question")
				}
				questionCount++
			}
		}
	}

	// Universal pool for OVERVIEW sessions.
	for i := 0; i < 10; i++ {
		if err := insertQuestion(ctx, pool,
			nil,
			fmt.Sprintf("General self-assessment statement %d.", i+1),
			likertOptions, model.DifficultyBasic, true,
		); err != nil {
			log.Fatal().Err(err).Msg("Failed to insert universal question")
		}
		questionCount++
	}

	// One template per goal.
	allIDs, _ := json.Marshal(competencyIDs)
	firstID, _ := json.Marshal(competencyIDs[:1])

	templates := []struct {
		name          string
		goal          model.AssessmentGoal
		competencyIDs []byte
		perIndicator  int
		universal     int
		shuffle       bool
	}{
		{"Quick Overview", model.GoalOverview, []byte(`[]`), 0, 6, false},
		{"Analytical Deep Dive", model.GoalCompetencyDeepDive, firstID, 3, 0, true},
		{"Full Spectrum Review", model.GoalFullSpectrum, allIDs, 2, 0, true},
	}

	for _, t := range templates {
		_, err := pool.Exec(ctx,
			`INSERT INTO test_templates
			   (name, goal, competency_ids, questions_per_indicator, universal_question_count, shuffle)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			t.name, t.goal, t.competencyIDs, t.perIndicator, t.universal, t.shuffle)
		if err != nil {
			log.Fatal().Err(err).Str("template", t.name).Msg("Failed to insert template")
		}
	}

	fmt.Printf("\nSeed completed! %d competencies, %d questions, %d templates.\n",
		len(competencies), questionCount, len(templates))
}

func insertQuestion(
	ctx context.Context,
	pool *pgxpool.Pool,
	indicatorID *uuid.UUID,
	prompt string,
	options []byte,
	difficulty model.DifficultyLevel,
	universal bool,
) error {
	_, err := pool.Exec(ctx,
		`INSERT INTO assessment_questions
		   (indicator_id, prompt, options, question_type, difficulty, universal)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		indicatorID, prompt, options, model.QuestionTypeLikert, difficulty, universal)
	return err
}
