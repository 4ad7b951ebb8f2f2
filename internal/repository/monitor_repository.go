package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentlens/talentlens-backend/internal/model"
)

// MonitorRepository provides data access for live session monitoring.
type MonitorRepository struct {
	pool *pgxpool.Pool
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool) *MonitorRepository {
	return &MonitorRepository{pool: pool}
}

// InProgressSession is the minimal per-session state shown in the monitor.
type InProgressSession struct {
	SessionID      uuid.UUID `json:"session_id"`
	UserID         string    `json:"user_id"`
	TotalQuestions int       `json:"total_questions"`
}

// GetInProgressSessions returns all in-progress sessions for a template.
func (r *MonitorRepository) GetInProgressSessions(ctx context.Context, templateID uuid.UUID) ([]InProgressSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, jsonb_array_length(question_order)
		 FROM test_sessions
		 WHERE template_id = $1 AND status = $2`,
		templateID, model.SessionStatusInProgress,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []InProgressSession
	for rows.Next() {
		var s InProgressSession
		if err := rows.Scan(&s.SessionID, &s.UserID, &s.TotalQuestions); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetAnsweredCounts returns the answered-question count for every session of
// the template that has at least one recorded answer.
func (r *MonitorRepository) GetAnsweredCounts(ctx context.Context, templateID uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.session_id, COUNT(*)
		 FROM test_answers a
		 JOIN test_sessions s ON a.session_id = s.id
		 WHERE s.template_id = $1
		 GROUP BY a.session_id`,
		templateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var sid uuid.UUID
		var count int64
		if err := rows.Scan(&sid, &count); err != nil {
			return nil, err
		}
		counts[sid] = count
	}
	return counts, rows.Err()
}
