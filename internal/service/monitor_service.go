package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/talentlens/talentlens-backend/internal/repository"
)

// MonitorService orchestrates live session monitoring business logic.
type MonitorService struct {
	monitorRepo *repository.MonitorRepository
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(monitorRepo *repository.MonitorRepository) *MonitorService {
	return &MonitorService{monitorRepo: monitorRepo}
}

// SessionProgress is one in-progress session's answered/total counts.
type SessionProgress struct {
	SessionID      uuid.UUID `json:"session_id"`
	UserID         string    `json:"user_id"`
	Answered       int64     `json:"answered"`
	TotalQuestions int       `json:"total_questions"`
}

// GetProgressSnapshot returns the current progress of every in-progress
// session for the template. The session list and the answered counts are
// fetched concurrently.
func (s *MonitorService) GetProgressSnapshot(ctx context.Context, templateID uuid.UUID) ([]SessionProgress, error) {
	var (
		sessions    []repository.InProgressSession
		counts      map[uuid.UUID]int64
		sessionsErr error
		countsErr   error
		wg          sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions, sessionsErr = s.monitorRepo.GetInProgressSessions(ctx, templateID)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		counts, countsErr = s.monitorRepo.GetAnsweredCounts(ctx, templateID)
	}()

	wg.Wait()

	if sessionsErr != nil {
		return nil, sessionsErr
	}
	if countsErr != nil {
		return nil, countsErr
	}

	snapshot := make([]SessionProgress, 0, len(sessions))
	for _, sess := range sessions {
		snapshot = append(snapshot, SessionProgress{
			SessionID:      sess.SessionID,
			UserID:         sess.UserID,
			Answered:       counts[sess.SessionID],
			TotalQuestions: sess.TotalQuestions,
		})
	}
	return snapshot, nil
}
