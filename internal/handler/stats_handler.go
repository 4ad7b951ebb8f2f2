package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentlens/talentlens-backend/internal/response"
	"github.com/talentlens/talentlens-backend/internal/service"
)

// StatsHandler handles the admin statistics endpoints.
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetEntityStats godoc
// GET /api/v1/admin/stats/entities
// Returns the aggregate report over competencies, indicators and questions.
func (h *StatsHandler) GetEntityStats(c *gin.Context) {
	stats, err := h.statsService.GetEntityStats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
