package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/talentlens/talentlens-backend/internal/response"
	"github.com/talentlens/talentlens-backend/internal/service"
)

// CatalogHandler handles the read-only assessment catalog endpoints.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListTemplates godoc
// GET /api/v1/assessment/templates
// Lists active test templates.
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	templates, err := h.catalogService.ListTemplates(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"templates": templates})
}

// GetTemplate godoc
// GET /api/v1/assessment/templates/:template_id
// Returns one active template.
func (h *CatalogHandler) GetTemplate(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	tmpl, err := h.catalogService.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		var notFound *service.NotFoundError
		if errors.As(err, &notFound) {
			response.Fail(c, http.StatusNotFound, response.ErrTemplateNotAvailable)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"template": tmpl})
}

// ListCompetencies godoc
// GET /api/v1/assessment/competencies
// Lists active competencies.
func (h *CatalogHandler) ListCompetencies(c *gin.Context) {
	competencies, err := h.catalogService.ListCompetencies(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"competencies": competencies})
}
