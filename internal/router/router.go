package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/talentlens/talentlens-backend/internal/config"
	"github.com/talentlens/talentlens-backend/internal/handler"
	"github.com/talentlens/talentlens-backend/internal/middleware"
	"github.com/talentlens/talentlens-backend/internal/response"
	"github.com/talentlens/talentlens-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Session *handler.SessionHandler
	Stats   *handler.StatsHandler
	Monitor *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Assessment Group (User JWT) ────────────────────────────────
	assessmentAPI := router.Group("/api/v1/assessment")
	assessmentAPI.Use(middleware.RequireUserJWT(authService))
	{
		// Catalog
		assessmentAPI.GET("/templates", handlers.Catalog.ListTemplates)
		assessmentAPI.GET("/templates/:template_id", handlers.Catalog.GetTemplate)
		assessmentAPI.GET("/competencies", handlers.Catalog.ListCompetencies)

		// Session lifecycle
		assessmentAPI.POST("/templates/:template_id/sessions", handlers.Session.StartSession)
		assessmentAPI.GET("/sessions/:session_id", handlers.Session.GetSession)
		assessmentAPI.POST("/sessions/:session_id/answers", handlers.Session.RecordAnswer)
		assessmentAPI.POST("/sessions/:session_id/complete", handlers.Session.CompleteSession)
	}

	// ─── 3. Admin Group (Admin JWT) ────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/stats/entities", handlers.Stats.GetEntityStats)
	}

	// ─── 4. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/templates/:template_id/monitor", handlers.Monitor.MonitorTemplateWS)
	}

	return router
}
