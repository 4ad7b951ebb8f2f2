package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/talentlens/talentlens-backend/internal/config"
	"github.com/talentlens/talentlens-backend/internal/response"
	"github.com/talentlens/talentlens-backend/internal/service"
	ws "github.com/talentlens/talentlens-backend/internal/websocket"
)

const (
	keepAliveInterval = 30 * time.Second
	snapshotTimeout   = 5 * time.Second // prevent slow queries from blocking the socket loop
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live template progress to admin dashboards.
type MonitorHandler struct {
	rdb            *redis.Client
	catalogService *service.CatalogService
	monitorService *service.MonitorService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(
	rdb *redis.Client,
	catalogService *service.CatalogService,
	monitorService *service.MonitorService,
	log zerolog.Logger,
	allowedOrigins []string,
) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		catalogService: catalogService,
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// MonitorTemplateWS godoc
// WS /ws/v1/admin/templates/:template_id/monitor
// Upgrades to WebSocket. Sends a full progress snapshot on connect, then
// forwards live progress events published on the template's monitor channel.
func (h *MonitorHandler) MonitorTemplateWS(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.catalogService.GetTemplate(c.Request.Context(), templateID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	reqCtx := c.Request.Context()
	wsLog := h.log.With().Str("template_id", templateID.String()).Logger()
	wsLog.Info().Msg("Admin attached to live monitor")

	h.sendSnapshot(reqCtx, conn, templateID)

	channelName := config.CacheKey.TemplateMonitorChannel(templateID.String())
	pubsub := h.rdb.Subscribe(reqCtx, channelName)
	defer pubsub.Close()

	events := pubsub.Channel()
	done := make(chan struct{})
	defer close(done)
	actions := h.readActions(conn, done, wsLog)

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	for {
		select {
		case <-reqCtx.Done():
			wsLog.Info().Msg("Admin disconnected from live monitor")
			return

		case msg, ok := <-events:
			if !ok {
				return
			}
			h.forwardProgress(conn, wsLog, msg.Payload)

		case action, ok := <-actions:
			if !ok {
				wsLog.Debug().Msg("Connection closed")
				return
			}
			switch action {
			case ws.ActionPing:
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionRefresh:
				h.sendSnapshot(reqCtx, conn, templateID)
			default:
				ws.WriteError(conn, "unknown action: "+string(action))
			}

		case <-keepAliveTicker.C:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		}
	}
}

// readActions pumps client actions into a channel so the main loop can
// select over them alongside pub/sub events. done unblocks an in-flight send
// when the main loop exits first; closing the conn cannot do that.
func (h *MonitorHandler) readActions(conn *websocket.Conn, done <-chan struct{}, wsLog zerolog.Logger) <-chan ws.Action {
	actions := make(chan ws.Action)
	go func() {
		defer close(actions)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			select {
			case actions <- msg.Action:
			case <-done:
				return
			}
		}
	}()
	return actions
}

// sendSnapshot queries current per-session progress and writes it out.
func (h *MonitorHandler) sendSnapshot(parentCtx context.Context, conn *websocket.Conn, templateID uuid.UUID) {
	ctx, cancel := context.WithTimeout(parentCtx, snapshotTimeout)
	defer cancel()

	sessions, err := h.monitorService.GetProgressSnapshot(ctx, templateID)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to fetch progress snapshot")
		ws.WriteError(conn, "snapshot failed")
		return
	}

	ws.WriteTyped(conn, ws.SnapshotResponse{
		Event:    ws.EventSnapshot,
		Sessions: sessions,
	})
}

// forwardProgress re-types a published progress event and writes it out.
func (h *MonitorHandler) forwardProgress(conn *websocket.Conn, wsLog zerolog.Logger, payload string) {
	var event struct {
		SessionID string `json:"session_id"`
		UserID    string `json:"user_id"`
		Answered  int64  `json:"answered"`
		Total     int    `json:"total"`
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		wsLog.Warn().Err(err).Msg("Invalid progress payload")
		return
	}

	ws.WriteTyped(conn, ws.ProgressResponse{
		Event:     ws.EventProgress,
		SessionID: event.SessionID,
		UserID:    event.UserID,
		Answered:  event.Answered,
		Total:     event.Total,
	})
}
