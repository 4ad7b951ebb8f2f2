package websocket

import "github.com/talentlens/talentlens-backend/internal/service"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing    Action = "ping"
	ActionRefresh Action = "refresh"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSnapshot Event = "snapshot"
	EventProgress Event = "progress"
	EventPong     Event = "pong"
)

// SnapshotResponse carries the full per-session progress of a template,
// sent on connect and on explicit refresh.
type SnapshotResponse struct {
	Event    Event                     `json:"event"`
	Sessions []service.SessionProgress `json:"sessions"`
}

// ProgressResponse carries one live progress update forwarded from the
// template monitor channel.
type ProgressResponse struct {
	Event     Event  `json:"event"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Answered  int64  `json:"answered"`
	Total     int    `json:"total"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
