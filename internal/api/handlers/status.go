package handlers

import (
	"net/http"

	"github.com/alexroessner/newsfeed/internal/api/response"
	"github.com/alexroessner/newsfeed/internal/briefing/engine"
)

// StatusHandler serves GET /v1/status.
type StatusHandler struct {
	engine *engine.Engine
}

// NewStatusHandler builds a handler reporting the engine's point-in-time
// health snapshot: agent roster size, orchestrator/optimizer metrics, and
// audit trail counters.
func NewStatusHandler(eng *engine.Engine) *StatusHandler {
	return &StatusHandler{engine: eng}
}

// Get handles GET /v1/status.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.engine.EngineStatus())
}
