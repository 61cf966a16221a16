package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alexroessner/newsfeed/internal/api/response"
	"github.com/alexroessner/newsfeed/internal/briefing/engine"
)

// AuditHandler serves the operator-facing audit trail endpoints.
type AuditHandler struct {
	engine *engine.Engine
}

// NewAuditHandler builds a handler backed by eng's audit trail.
func NewAuditHandler(eng *engine.Engine) *AuditHandler {
	return &AuditHandler{engine: eng}
}

// List handles GET /v1/audit, returning recently audited request IDs.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": h.engine.RecentAuditRequests(limit),
	})
}

// Get handles GET /v1/audit/{requestID}, returning the formatted trail for
// one request.
func (h *AuditHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")
	if requestID == "" {
		response.WriteError(w, http.StatusBadRequest, "MISSING_REQUEST_ID", "requestID is required")
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"request_id": requestID,
		"report":     h.engine.AuditReport(requestID),
	})
}
