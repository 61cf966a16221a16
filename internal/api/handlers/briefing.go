// Package handlers implements HTTP handlers for the briefing API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alexroessner/newsfeed/internal/api/response"
	"github.com/alexroessner/newsfeed/internal/briefing/engine"
)

// BriefingRequestBody is the JSON body for POST /v1/briefings.
type BriefingRequestBody struct {
	UserID         string             `json:"user_id"`
	Prompt         string             `json:"prompt"`
	WeightedTopics map[string]float64 `json:"weighted_topics"`
	MaxItems       int                `json:"max_items"`
}

// BriefingHandler serves POST /v1/briefings.
type BriefingHandler struct {
	engine  *engine.Engine
	timeout time.Duration
}

// NewBriefingHandler builds a handler with a per-request timeout bounding
// how long the research/intelligence pipeline may run before returning an
// error payload to the caller.
func NewBriefingHandler(eng *engine.Engine, timeout time.Duration) *BriefingHandler {
	return &BriefingHandler{engine: eng, timeout: timeout}
}

// Create handles POST /v1/briefings.
func (h *BriefingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body BriefingRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	if body.UserID == "" {
		response.WriteError(w, http.StatusBadRequest, "MISSING_USER_ID", "user_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payload, err := h.engine.HandleRequest(ctx, engine.Request{
		UserID:         body.UserID,
		Prompt:         body.Prompt,
		WeightedTopics: body.WeightedTopics,
		MaxItems:       body.MaxItems,
	})
	if err != nil {
		var timeoutErr *engine.TimeoutError
		switch {
		case errors.As(err, &timeoutErr):
			response.WriteError(w, http.StatusGatewayTimeout, "TIMEOUT", err.Error())
		case errors.Is(err, engine.ErrBusy):
			response.WriteError(w, http.StatusServiceUnavailable, "BUSY", err.Error())
		default:
			response.WriteError(w, http.StatusInternalServerError, "PIPELINE_ERROR", err.Error())
		}
		return
	}

	response.WriteJSON(w, http.StatusOK, payload)
}
