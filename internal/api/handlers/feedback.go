package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/alexroessner/newsfeed/internal/api/response"
	"github.com/alexroessner/newsfeed/internal/briefing/engine"
)

// FeedbackRequestBody is the JSON body for POST /v1/feedback.
type FeedbackRequestBody struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// FeedbackHandler serves POST /v1/feedback.
type FeedbackHandler struct {
	engine *engine.Engine
}

// NewFeedbackHandler builds a handler that applies free-text preference
// commands against a user's profile.
func NewFeedbackHandler(eng *engine.Engine) *FeedbackHandler {
	return &FeedbackHandler{engine: eng}
}

// Create handles POST /v1/feedback.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body FeedbackRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	if body.UserID == "" {
		response.WriteError(w, http.StatusBadRequest, "MISSING_USER_ID", "user_id is required")
		return
	}
	if body.Text == "" {
		response.WriteError(w, http.StatusBadRequest, "MISSING_TEXT", "text is required")
		return
	}

	result := h.engine.ApplyFeedback(body.UserID, body.Text, h.engine.KnownTopics())
	response.WriteJSON(w, http.StatusOK, result)
}
