package handlers

import (
	"encoding/json"
	"net/http"

	"docent-ai/internal/contextutil"
	"docent-ai/internal/session"
)

// ClearHandler handles HTTP requests for resetting a conversation.
type ClearHandler struct {
	sessions *session.Store
}

// NewClearHandler creates a new ClearHandler.
func NewClearHandler(sessions *session.Store) *ClearHandler {
	return &ClearHandler{sessions: sessions}
}

// ClearRequest represents the HTTP request payload for clearing a session.
type ClearRequest struct {
	SessionID string `json:"session_id"`
}

// ClearResponse represents the HTTP response payload for clearing a session.
type ClearResponse struct {
	Status string `json:"status"`
}

// ServeHTTP handles HTTP requests for resetting a conversation.
func (h *ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	h.sessions.Clear(req.SessionID)
	logger.InfoContext(ctx, "session cleared", "session_id", req.SessionID)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ClearResponse{Status: "cleared"})
}
