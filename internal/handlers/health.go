package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"docent-ai/internal/contextutil"
	"docent-ai/internal/corpus"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	artifacts *corpus.Store
	history   *corpus.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(artifacts, history *corpus.Store) *HealthHandler {
	return &HealthHandler{artifacts: artifacts, history: history}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Document counts per store
	Documents map[string]int `json:"documents"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks. The stores are loaded
// in-process at startup, so the check verifies they are populated rather than
// reachable.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	documents := make(map[string]int)
	var issues []string

	for _, store := range []*corpus.Store{h.artifacts, h.history} {
		documents[store.Name()] = store.Len()
		if store.Len() > 0 {
			checks[store.Name()] = "ok"
		} else {
			checks[store.Name()] = "empty"
			issues = append(issues, store.Name()+"_store_empty")
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Documents: documents,
		Issues:    issues,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
