package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"docent-ai/internal/contextutil"
	"docent-ai/internal/corpus"
	"docent-ai/internal/llm"
	"docent-ai/internal/rag"
	"docent-ai/internal/session"

	"github.com/yuin/goldmark"
)

// AskHandler handles HTTP requests for docent questions.
type AskHandler struct {
	engine   rag.Engine
	sessions *session.Store
	markdown goldmark.Markdown
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine, sessions *session.Store) *AskHandler {
	return &AskHandler{
		engine:   engine,
		sessions: sessions,
		markdown: goldmark.New(),
	}
}

// AskRequest represents the HTTP request payload for docent questions.
// This mirrors rag.AskRequest but is defined here for HTTP layer separation.
type AskRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// AskResponse represents the HTTP response payload for docent questions.
type AskResponse struct {
	// The generated answer in markdown
	Answer string `json:"answer"`

	// The answer rendered as HTML for direct display
	AnswerHTML string `json:"answer_html"`

	// The classified intent label
	Intent string `json:"intent"`

	// The session carrying this conversation; echo it back on the next turn
	SessionID string `json:"session_id"`

	// Source records behind the answer, best match first
	Metadata []MetadataResponse `json:"metadata"`
}

// MetadataResponse represents one retrieved source record. Accession numbers
// live here, never in the answer text, so clients decide whether to show them.
type MetadataResponse struct {
	Source          string  `json:"source"`
	Name            string  `json:"name,omitempty"`
	AccessionNumber string  `json:"accession_number,omitempty"`
	SourceFile      string  `json:"source_file,omitempty"`
	SourceURL       string  `json:"source_url,omitempty"`
	ImageURL        string  `json:"image_url,omitempty"`
	Distance        float32 `json:"distance"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for docent questions.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		logger.WarnContext(ctx, "empty query in request")
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.sessions.Create()
		logger.InfoContext(ctx, "new session started", "session_id", sessionID)
	}
	history := h.sessions.History(sessionID)

	ragResp, err := h.engine.Ask(ctx, rag.AskRequest{Query: req.Query, History: history})
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}

	// The session only grows after a successful answer; a failed turn leaves
	// the history as it was.
	h.sessions.Append(sessionID,
		rag.Message{Role: rag.RoleUser, Text: req.Query},
		rag.Message{Role: rag.RoleModel, Text: ragResp.Answer},
	)

	answerHTML, err := h.renderHTML(ragResp.Answer)
	if err != nil {
		logger.WarnContext(ctx, "markdown rendering failed, serving raw answer", "error", err)
		answerHTML = ragResp.Answer
	}

	resp := AskResponse{
		Answer:     ragResp.Answer,
		AnswerHTML: answerHTML,
		Intent:     ragResp.Intent.String(),
		SessionID:  sessionID,
		Metadata:   buildMetadata(ragResp.Metadata),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// renderHTML converts the markdown answer to HTML.
func (h *AskHandler) renderHTML(answer string) (string, error) {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(answer), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// buildMetadata converts retrieval records to their HTTP shape.
func buildMetadata(results []corpus.Retrieved) []MetadataResponse {
	metadata := make([]MetadataResponse, 0, len(results))
	for _, res := range results {
		entry := MetadataResponse{
			Source:   res.Doc.SourceLabel(),
			Distance: res.Distance,
		}
		switch doc := res.Doc.(type) {
		case corpus.Artifact:
			entry.Name = doc.Name
			entry.AccessionNumber = doc.AccessionNumber
			entry.SourceURL = doc.SourceURL
			entry.ImageURL = doc.ImageURL
		case corpus.HistoryChunk:
			entry.SourceFile = doc.SourceFile
		}
		metadata = append(metadata, entry)
	}
	return metadata
}

// handleEngineError maps pipeline errors to HTTP status codes.
func (h *AskHandler) handleEngineError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "ask pipeline error", "error", err)

	// LLM failures -> 502
	if llm.IsGenerationError(err) {
		writeError(w, http.StatusBadGateway, "Language model service error")
		return
	}

	errMsg := strings.ToLower(err.Error())

	// Embedding and vector search failures -> 503
	if strings.Contains(errMsg, "embed") ||
		strings.Contains(errMsg, "search") ||
		strings.Contains(errMsg, "qdrant") {
		writeError(w, http.StatusServiceUnavailable, "Retrieval backend unavailable")
		return
	}

	writeError(w, http.StatusInternalServerError, "Failed to process question")
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
