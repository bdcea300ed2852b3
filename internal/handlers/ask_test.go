package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docent-ai/internal/corpus"
	"docent-ai/internal/llm"
	"docent-ai/internal/rag"
	"docent-ai/internal/session"
)

// mockEngine is a simple engine stub for handler tests.
type mockEngine struct {
	requests []rag.AskRequest
	response rag.AskResponse
	err      error
	// respond, when set, takes precedence over the fixed response.
	respond func(req rag.AskRequest) (rag.AskResponse, error)
}

func (m *mockEngine) Ask(_ context.Context, req rag.AskRequest) (rag.AskResponse, error) {
	m.requests = append(m.requests, req)
	if m.respond != nil {
		return m.respond(req)
	}
	if m.err != nil {
		return rag.AskResponse{}, m.err
	}
	return m.response, nil
}

func postAsk(t *testing.T, handler http.Handler, body AskRequest) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeAsk(t *testing.T, rec *httptest.ResponseRecorder) AskResponse {
	t.Helper()
	var resp AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestAskHandler_Success(t *testing.T) {
	engine := &mockEngine{
		response: rag.AskResponse{
			Answer: "**금동관**은 무령왕릉에서 출토되었습니다.",
			Intent: rag.IntentArtifactDetail,
			Metadata: []corpus.Retrieved{
				{
					Doc: corpus.Artifact{
						ID:              "A1",
						Name:            "금동관",
						AccessionNumber: "공주-000123",
						SourceURL:       "https://gongju.museum.go.kr/relic/123",
						ImageURL:        "https://gongju.museum.go.kr/images/mur000123-00-00.jpg",
					},
					Distance: 0.12,
				},
			},
		},
	}

	handler := NewAskHandler(engine, session.NewStore())
	rec := postAsk(t, handler, AskRequest{Query: "금동관에 대해 알려줘"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
	resp := decodeAsk(t, rec)

	if resp.Answer == "" {
		t.Error("answer is empty")
	}
	if !strings.Contains(resp.AnswerHTML, "<strong>금동관</strong>") {
		t.Errorf("answer_html = %q, want rendered markdown", resp.AnswerHTML)
	}
	if resp.Intent != "유물_상세정보" {
		t.Errorf("intent = %q, want 유물_상세정보", resp.Intent)
	}
	if resp.SessionID == "" {
		t.Error("session_id missing from response")
	}
	if len(resp.Metadata) != 1 {
		t.Fatalf("metadata = %d entries, want 1", len(resp.Metadata))
	}
	entry := resp.Metadata[0]
	if entry.Source != "유물 DB" || entry.Name != "금동관" {
		t.Errorf("metadata entry = %+v", entry)
	}
	// The accession number belongs in structured metadata only.
	if entry.AccessionNumber != "공주-000123" {
		t.Errorf("accession_number = %q, want 공주-000123", entry.AccessionNumber)
	}
	if strings.Contains(resp.Answer, "공주-000123") {
		t.Errorf("answer leaks the accession number: %q", resp.Answer)
	}
}

func TestAskHandler_SessionHistoryFlows(t *testing.T) {
	sessions := session.NewStore()
	engine := &mockEngine{
		response: rag.AskResponse{Answer: "답변입니다.", Intent: rag.IntentArtifactDetail},
	}

	handler := NewAskHandler(engine, sessions)

	rec := postAsk(t, handler, AskRequest{Query: "금동관에 대해 알려줘"})
	resp := decodeAsk(t, rec)
	if len(engine.requests) != 1 || len(engine.requests[0].History) != 0 {
		t.Fatalf("first turn should carry no history: %+v", engine.requests)
	}

	rec = postAsk(t, handler, AskRequest{Query: "이 유물의 재질은?", SessionID: resp.SessionID})
	if rec.Code != http.StatusOK {
		t.Fatalf("second turn status = %d\nbody: %s", rec.Code, rec.Body.String())
	}

	second := engine.requests[1]
	if len(second.History) != 2 {
		t.Fatalf("second turn history = %d messages, want 2", len(second.History))
	}
	if second.History[0].Text != "금동관에 대해 알려줘" || second.History[1].Role != rag.RoleModel {
		t.Errorf("unexpected history: %+v", second.History)
	}
	if got := decodeAsk(t, rec).SessionID; got != resp.SessionID {
		t.Errorf("session_id changed across turns: %q -> %q", resp.SessionID, got)
	}
	if got := len(sessions.History(resp.SessionID)); got != 4 {
		t.Errorf("stored history = %d messages, want 4", got)
	}
}

func TestAskHandler_Validation(t *testing.T) {
	// The engine must never be reached by an invalid request.
	engine := &mockEngine{}
	handler := NewAskHandler(engine, session.NewStore())

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{name: "empty query", method: http.MethodPost, body: `{"query": "  "}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, body: `{"query": `, wantStatus: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodGet, body: "", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/ask", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var errResp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("error body is not JSON: %s", rec.Body.String())
			}
			if errResp.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
	if len(engine.requests) != 0 {
		t.Errorf("engine received %d requests, want 0", len(engine.requests))
	}
}

func TestAskHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "llm failure maps to 502",
			err:        &llm.GenerationError{Op: "generate", Err: errors.New("quota exceeded")},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "embedding failure maps to 503",
			err:        errors.New("failed to embed query: connection refused"),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unknown failure maps to 500",
			err:        errors.New("something broke"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{err: tt.err}
			handler := NewAskHandler(engine, session.NewStore())
			rec := postAsk(t, handler, AskRequest{Query: "질문"})

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d\nbody: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

// A failed turn must not pollute the session history.
func TestAskHandler_FailedTurnLeavesHistory(t *testing.T) {
	sessions := session.NewStore()
	id := sessions.Create()

	engine := &mockEngine{err: &llm.GenerationError{Op: "generate", Err: errors.New("timeout")}}
	handler := NewAskHandler(engine, sessions)
	postAsk(t, handler, AskRequest{Query: "질문", SessionID: id})

	if got := len(sessions.History(id)); got != 0 {
		t.Errorf("history after failed turn = %d messages, want 0", got)
	}
}
