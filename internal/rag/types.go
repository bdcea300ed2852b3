// Package rag implements the query-understanding and retrieval pipeline:
// conversational query rewriting, intent routing, evidence retrieval against
// the artifact and history stores, and grounded answer generation.
package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks docent-ai/internal/rag TextGenerator,Embedder

import (
	"context"

	"docent-ai/internal/corpus"
)

// Speaker roles in a conversation. History is owned by the caller and passed
// in fresh per Ask call; the pipeline never mutates it.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of the conversation, oldest first in a history slice.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// TextGenerator is the LLM text service: prompt in, text out.
// Implementations must return *llm.GenerationError-compatible errors.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a fixed-dimension vector. Stateless and safe for
// concurrent use.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// AskRequest is one pipeline invocation.
type AskRequest struct {
	// Query is the user's literal question. Must be non-empty.
	Query string
	// History is the prior conversation, oldest first. May be empty.
	History []Message
}

// AskResponse is the successful result of one pipeline invocation.
type AskResponse struct {
	// Answer is the generated answer text.
	Answer string
	// Intent is the classified intent the pipeline acted on.
	Intent Intent
	// Metadata holds the ranked retrieval results the answer was grounded on.
	// Empty for simple-conversation queries.
	Metadata []corpus.Retrieved
}
