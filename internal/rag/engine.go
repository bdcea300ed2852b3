package rag

import (
	"context"
	"fmt"

	"docent-ai/internal/contextutil"
	"docent-ai/internal/corpus"
)

// Engine runs the full ask pipeline. It holds no per-request state: every Ask
// call is purely a function of its inputs, so one Engine serves concurrent
// requests.
type Engine interface {
	// Ask answers a question, retrieving evidence as the classified intent
	// requires. The only error shape it returns for LLM failures is a
	// *llm.GenerationError (wrapped); callers render it as a structured
	// error, never a fault.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// engine implements Engine.
type engine struct {
	rewriter  *Rewriter
	router    *Router
	retriever *Retriever
	generator *Generator
}

// NewEngine wires the pipeline from its collaborators. The stores are loaded
// once at process start and shared read-only.
func NewEngine(textGen TextGenerator, embedder Embedder, artifacts, history *corpus.Store) Engine {
	return &engine{
		rewriter:  NewRewriter(textGen),
		router:    NewRouter(textGen),
		retriever: NewRetriever(embedder, artifacts, history),
		generator: NewGenerator(textGen),
	}
}

// Ask orchestrates rewrite, routing, retrieval, context assembly, and answer
// generation. Routing and retrieval use the rewritten query; the final prompt
// carries the original question plus the full history. The rewrite is a
// retrieval aid, not a replacement utterance.
func (e *engine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Query == "" {
		return AskResponse{}, fmt.Errorf("query must not be empty")
	}

	rewritten := e.rewriter.Rewrite(ctx, req.Query, req.History)
	intent := e.router.Classify(ctx, rewritten)

	if intent == IntentSimpleChat {
		answer, err := e.generator.SimpleChat(ctx, req.Query)
		if err != nil {
			logger.ErrorContext(ctx, "simple chat generation failed", "error", err)
			return AskResponse{}, err
		}
		return AskResponse{Answer: answer, Intent: intent}, nil
	}

	results, err := e.retriever.Retrieve(ctx, rewritten, intent)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "intent", intent.String(), "error", err)
		return AskResponse{}, err
	}

	evidence := AssembleEvidence(results)

	answer, err := e.generator.Answer(ctx, req.Query, req.History, evidence)
	if err != nil {
		logger.ErrorContext(ctx, "answer generation failed", "error", err)
		return AskResponse{}, err
	}

	logger.InfoContext(ctx, "ask completed",
		"intent", intent.String(),
		"evidence_records", len(results),
		"answer_length", len(answer),
	)
	return AskResponse{Answer: answer, Intent: intent, Metadata: results}, nil
}
