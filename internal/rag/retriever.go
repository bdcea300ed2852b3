package rag

import (
	"context"
	"fmt"

	"docent-ai/internal/contextutil"
	"docent-ai/internal/corpus"
)

// Result counts per intent. A single artifact answers a detail question;
// comparisons and background questions read wider.
const (
	artifactDetailK     = 1
	artifactComparisonK = 3
	historyBackgroundK  = 3
)

// Retriever selects the store and result count for an intent and executes the
// embedding plus nearest-neighbor lookup.
type Retriever struct {
	embedder  Embedder
	artifacts *corpus.Store
	history   *corpus.Store
}

// NewRetriever creates a retriever over the two corpus stores.
func NewRetriever(embedder Embedder, artifacts, history *corpus.Store) *Retriever {
	return &Retriever{
		embedder:  embedder,
		artifacts: artifacts,
		history:   history,
	}
}

// Retrieve embeds the query once and searches the store selected by intent.
// Simple-conversation and unrouted intents return an empty result without
// touching the embedder or any store. An embedding failure is fatal to the
// whole request and propagates as a hard error.
func (r *Retriever) Retrieve(ctx context.Context, query string, intent Intent) ([]corpus.Retrieved, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var store *corpus.Store
	var k int
	switch intent {
	case IntentArtifactDetail:
		store, k = r.artifacts, artifactDetailK
	case IntentArtifactComparison:
		store, k = r.artifacts, artifactComparisonK
	case IntentHistoricalBackground:
		store, k = r.history, historyBackgroundK
	default:
		return nil, nil
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s store: %w", store.Name(), err)
	}

	logger.InfoContext(ctx, "retrieval completed",
		"intent", intent.String(),
		"store", store.Name(),
		"k", k,
		"results", len(results),
	)
	return results, nil
}
