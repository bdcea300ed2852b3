package indexer

import (
	"context"
	"database/sql"
	"fmt"

	"docent-ai/internal/contextutil"
	"docent-ai/internal/corpus"
	"docent-ai/internal/vectorstore"
)

// defaultBatchSize bounds how many texts go to the embeddings service per
// request.
const defaultBatchSize = 32

// Embedder is the embedding capability the build pipeline needs.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline builds the vector indexes and the aligned metadata tables. It runs
// offline, once per corpus revision; the serving process only ever reads its
// output.
type Pipeline struct {
	embedder  Embedder
	batchSize int
}

// NewPipeline creates a new build pipeline.
func NewPipeline(embedder Embedder) *Pipeline {
	return &Pipeline{embedder: embedder, batchSize: defaultBatchSize}
}

// BuildArtifacts embeds the artifact retrieval texts, writes the flat index to
// indexPath, and inserts the metadata rows in index order.
func (p *Pipeline) BuildArtifacts(ctx context.Context, db *sql.DB, artifacts []corpus.Artifact, indexPath string) error {
	logger := contextutil.LoggerFromContext(ctx)

	texts := make([]string, len(artifacts))
	for i, a := range artifacts {
		texts[i] = a.RAGText
	}

	index, err := p.buildIndex(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to build artifact index: %w", err)
	}
	if err := index.Save(indexPath); err != nil {
		return fmt.Errorf("failed to save artifact index: %w", err)
	}

	for i, a := range artifacts {
		if err := corpus.InsertArtifact(ctx, db, i, a); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "artifact store built", "rows", len(artifacts), "index_path", indexPath)
	return nil
}

// BuildHistory embeds the history chunks, writes the flat index to indexPath,
// and inserts the metadata rows in index order.
func (p *Pipeline) BuildHistory(ctx context.Context, db *sql.DB, chunks []corpus.HistoryChunk, indexPath string) error {
	logger := contextutil.LoggerFromContext(ctx)

	texts := make([]string, len(chunks))
	for i, h := range chunks {
		texts[i] = h.TextChunk
	}

	index, err := p.buildIndex(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to build history index: %w", err)
	}
	if err := index.Save(indexPath); err != nil {
		return fmt.Errorf("failed to save history index: %w", err)
	}

	for i, h := range chunks {
		if err := corpus.InsertHistoryChunk(ctx, db, i, h); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "history store built", "rows", len(chunks), "index_path", indexPath)
	return nil
}

// EmbedAll embeds all texts in batches, preserving input order.
func (p *Pipeline) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts to index")
	}

	var vectors [][]float32
	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := p.embedder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// buildIndex assembles a flat index over the embedded texts, in input order.
func (p *Pipeline) buildIndex(ctx context.Context, texts []string) (*vectorstore.FlatIndex, error) {
	vectors, err := p.EmbedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	index, err := vectorstore.NewFlatIndex(len(vectors[0]))
	if err != nil {
		return nil, err
	}
	if err := index.Add(vectors); err != nil {
		return nil, err
	}
	return index, nil
}
