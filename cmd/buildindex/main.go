package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"docent-ai/internal/config"
	"docent-ai/internal/corpus"
	"docent-ai/internal/indexer"
	"docent-ai/internal/llm"
	"docent-ai/internal/vectorstore"
)

// buildindex is the one-shot corpus build job. It reads the raw CSV exports,
// embeds every retrieval text, and writes the vector indexes plus the aligned
// metadata table. The API server only ever reads its output.
func main() {
	artifactsCSV := flag.String("artifacts", "./data/artifacts.csv", "path to the raw artifact CSV export")
	historyCSV := flag.String("history", "./data/history_chunks.csv", "path to the pre-chunked history CSV")
	imageBaseURL := flag.String("image-base-url", "/static/images", "base URL prefixed to synthesized image file names")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	slog.SetDefault(slog.New(handler))

	ctx := context.Background()

	artifacts, err := indexer.ReadArtifactsCSV(*artifactsCSV, *imageBaseURL)
	if err != nil {
		log.Fatalf("Failed to read artifacts: %v", err)
	}
	chunks, err := indexer.ReadHistoryCSV(*historyCSV)
	if err != nil {
		log.Fatalf("Failed to read history chunks: %v", err)
	}
	slog.Info("Corpus loaded", "artifacts", len(artifacts), "history_chunks", len(chunks))

	db, err := corpus.Open(cfg.CorpusDBPath)
	if err != nil {
		log.Fatalf("Failed to open corpus database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := corpus.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	pipeline := indexer.NewPipeline(embedder)

	switch cfg.VectorBackend {
	case config.BackendFlat:
		if err := pipeline.BuildArtifacts(ctx, db, artifacts, cfg.ArtifactIndexPath); err != nil {
			log.Fatalf("Failed to build artifact store: %v", err)
		}
		if err := pipeline.BuildHistory(ctx, db, chunks, cfg.HistoryIndexPath); err != nil {
			log.Fatalf("Failed to build history store: %v", err)
		}
	case config.BackendQdrant:
		client, err := vectorstore.NewQdrantClient(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}

		texts := make([]string, len(artifacts))
		for i, a := range artifacts {
			texts[i] = a.RAGText
		}
		vectors, err := pipeline.EmbedAll(ctx, texts)
		if err != nil {
			log.Fatalf("Failed to embed artifacts: %v", err)
		}
		if err := vectorstore.EnsureQdrantCollection(ctx, client, cfg.ArtifactCollection, cfg.VectorSize); err != nil {
			log.Fatalf("Failed to ensure artifact collection: %v", err)
		}
		if err := vectorstore.UpsertRows(ctx, client, cfg.ArtifactCollection, vectors); err != nil {
			log.Fatalf("Failed to upsert artifact vectors: %v", err)
		}
		for i, a := range artifacts {
			if err := corpus.InsertArtifact(ctx, db, i, a); err != nil {
				log.Fatalf("Failed to insert artifact metadata: %v", err)
			}
		}
		slog.Info("Artifact collection built", "collection", cfg.ArtifactCollection, "rows", len(artifacts))

		texts = make([]string, len(chunks))
		for i, h := range chunks {
			texts[i] = h.TextChunk
		}
		vectors, err = pipeline.EmbedAll(ctx, texts)
		if err != nil {
			log.Fatalf("Failed to embed history chunks: %v", err)
		}
		if err := vectorstore.EnsureQdrantCollection(ctx, client, cfg.HistoryCollection, cfg.VectorSize); err != nil {
			log.Fatalf("Failed to ensure history collection: %v", err)
		}
		if err := vectorstore.UpsertRows(ctx, client, cfg.HistoryCollection, vectors); err != nil {
			log.Fatalf("Failed to upsert history vectors: %v", err)
		}
		for i, h := range chunks {
			if err := corpus.InsertHistoryChunk(ctx, db, i, h); err != nil {
				log.Fatalf("Failed to insert history metadata: %v", err)
			}
		}
		slog.Info("History collection built", "collection", cfg.HistoryCollection, "rows", len(chunks))
	}

	slog.Info("Corpus build complete", "backend", cfg.VectorBackend, "db_path", cfg.CorpusDBPath)
}
