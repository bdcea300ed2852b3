package main

import (
	"context"
	_ "embed"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docent-ai/internal/config"
	"docent-ai/internal/corpus"
	"docent-ai/internal/http"
	"docent-ai/internal/llm"
	"docent-ai/internal/rag"
	"docent-ai/internal/session"
	"docent-ai/internal/vectorstore"
)

//go:embed index.html
var indexHTML string

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx := context.Background()

	// Load the corpus metadata. Both backends read it locally; only the
	// vector index location differs.
	db, err := corpus.Open(cfg.CorpusDBPath)
	if err != nil {
		log.Fatalf("Failed to open corpus database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	artifactDocs, err := corpus.LoadArtifacts(ctx, db)
	if err != nil {
		log.Fatalf("Failed to load artifact metadata: %v", err)
	}
	historyDocs, err := corpus.LoadHistoryChunks(ctx, db)
	if err != nil {
		log.Fatalf("Failed to load history metadata: %v", err)
	}
	slog.Info("Corpus metadata loaded", "artifacts", len(artifactDocs), "history_chunks", len(historyDocs))

	// Open the vector indexes behind the configured backend.
	var artifactIndex, historyIndex vectorstore.Index
	switch cfg.VectorBackend {
	case config.BackendFlat:
		artifactIndex, err = vectorstore.LoadFlatIndex(cfg.ArtifactIndexPath, cfg.VectorSize)
		if err != nil {
			log.Fatalf("Failed to load artifact index: %v", err)
		}
		historyIndex, err = vectorstore.LoadFlatIndex(cfg.HistoryIndexPath, cfg.VectorSize)
		if err != nil {
			log.Fatalf("Failed to load history index: %v", err)
		}
		slog.Info("Flat indexes loaded",
			"artifact_path", cfg.ArtifactIndexPath,
			"history_path", cfg.HistoryIndexPath,
		)
	case config.BackendQdrant:
		client, err := vectorstore.NewQdrantClient(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		artifactIndex, err = vectorstore.OpenQdrantIndex(ctx, client, cfg.ArtifactCollection, cfg.VectorSize)
		if err != nil {
			log.Fatalf("Failed to open artifact collection: %v", err)
		}
		historyIndex, err = vectorstore.OpenQdrantIndex(ctx, client, cfg.HistoryCollection, cfg.VectorSize)
		if err != nil {
			log.Fatalf("Failed to open history collection: %v", err)
		}
		slog.Info("Qdrant collections ready",
			"artifact_collection", cfg.ArtifactCollection,
			"history_collection", cfg.HistoryCollection,
		)
	}

	// Index rows and metadata rows must correspond one to one.
	artifacts, err := corpus.NewStore("artifacts", artifactIndex, artifactDocs)
	if err != nil {
		log.Fatalf("Artifact store mismatch: %v", err)
	}
	history, err := corpus.NewStore("history", historyIndex, historyDocs)
	if err != nil {
		log.Fatalf("History store mismatch: %v", err)
	}

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	probe, err := embedder.EmbedText(ctx, "test")
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(probe) != cfg.VectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.VectorSize, len(probe))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.VectorSize)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	engine := rag.NewEngine(llmClient, embedder, artifacts, history)
	slog.Info("Docent engine initialized")

	deps := &http.Deps{
		Engine:    engine,
		Sessions:  session.NewStore(),
		Artifacts: artifacts,
		History:   history,
		IndexHTML: indexHTML,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
