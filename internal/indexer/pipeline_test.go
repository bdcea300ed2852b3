package indexer

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"docent-ai/internal/corpus"
	"docent-ai/internal/vectorstore"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeEmbedder returns a deterministic 2-dimensional vector per text and
// records batch sizes.
type fakeEmbedder struct {
	batches []int
	calls   int
	err     error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batches = append(f.batches, len(texts))
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(len(texts[i])), 1}
	}
	return vectors, nil
}

func testDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := corpus.Open(filepath.Join(dir, "corpus.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := corpus.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db, dir
}

func TestBuildArtifacts(t *testing.T) {
	db, dir := testDB(t)
	indexPath := filepath.Join(dir, "artifacts.index")

	artifacts := []corpus.Artifact{
		{ID: "A1", Name: "금동관", AccessionNumber: "123", RAGText: "금동관 설명"},
		{ID: "A2", Name: "은팔찌", AccessionNumber: "124", RAGText: "은팔찌 설명"},
	}

	embedder := &fakeEmbedder{}
	pipeline := NewPipeline(embedder)

	if err := pipeline.BuildArtifacts(context.Background(), db, artifacts, indexPath); err != nil {
		t.Fatalf("BuildArtifacts() error = %v", err)
	}

	// Index and metadata stay positionally aligned.
	index, err := vectorstore.LoadFlatIndex(indexPath, 2)
	if err != nil {
		t.Fatalf("LoadFlatIndex() error = %v", err)
	}
	docs, err := corpus.LoadArtifacts(context.Background(), db)
	if err != nil {
		t.Fatalf("LoadArtifacts() error = %v", err)
	}
	if index.Size() != len(docs) {
		t.Fatalf("index size %d != metadata rows %d", index.Size(), len(docs))
	}
	if got := docs[0].(corpus.Artifact).Name; got != "금동관" {
		t.Errorf("first row = %q, want 금동관", got)
	}
}

func TestBuildHistoryBatches(t *testing.T) {
	db, dir := testDB(t)
	indexPath := filepath.Join(dir, "history.index")

	chunks := make([]corpus.HistoryChunk, 70)
	for i := range chunks {
		chunks[i] = corpus.HistoryChunk{SourceFile: "report.pdf", TextChunk: fmt.Sprintf("조각 %d", i)}
	}

	embedder := &fakeEmbedder{}
	pipeline := NewPipeline(embedder)

	if err := pipeline.BuildHistory(context.Background(), db, chunks, indexPath); err != nil {
		t.Fatalf("BuildHistory() error = %v", err)
	}

	// 70 texts at a batch size of 32 means batches of 32, 32, 6.
	if embedder.calls != 3 {
		t.Errorf("embedder calls = %d, want 3", embedder.calls)
	}
	if len(embedder.batches) == 3 && embedder.batches[2] != 6 {
		t.Errorf("last batch = %d, want 6", embedder.batches[2])
	}

	docs, err := corpus.LoadHistoryChunks(context.Background(), db)
	if err != nil {
		t.Fatalf("LoadHistoryChunks() error = %v", err)
	}
	if len(docs) != 70 {
		t.Errorf("metadata rows = %d, want 70", len(docs))
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	db, dir := testDB(t)

	pipeline := NewPipeline(&fakeEmbedder{})
	err := pipeline.BuildArtifacts(context.Background(), db, nil, filepath.Join(dir, "empty.index"))
	if err == nil {
		t.Fatal("BuildArtifacts() expected error for empty corpus")
	}
}

func TestBuildEmbeddingFailure(t *testing.T) {
	db, dir := testDB(t)

	embedder := &fakeEmbedder{err: fmt.Errorf("service unavailable")}
	pipeline := NewPipeline(embedder)

	err := pipeline.BuildArtifacts(context.Background(), db,
		[]corpus.Artifact{{ID: "A1", RAGText: "설명"}},
		filepath.Join(dir, "artifacts.index"))
	if err == nil {
		t.Fatal("BuildArtifacts() expected error when embedding fails")
	}
}
