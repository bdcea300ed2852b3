package corpus

import (
	"context"
	"fmt"

	"docent-ai/internal/vectorstore"
)

// Retrieved is one ranked retrieval result: a corpus document plus its
// distance from the query vector (lower is nearer).
type Retrieved struct {
	Doc      Document
	Distance float32
}

// Store binds a vector index to its aligned metadata rows. Both are loaded
// once at startup and read-only afterwards, so concurrent requests share a
// Store without locking.
type Store struct {
	name  string
	index vectorstore.Index
	docs  []Document
}

// NewStore validates the positional alignment between index and metadata.
// A row-count mismatch means the persisted artifacts are out of sync and is a
// fatal configuration error.
func NewStore(name string, index vectorstore.Index, docs []Document) (*Store, error) {
	if index.Size() != len(docs) {
		return nil, fmt.Errorf("store %s: index has %d vectors but metadata has %d rows", name, index.Size(), len(docs))
	}
	return &Store{name: name, index: index, docs: docs}, nil
}

// Name returns the store's label, used in logs and health checks.
func (s *Store) Name() string { return s.name }

// Len returns the number of documents in the store.
func (s *Store) Len() int { return len(s.docs) }

// Search runs a k-nearest-neighbor lookup and maps each hit back to its
// document. Results keep the index's ascending-distance order.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]Retrieved, error) {
	hits, err := s.index.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", s.name, err)
	}

	results := make([]Retrieved, 0, len(hits))
	for _, hit := range hits {
		if hit.Row < 0 || hit.Row >= len(s.docs) {
			return nil, fmt.Errorf("store %s: hit row %d out of range [0,%d)", s.name, hit.Row, len(s.docs))
		}
		results = append(results, Retrieved{Doc: s.docs[hit.Row], Distance: hit.Distance})
	}
	return results, nil
}
