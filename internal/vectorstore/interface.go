// Package vectorstore provides k-nearest-neighbor lookup over embedded documents.
package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index.go -package=mocks docent-ai/internal/vectorstore Index

import "context"

// Hit is a single nearest-neighbor result. Row is the positional index of the
// matched document in the store; rows and metadata are aligned 1:1 at build
// time and never change afterwards.
type Hit struct {
	Row      int
	Distance float32
}

// Index defines similarity search over a fixed set of embedded documents.
// Results are ordered by ascending distance (nearest first) and contain at
// most min(k, Size()) hits.
type Index interface {
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
	Size() int
}
