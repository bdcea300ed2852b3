package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"docent-ai/internal/contextutil"
)

// rowPayloadKey carries the positional row index in each point's payload so
// hits can be mapped back to the aligned metadata table.
const rowPayloadKey = "row"

// QdrantIndex implements Index backed by a Qdrant collection. The collection
// must be created with Euclid distance so rankings agree with FlatIndex.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	size       int
}

// NewQdrantClient creates a Qdrant client from an HTTP URL.
// urlStr should be in the format "http://host:port" (e.g. "http://localhost:6333");
// the gRPC port is derived from the HTTP port.
func NewQdrantClient(urlStr string) (*qdrant.Client, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// gRPC port is conventionally the HTTP port + 1.
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	return client, nil
}

// OpenQdrantIndex attaches to an existing collection, validating that it exists
// and that its vector size matches. The point count is fixed at open time; the
// serving process never mutates the collection.
func OpenQdrantIndex(ctx context.Context, client *qdrant.Client, collection string, vectorSize int) (*QdrantIndex, error) {
	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	if !exists {
		return nil, fmt.Errorf("collection %s does not exist; run cmd/buildindex first", collection)
	}

	info, err := client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info for %s: %w", collection, err)
	}

	var actualSize uint64
	if config := info.Config; config != nil && config.Params != nil {
		if vectorsConfig := config.Params.GetVectorsConfig(); vectorsConfig != nil {
			if params := vectorsConfig.GetParams(); params != nil {
				actualSize = params.Size
			}
		}
	}
	if int(actualSize) != vectorSize {
		return nil, fmt.Errorf("collection %s vector size mismatch: expected %d, got %d", collection, vectorSize, actualSize)
	}

	var count int
	if info.PointsCount != nil {
		count = int(*info.PointsCount)
	}

	return &QdrantIndex{
		client:     client,
		collection: collection,
		size:       count,
	}, nil
}

// EnsureQdrantCollection creates the collection with Euclid distance if it does
// not exist yet. Used by the index build job.
func EnsureQdrantCollection(ctx context.Context, client *qdrant.Client, collection string, vectorSize int) error {
	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}
	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Euclid,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// UpsertRows writes vectors into the collection, carrying each vector's
// positional row index in the payload.
func UpsertRows(ctx context.Context, client *qdrant.Client, collection string, vectors [][]float32) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(vectors) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(vectors))
	for i, vec := range vectors {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(i)),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]any{rowPayloadKey: i}),
		})
	}

	_, err := client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(vectors), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(vectors))
	return nil
}

// Search performs a nearest-neighbor query. With a Euclid collection Qdrant
// returns distances sorted ascending, which matches the Index contract.
func (x *QdrantIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, nil
	}

	limit := uint64(k)
	scoredPoints, err := x.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: x.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", x.collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	hits := make([]Hit, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		row := -1
		if point.Payload != nil {
			if v, ok := point.Payload[rowPayloadKey]; ok {
				row = int(v.GetIntegerValue())
			}
		}
		if row < 0 {
			logger.WarnContext(ctx, "point missing row payload, skipping", "collection", x.collection)
			continue
		}
		hits = append(hits, Hit{Row: row, Distance: point.Score})
	}

	return hits, nil
}

// Size returns the point count observed when the index was opened.
func (x *QdrantIndex) Size() int {
	return x.size
}
