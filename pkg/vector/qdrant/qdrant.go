// Package qdrant provides a Qdrant-backed vector.Index using the official
// gRPC client.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/vector"
)

// Index implements vector.Index against a Qdrant instance.
type Index struct {
	client     *qdrant.Client
	dimensions uint
	logger     *zap.Logger
}

// Config holds configuration for the Qdrant index.
type Config struct {
	// Host is the Qdrant host (e.g., "localhost").
	Host string

	// Port is the Qdrant gRPC port (typically 6334).
	Port int

	// Dimensions is the vector size for all collections.
	Dimensions uint
}

// NewIndex connects to Qdrant and returns an Index.
func NewIndex(c Config, logger *zap.Logger) (*Index, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant vector dimensions cannot be 0, must be configured")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: c.Host,
		Port: c.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", vector.ErrConnection, err)
	}

	logger.Info("connected to Qdrant",
		zap.String("host", c.Host),
		zap.Int("port", c.Port),
		zap.Uint("dimensions", c.Dimensions),
	)

	return &Index{
		client:     client,
		dimensions: c.Dimensions,
		logger:     logger,
	}, nil
}

// EnsureCollection creates the named collection with cosine distance if it
// does not already exist.
func (i *Index) EnsureCollection(ctx context.Context, name string) error {
	exists, err := i.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: checking collection %q: %v", vector.ErrConnection, name, err)
	}
	if exists {
		return nil
	}

	err = i.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(i.dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", name, err)
	}

	i.logger.Info("created collection", zap.String("collection", name))
	return nil
}

// Upsert stores a point, replacing any prior vector and payload at id.
func (i *Index) Upsert(ctx context.Context, collection string, id vector.PointID, vec []float32, payload map[string]any) error {
	if err := i.checkDimensions(vec); err != nil {
		return err
	}

	_, err := i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      toQdrantID(id),
				Vectors: qdrant.NewVectors(vec...),
				Payload: qdrant.NewValueMap(payload),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("upserting point %s in %q: %w", id, collection, err)
	}
	return nil
}

// Delete removes a point by id.
func (i *Index) Delete(ctx context.Context, collection string, id vector.PointID) error {
	_, err := i.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(toQdrantID(id)),
	})
	if err != nil {
		return fmt.Errorf("deleting point %s from %q: %w", id, collection, err)
	}
	return nil
}

// FetchVector returns the stored vector for id, or vector.ErrNotFound.
func (i *Index) FetchVector(ctx context.Context, collection string, id vector.PointID) ([]float32, error) {
	points, err := i.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: collection,
		Ids:            []*qdrant.PointId{toQdrantID(id)},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching point %s from %q: %w", id, collection, err)
	}
	if len(points) == 0 {
		return nil, vector.ErrNotFound
	}

	out := points[0].GetVectors().GetVector().GetData()
	if len(out) == 0 {
		return nil, vector.ErrNotFound
	}
	return out, nil
}

// Search returns up to limit points ordered by descending similarity.
func (i *Index) Search(ctx context.Context, collection string, vec []float32, limit int, filters vector.Filters) ([]Hit, error) {
	if err := i.checkDimensions(vec); err != nil {
		return nil, err
	}

	filter, err := toQdrantFilter(filters)
	if err != nil {
		return nil, err
	}

	points, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", collection, err)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, Hit{
			ID:      fromQdrantID(p.GetId()),
			Score:   p.GetScore(),
			Payload: fromQdrantPayload(p.GetPayload()),
		})
	}
	return hits, nil
}

// Close closes the underlying gRPC connection.
func (i *Index) Close() error {
	return i.client.Close()
}

func (i *Index) checkDimensions(vec []float32) error {
	if uint(len(vec)) != i.dimensions {
		return fmt.Errorf("%w: got %d, index configured for %d",
			vector.ErrDimensionMismatch, len(vec), i.dimensions)
	}
	return nil
}

// Hit aliases vector.Hit for readability in this package.
type Hit = vector.Hit

func toQdrantID(id vector.PointID) *qdrant.PointId {
	if id.IsUUID() {
		return qdrant.NewIDUUID(id.UUID())
	}
	return qdrant.NewIDNum(id.Num())
}

func fromQdrantID(id *qdrant.PointId) vector.PointID {
	if uuid := id.GetUuid(); uuid != "" {
		return vector.UUIDID(uuid)
	}
	return vector.NumID(id.GetNum())
}

func toQdrantFilter(filters vector.Filters) (*qdrant.Filter, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	must := make([]*qdrant.Condition, 0, len(filters))
	for key, value := range filters {
		switch v := value.(type) {
		case string:
			must = append(must, qdrant.NewMatch(key, v))
		case int:
			must = append(must, qdrant.NewMatchInt(key, int64(v)))
		case int64:
			must = append(must, qdrant.NewMatchInt(key, v))
		case uint64:
			must = append(must, qdrant.NewMatchInt(key, int64(v)))
		default:
			return nil, fmt.Errorf("unsupported filter value type %T for key %q", value, key)
		}
	}
	return &qdrant.Filter{Must: must}, nil
}

func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]any {
	if len(payload) == 0 {
		return nil
	}

	out := make(map[string]any, len(payload))
	for key, value := range payload {
		switch kind := value.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[key] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			out[key] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[key] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			out[key] = kind.BoolValue
		}
	}
	return out
}

var _ vector.Index = (*Index)(nil)
