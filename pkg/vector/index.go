// Package vector provides interfaces and implementations for vector storage
// and similarity search over the product catalog, knowledge base, and user
// preference collections.
package vector

import (
	"context"
	"fmt"
)

// PointID identifies a stored point. Products and users use numeric ids;
// knowledge documents use generated UUID keys. The zero value is invalid.
type PointID struct {
	num  uint64
	uuid string
}

// NumID returns a numeric point id.
func NumID(n uint64) PointID {
	return PointID{num: n}
}

// UUIDID returns a UUID-keyed point id.
func UUIDID(s string) PointID {
	return PointID{uuid: s}
}

// IsUUID reports whether the id is UUID-keyed.
func (id PointID) IsUUID() bool {
	return id.uuid != ""
}

// Num returns the numeric id. Only meaningful when IsUUID is false.
func (id PointID) Num() uint64 {
	return id.num
}

// UUID returns the UUID key. Only meaningful when IsUUID is true.
func (id PointID) UUID() string {
	return id.uuid
}

func (id PointID) String() string {
	if id.IsUUID() {
		return id.uuid
	}
	return fmt.Sprintf("%d", id.num)
}

// Hit is a single search result: a stored point with its similarity score
// (higher = more similar) and payload metadata.
type Hit struct {
	ID      PointID
	Score   float32
	Payload map[string]any
}

// Filters are equality matches against keyword or integer payload fields.
// Values must be strings or integers.
type Filters map[string]any

// Index handles storage and retrieval of embedding vectors across named
// collections. All vectors within an index share one dimensionality; an
// Upsert or Search with a differently-sized vector fails with
// ErrDimensionMismatch.
type Index interface {
	// EnsureCollection creates the named collection if it does not exist.
	EnsureCollection(ctx context.Context, name string) error

	// Upsert stores a point, replacing any prior vector and payload at id.
	Upsert(ctx context.Context, collection string, id PointID, vec []float32, payload map[string]any) error

	// Delete removes a point by id. Deleting an absent point is not an error.
	Delete(ctx context.Context, collection string, id PointID) error

	// FetchVector returns the stored vector for id, or ErrNotFound.
	FetchVector(ctx context.Context, collection string, id PointID) ([]float32, error)

	// Search returns up to limit points ordered by descending similarity to
	// vec, optionally restricted by equality filters.
	Search(ctx context.Context, collection string, vec []float32, limit int, filters Filters) ([]Hit, error)

	// Close releases any resources held by the index.
	Close() error
}
