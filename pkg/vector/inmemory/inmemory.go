// Package inmemory provides a process-local vector.Index backed by maps.
// It implements real cosine scoring and payload filtering so it can stand in
// for Qdrant in tests and in single-process deployments.
package inmemory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/vendorahq/vendora-ai/pkg/vector"
)

type point struct {
	vec     []float32
	payload map[string]any
}

// Index implements vector.Index using in-memory maps.
type Index struct {
	// mu guards collections for concurrent readers and writers.
	mu sync.RWMutex

	dimensions  uint
	collections map[string]map[vector.PointID]point
}

// NewIndex creates a new in-memory index with the given dimensionality.
func NewIndex(dimensions uint) (*Index, error) {
	if dimensions == 0 {
		return nil, fmt.Errorf("in-memory index dimensions cannot be 0, must be configured")
	}
	return &Index{
		dimensions:  dimensions,
		collections: make(map[string]map[vector.PointID]point),
	}, nil
}

// EnsureCollection creates the named collection if it does not exist.
func (i *Index) EnsureCollection(_ context.Context, name string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.collections[name]; !ok {
		i.collections[name] = make(map[vector.PointID]point)
	}
	return nil
}

// Upsert stores a point, replacing any prior vector and payload at id.
func (i *Index) Upsert(_ context.Context, collection string, id vector.PointID, vec []float32, payload map[string]any) error {
	if err := i.checkDimensions(vec); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	coll, ok := i.collections[collection]
	if !ok {
		coll = make(map[vector.PointID]point)
		i.collections[collection] = coll
	}

	stored := make([]float32, len(vec))
	copy(stored, vec)
	coll[id] = point{vec: stored, payload: copyPayload(payload)}
	return nil
}

// Delete removes a point by id. Deleting an absent point is a no-op.
func (i *Index) Delete(_ context.Context, collection string, id vector.PointID) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if coll, ok := i.collections[collection]; ok {
		delete(coll, id)
	}
	return nil
}

// FetchVector returns a copy of the stored vector for id, or ErrNotFound.
func (i *Index) FetchVector(_ context.Context, collection string, id vector.PointID) ([]float32, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	coll, ok := i.collections[collection]
	if !ok {
		return nil, vector.ErrNotFound
	}
	p, ok := coll[id]
	if !ok {
		return nil, vector.ErrNotFound
	}

	out := make([]float32, len(p.vec))
	copy(out, p.vec)
	return out, nil
}

// Search returns up to limit points ordered by descending cosine similarity.
// Ties break on the id string so results are deterministic.
func (i *Index) Search(_ context.Context, collection string, vec []float32, limit int, filters vector.Filters) ([]vector.Hit, error) {
	if err := i.checkDimensions(vec); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	coll := i.collections[collection]
	hits := make([]vector.Hit, 0, len(coll))
	for id, p := range coll {
		if !matchesFilters(p.payload, filters) {
			continue
		}
		hits = append(hits, vector.Hit{
			ID:      id,
			Score:   cosine(vec, p.vec),
			Payload: copyPayload(p.payload),
		})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ID.String() < hits[b].ID.String()
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Close releases no resources for the in-memory index.
func (i *Index) Close() error {
	return nil
}

func (i *Index) checkDimensions(vec []float32) error {
	if uint(len(vec)) != i.dimensions {
		return fmt.Errorf("%w: got %d, index configured for %d",
			vector.ErrDimensionMismatch, len(vec), i.dimensions)
	}
	return nil
}

// copyPayload isolates stored payloads from caller mutation in both
// directions, matching the copy semantics of stored vectors.
func copyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	return out
}

func matchesFilters(payload map[string]any, filters vector.Filters) bool {
	for key, want := range filters {
		got, ok := payload[key]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares payload values, treating all integer widths as int64.
func valuesEqual(a, b any) bool {
	if an, aok := asInt64(a); aok {
		bn, bok := asInt64(b)
		return bok && an == bn
	}
	return a == b
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

// cosine returns the cosine similarity of a and b. A zero-norm input yields
// a score of 0 for every candidate, which is what the neutral-vector
// default-recommendation path relies on.
func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ vector.Index = (*Index)(nil)
