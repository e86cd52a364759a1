package vector

import (
	"context"
	"time"
)

// WithTimeout wraps index so every call carries a deadline. Remote backends
// otherwise inherit whatever context the transport handler passes, which may
// never expire; a bounded call lets an unresponsive index degrade instead of
// hanging the request. A non-positive timeout returns index unchanged.
func WithTimeout(index Index, timeout time.Duration) Index {
	if timeout <= 0 {
		return index
	}
	return &timeoutIndex{index: index, timeout: timeout}
}

type timeoutIndex struct {
	index   Index
	timeout time.Duration
}

func (t *timeoutIndex) EnsureCollection(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.index.EnsureCollection(ctx, name)
}

func (t *timeoutIndex) Upsert(ctx context.Context, collection string, id PointID, vec []float32, payload map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.index.Upsert(ctx, collection, id, vec, payload)
}

func (t *timeoutIndex) Delete(ctx context.Context, collection string, id PointID) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.index.Delete(ctx, collection, id)
}

func (t *timeoutIndex) FetchVector(ctx context.Context, collection string, id PointID) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.index.FetchVector(ctx, collection, id)
}

func (t *timeoutIndex) Search(ctx context.Context, collection string, vec []float32, limit int, filters Filters) ([]Hit, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.index.Search(ctx, collection, vec, limit, filters)
}

func (t *timeoutIndex) Close() error {
	return t.index.Close()
}

var _ Index = (*timeoutIndex)(nil)
