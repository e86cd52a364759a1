package testutils

import (
	"context"
	"errors"

	"github.com/vendorahq/vendora-ai/pkg/vector"
)

// ErrMockIndex is returned by FlakyIndex for operations flagged to fail.
var ErrMockIndex = errors.New("mock index failure")

// FlakyIndex wraps a vector.Index and fails selected operations, for
// exercising degraded paths. FailSearchIn fails searches only in the named
// collections, leaving siblings healthy.
type FlakyIndex struct {
	vector.Index

	FailSearch   bool
	FailSearchIn map[string]bool
	FailFetch    bool
	FailUpsert   bool
}

func (f *FlakyIndex) Search(ctx context.Context, collection string, queryVec []float32, limit int, filters vector.Filters) ([]vector.Hit, error) {
	if f.FailSearch || f.FailSearchIn[collection] {
		return nil, ErrMockIndex
	}
	return f.Index.Search(ctx, collection, queryVec, limit, filters)
}

func (f *FlakyIndex) FetchVector(ctx context.Context, collection string, id vector.PointID) ([]float32, error) {
	if f.FailFetch {
		return nil, ErrMockIndex
	}
	return f.Index.FetchVector(ctx, collection, id)
}

func (f *FlakyIndex) Upsert(ctx context.Context, collection string, id vector.PointID, vec []float32, payload map[string]any) error {
	if f.FailUpsert {
		return ErrMockIndex
	}
	return f.Index.Upsert(ctx, collection, id, vec, payload)
}
