package vector

import "errors"

var (
	// ErrNotFound is returned when a point is not found in the index.
	ErrNotFound = errors.New("point not found")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the index dimensionality. This is always a hard failure.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrConnection is returned when the index connection fails.
	ErrConnection = errors.New("vector index connection failed")
)
