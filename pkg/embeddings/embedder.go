// Package embeddings maps text to fixed-length numeric vectors.
//
// One Embedder instance is constructed at startup and shared by reference
// across all components; implementations must be safe for concurrent use.
package embeddings

import (
	"context"
	"errors"
)

// ErrEmptyText is returned when the input text is empty or whitespace only.
// Empty input is a hard failure, never silently embedded.
var ErrEmptyText = errors.New("cannot embed empty text")

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the fixed dimensionality of produced vectors.
	Dimensions() uint

	// Close releases any resources held by the embedder.
	Close() error
}
