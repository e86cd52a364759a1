package testutils

import (
	"context"
	"fmt"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// Dims is the reported dimensionality and the length of the default
	// embedding returned for unmapped text.
	Dims uint

	// FailOn causes Embed to return an error when the input text matches
	FailOn string
}

func NewMockEmbedder(dims uint) *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Dims:       dims,
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	// Default embedding for any text: first component set, rest zero.
	emb := make([]float32, m.Dims)
	if m.Dims > 0 {
		emb[0] = 1
	}
	return emb, nil
}

func (m *MockEmbedder) Dimensions() uint {
	return m.Dims
}

func (m *MockEmbedder) Close() error {
	return nil
}
