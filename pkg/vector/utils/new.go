// Package vectorutils is the vector index utility package
package vectorutils

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/vector"
	"github.com/vendorahq/vendora-ai/pkg/vector/inmemory"
	"github.com/vendorahq/vendora-ai/pkg/vector/qdrant"
)

type NewIndexOpts struct {
	ProviderType string
	Host         string
	Port         int
	Dimensions   uint
	Timeout      time.Duration
	Logger       *zap.Logger
}

func NewIndex(o *NewIndexOpts) (vector.Index, error) {
	switch o.ProviderType {
	case "qdrant":
		index, err := qdrant.NewIndex(qdrant.Config{
			Host:       o.Host,
			Port:       o.Port,
			Dimensions: o.Dimensions,
		}, o.Logger)
		if err != nil {
			return nil, err
		}
		return vector.WithTimeout(index, o.Timeout), nil
	case "memory":
		return inmemory.NewIndex(o.Dimensions)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
