// Package seedcmder provides the seed command loading a catalog CSV into the
// vector index.
package seedcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/cliui"
	"github.com/vendorahq/vendora-ai/pkg/config"
	embeddingutils "github.com/vendorahq/vendora-ai/pkg/embeddings/utils"
	"github.com/vendorahq/vendora-ai/pkg/ingest"
	"github.com/vendorahq/vendora-ai/pkg/logger"
	vectorutils "github.com/vendorahq/vendora-ai/pkg/vector/utils"
)

type seedCommander struct {
	debug     bool
	configDir string
	logger    *zap.Logger
}

const seedLongDesc string = `Load a product catalog CSV into the vector index.

The CSV header names the columns; product_id, sku, and name are required,
description, supplier_id, and category are optional. Each product is
embedded and upserted into the configured products collection.`

const seedShortDesc string = "Load a product catalog CSV into the vector index"

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed <catalog.csv>",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, err = cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			return cmder.run(args[0])
		},
	}

	return cmd
}

func (c *seedCommander) run(path string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	products, err := ingest.ReadProductsCSV(f)
	if err != nil {
		return fmt.Errorf("parsing catalog: %w", err)
	}
	if len(products) == 0 {
		return fmt.Errorf("catalog %s contains no products", path)
	}

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		Dimensions:   cfg.Embedding.Dimensions,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	index, err := vectorutils.NewIndex(&vectorutils.NewIndexOpts{
		ProviderType: cfg.VectorStore.Provider,
		Host:         cfg.VectorStore.Host,
		Port:         cfg.VectorStore.Port,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector index: %w", err)
	}
	defer index.Close()

	ctx := context.Background()
	if err := index.EnsureCollection(ctx, cfg.Collections.Products); err != nil {
		return fmt.Errorf("ensuring collection %s: %w", cfg.Collections.Products, err)
	}

	ingester := ingest.NewService(embedder, index, ingest.Config{
		ProductsCollection:  cfg.Collections.Products,
		KnowledgeCollection: cfg.Collections.Knowledge,
	}, c.logger)

	var ingested int
	err = cliui.Step(os.Stdout, fmt.Sprintf("Seeding %d products from %s", len(products), path), func() error {
		var stepErr error
		ingested, stepErr = ingester.IngestProducts(ctx, products)
		return stepErr
	})
	if err != nil {
		return err
	}

	c.logger.Info("seeded catalog",
		zap.String("path", path),
		zap.Int("ingested", ingested),
		zap.Int("total", len(products)),
	)
	return nil
}
