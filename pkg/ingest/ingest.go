// Package ingest writes catalog products and knowledge documents into the
// vector index, embedding their text on the way in.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/embeddings"
	"github.com/vendorahq/vendora-ai/pkg/vector"
)

const (
	defaultCategory = "uncategorized"
	defaultTitle    = "Untitled"
	defaultRegion   = "global"
	defaultSource   = "unknown"

	// Stored document text is a retrieval snippet, not an archive.
	maxPayloadTextLen = 1000
)

// Product is a catalog item to index. ProductID is the point id.
type Product struct {
	ProductID   uint64 `json:"product_id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SupplierID  uint64 `json:"supplier_id"`
	Category    string `json:"category"`
}

// Document is a knowledge base entry: tax guidance, contract templates,
// platform guides. It gets a generated UUID point id.
type Document struct {
	DocType string `json:"doc_type"`
	Title   string `json:"title"`
	Region  string `json:"region"`
	Source  string `json:"source"`
	Text    string `json:"text"`
}

// Config names the target collections.
type Config struct {
	ProductsCollection  string
	KnowledgeCollection string
}

// Service embeds and upserts catalog and knowledge content.
type Service struct {
	embedder embeddings.Embedder
	index    vector.Index
	cfg      Config
	logger   *zap.Logger
}

func NewService(embedder embeddings.Embedder, index vector.Index, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		embedder: embedder,
		index:    index,
		cfg:      cfg,
		logger:   logger,
	}
}

// IngestProduct embeds the product's name and description and upserts it
// into the catalog collection under its product id.
func (s *Service) IngestProduct(ctx context.Context, p Product) error {
	if p.ProductID == 0 {
		return fmt.Errorf("product %q: product_id is required", p.SKU)
	}

	vec, err := s.embedder.Embed(ctx, embeddingText(p))
	if err != nil {
		return fmt.Errorf("embedding product %d: %w", p.ProductID, err)
	}

	category := p.Category
	if category == "" {
		category = defaultCategory
	}
	payload := map[string]any{
		"sku":         p.SKU,
		"product_id":  int64(p.ProductID),
		"name":        p.Name,
		"description": p.Description,
		"supplier_id": int64(p.SupplierID),
		"category":    category,
	}

	if err := s.index.Upsert(ctx, s.cfg.ProductsCollection, vector.NumID(p.ProductID), vec, payload); err != nil {
		return fmt.Errorf("indexing product %d: %w", p.ProductID, err)
	}

	s.logger.Debug("ingested product", zap.Uint64("product_id", p.ProductID), zap.String("sku", p.SKU))
	return nil
}

// IngestProducts indexes a batch, skipping and logging items that fail
// rather than aborting the batch. It returns the number ingested.
func (s *Service) IngestProducts(ctx context.Context, products []Product) (int, error) {
	ingested := 0
	for _, p := range products {
		if err := s.IngestProduct(ctx, p); err != nil {
			s.logger.Warn("skipping product in bulk ingest",
				zap.Uint64("product_id", p.ProductID),
				zap.String("sku", p.SKU),
				zap.Error(err),
			)
			continue
		}
		ingested++
	}
	return ingested, nil
}

// IngestDocument embeds the document text and upserts it into the knowledge
// collection under a fresh UUID, which is returned.
func (s *Service) IngestDocument(ctx context.Context, d Document) (string, error) {
	vec, err := s.embedder.Embed(ctx, d.Text)
	if err != nil {
		return "", fmt.Errorf("embedding document %q: %w", d.Title, err)
	}

	title := d.Title
	if title == "" {
		title = defaultTitle
	}
	region := d.Region
	if region == "" {
		region = defaultRegion
	}
	source := d.Source
	if source == "" {
		source = defaultSource
	}

	text := d.Text
	if len(text) > maxPayloadTextLen {
		text = text[:maxPayloadTextLen]
	}

	id := uuid.NewString()
	payload := map[string]any{
		"doc_type": d.DocType,
		"title":    title,
		"region":   region,
		"source":   source,
		"text":     text,
	}

	if err := s.index.Upsert(ctx, s.cfg.KnowledgeCollection, vector.UUIDID(id), vec, payload); err != nil {
		return "", fmt.Errorf("indexing document %q: %w", title, err)
	}

	s.logger.Debug("ingested document", zap.String("id", id), zap.String("doc_type", d.DocType))
	return id, nil
}

// DeleteProduct removes a product from the catalog collection.
func (s *Service) DeleteProduct(ctx context.Context, productID uint64) error {
	if err := s.index.Delete(ctx, s.cfg.ProductsCollection, vector.NumID(productID)); err != nil {
		return fmt.Errorf("deleting product %d: %w", productID, err)
	}
	s.logger.Debug("deleted product", zap.Uint64("product_id", productID))
	return nil
}

func embeddingText(p Product) string {
	name := strings.TrimSpace(p.Name)
	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		return name
	}
	return name + ". " + desc
}
