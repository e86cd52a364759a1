// Package assistant implements the agentic retrieval pipeline: intent
// classification, parallel multi-source retrieval, context fusion, and
// response generation with graceful degradation when no language model is
// available.
package assistant

import (
	"context"

	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/embeddings"
	"github.com/vendorahq/vendora-ai/pkg/llm"
	"github.com/vendorahq/vendora-ai/pkg/vector"
)

// Config holds service wiring that varies by deployment.
type Config struct {
	ProductsCollection  string
	KnowledgeCollection string
	HistoryLimit        int
}

// Service ties the router, aggregator, and generator into the chat pipeline.
type Service struct {
	router     *Router
	aggregator *Aggregator
	generator  *Generator
	logger     *zap.Logger
}

// NewService wires the pipeline over the shared embedder and index.
// routerCall and generateCall may be nil; the service then runs entirely on
// its deterministic paths.
func NewService(embedder embeddings.Embedder, index vector.Index, routerCall, generateCall llm.CallFunc, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		router:     NewRouter(routerCall, logger),
		aggregator: NewAggregator(embedder, index, cfg.ProductsCollection, cfg.KnowledgeCollection, logger),
		generator:  NewGenerator(generateCall, cfg.HistoryLimit, logger),
		logger:     logger,
	}
}

// Source is a reference used to ground the answer.
type Source struct {
	Type       string `json:"type"`
	ID         uint64 `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	SKU        string `json:"sku,omitempty"`
	Title      string `json:"title,omitempty"`
	Origin     string `json:"source,omitempty"`
	Region     string `json:"region,omitempty"`
	SupplierID int64  `json:"supplier_id,omitempty"`
}

// Answer is the final result of the chat pipeline.
type Answer struct {
	Response   string   `json:"response"`
	Sources    []Source `json:"sources"`
	Intents    []string `json:"intents"`
	Confidence float64  `json:"confidence"`
}

// ClassifyQuery classifies a query without retrieving anything.
func (s *Service) ClassifyQuery(ctx context.Context, query string) QueryIntent {
	return s.router.Classify(ctx, query)
}

// AnswerQuery runs the full pipeline: classify, retrieve, generate. Retrieval
// degradation never fails the call; an empty context still yields an answer
// through the deterministic composer.
func (s *Service) AnswerQuery(ctx context.Context, query string, history []Message, profile *UserContext) *Answer {
	intent := s.router.Classify(ctx, query)
	s.logger.Info("classified query",
		zap.Strings("intents", intent.Intents),
		zap.Float64("confidence", intent.Confidence),
	)

	rc, err := s.aggregator.Retrieve(ctx, query, intent)
	if err != nil {
		s.logger.Warn("retrieval unavailable, answering without context", zap.Error(err))
		rc = Context{}
	}

	response := s.generator.Generate(ctx, query, rc, history, profile, intent)

	return &Answer{
		Response:   response,
		Sources:    extractSources(rc),
		Intents:    intent.Intents,
		Confidence: intent.Confidence,
	}
}

// extractSources lists the references behind each context section: products,
// then documents, then deduplicated supplier identities.
func extractSources(rc Context) []Source {
	var sources []Source

	for _, p := range rc[SourceProducts] {
		id, _ := payloadInt(p.Payload, "product_id")
		sources = append(sources, Source{
			Type: "product",
			ID:   uint64(id),
			Name: payloadString(p.Payload, "name"),
			SKU:  payloadString(p.Payload, "sku"),
		})
	}

	for _, source := range []string{SourceTaxDocs, SourceContractDocs, SourceGuides} {
		for _, d := range rc[source] {
			docType := payloadString(d.Payload, "doc_type")
			if docType == "" {
				docType = "document"
			}
			sources = append(sources, Source{
				Type:   docType,
				Title:  payloadString(d.Payload, "title"),
				Origin: payloadString(d.Payload, "source"),
				Region: payloadString(d.Payload, "region"),
			})
		}
	}

	seen := make(map[int64]bool)
	for _, p := range rc[SourceSuppliers] {
		sid, ok := payloadInt(p.Payload, "supplier_id")
		if !ok || seen[sid] {
			continue
		}
		sources = append(sources, Source{
			Type:       "supplier",
			SupplierID: sid,
		})
		seen[sid] = true
	}

	return sources
}
