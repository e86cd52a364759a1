package assistant

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/embeddings"
	"github.com/vendorahq/vendora-ai/pkg/vector"
)

// Source names in a retrieval context.
const (
	SourceProducts     = "products"
	SourceTaxDocs      = "tax_docs"
	SourceContractDocs = "contract_docs"
	SourceGuides       = "guides"
	SourceSuppliers    = "suppliers"
)

const (
	productResultLimit   = 5
	knowledgeResultLimit = 3
)

// Context maps source names to scored hits, ordered by descending similarity
// within each source. It is built fresh per query and not mutated after the
// aggregator returns it.
type Context map[string][]vector.Hit

// Aggregator fans a query out to every source the intent names and fuses the
// results. A failed source degrades to an empty result list; it never fails
// sibling sources or the overall call.
type Aggregator struct {
	embedder            embeddings.Embedder
	index               vector.Index
	productsCollection  string
	knowledgeCollection string
	logger              *zap.Logger
}

// NewAggregator creates an Aggregator over the shared embedder and index.
func NewAggregator(embedder embeddings.Embedder, index vector.Index, productsCollection, knowledgeCollection string, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		embedder:            embedder,
		index:               index,
		productsCollection:  productsCollection,
		knowledgeCollection: knowledgeCollection,
		logger:              logger,
	}
}

type retrievalTask func(ctx context.Context, queryVec []float32) ([]vector.Hit, error)

// Retrieve embeds the query once and issues one concurrent index query per
// intent label. The returned error covers only the shared embedding step;
// per-source failures are logged and yield empty lists.
func (a *Aggregator) Retrieve(ctx context.Context, query string, intent QueryIntent) (Context, error) {
	queryVec, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	tasks := a.buildTasks(intent)
	if len(tasks) == 0 {
		return Context{}, nil
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make(Context, len(tasks))
	)

	for source, task := range tasks {
		wg.Add(1)
		go func(source string, task retrievalTask) {
			defer wg.Done()

			hits, err := task(ctx, queryVec)
			if err != nil {
				a.logger.Warn("retrieval failed for source",
					zap.String("source", source),
					zap.Error(err),
				)
				hits = []vector.Hit{}
			}
			if hits == nil {
				hits = []vector.Hit{}
			}

			mu.Lock()
			out[source] = hits
			mu.Unlock()
		}(source, task)
	}

	wg.Wait()
	return out, nil
}

// buildTasks maps intent labels to (source, filter translation) pairs.
func (a *Aggregator) buildTasks(intent QueryIntent) map[string]retrievalTask {
	tasks := make(map[string]retrievalTask)

	if intent.Has(IntentProductSearch) {
		filters := productFilters(intent.ProductFilters)
		tasks[SourceProducts] = func(ctx context.Context, vec []float32) ([]vector.Hit, error) {
			return a.index.Search(ctx, a.productsCollection, vec, productResultLimit, filters)
		}
	}

	if intent.Has(IntentTaxQuestion) {
		filters := knowledgeFilters(intent.KnowledgeFilters, "tax")
		tasks[SourceTaxDocs] = func(ctx context.Context, vec []float32) ([]vector.Hit, error) {
			return a.index.Search(ctx, a.knowledgeCollection, vec, knowledgeResultLimit, filters)
		}
	}

	if intent.Has(IntentContractHelp) {
		filters := knowledgeFilters(intent.KnowledgeFilters, "contract")
		tasks[SourceContractDocs] = func(ctx context.Context, vec []float32) ([]vector.Hit, error) {
			return a.index.Search(ctx, a.knowledgeCollection, vec, knowledgeResultLimit, filters)
		}
	}

	if intent.Has(IntentSupplierInfo) {
		// Supplier identities are derived from matching products.
		filters := productFilters(intent.ProductFilters)
		tasks[SourceSuppliers] = func(ctx context.Context, vec []float32) ([]vector.Hit, error) {
			return a.index.Search(ctx, a.productsCollection, vec, productResultLimit, filters)
		}
	}

	if intent.Has(IntentPlatformHelp) {
		tasks[SourceGuides] = func(ctx context.Context, vec []float32) ([]vector.Hit, error) {
			return a.index.Search(ctx, a.knowledgeCollection, vec, knowledgeResultLimit, vector.Filters{"doc_type": "guide"})
		}
	}

	return tasks
}

// productFilters translates classifier product filters into index filters.
// Only known fields pass through; everything else is dropped.
func productFilters(raw map[string]any) vector.Filters {
	filters := vector.Filters{}
	if category, ok := raw["category"].(string); ok && category != "" {
		filters["category"] = category
	}
	if supplierID, ok := filterInt(raw["supplier_id"]); ok {
		filters["supplier_id"] = supplierID
	}
	if len(filters) == 0 {
		return nil
	}
	return filters
}

// knowledgeFilters translates classifier knowledge filters and pins doc_type.
func knowledgeFilters(raw map[string]any, docType string) vector.Filters {
	filters := vector.Filters{"doc_type": docType}
	if region, ok := raw["region"].(string); ok && region != "" {
		filters["region"] = region
	}
	return filters
}

// filterInt accepts the numeric encodings a JSON classifier response or a
// typed caller can produce.
func filterInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}
