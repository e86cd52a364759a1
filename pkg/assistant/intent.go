package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/llm"
)

// errNoValidIntents is returned when the model's output contains no label
// from the intent vocabulary.
var errNoValidIntents = errors.New("no valid intents in model response")

// Intent labels. A query may carry several at once.
const (
	IntentProductSearch = "product_search"
	IntentTaxQuestion   = "tax_question"
	IntentContractHelp  = "contract_help"
	IntentSupplierInfo  = "supplier_info"
	IntentPlatformHelp  = "platform_help"
	IntentGeneral       = "general"
)

var intentVocabulary = map[string]bool{
	IntentProductSearch: true,
	IntentTaxQuestion:   true,
	IntentContractHelp:  true,
	IntentSupplierInfo:  true,
	IntentPlatformHelp:  true,
	IntentGeneral:       true,
}

const (
	// keywordConfidence is reported by the keyword strategy. It is fixed and
	// lower than the model-backed default, signaling degraded classification
	// quality to downstream consumers.
	keywordConfidence = 0.6

	// modelConfidenceDefault applies when the model omits a confidence value.
	modelConfidenceDefault = 0.8
)

// QueryIntent is the structured classification of a user query. It is built
// fresh per query and never persisted.
type QueryIntent struct {
	Intents              []string       `json:"intents"`
	ProductFilters       map[string]any `json:"product_filters,omitempty"`
	KnowledgeFilters     map[string]any `json:"knowledge_filters,omitempty"`
	RequiresRealtimeData bool           `json:"requires_realtime_data"`
	Confidence           float64        `json:"confidence"`
}

// Has reports whether the intent set contains label.
func (q QueryIntent) Has(label string) bool {
	for _, intent := range q.Intents {
		if intent == label {
			return true
		}
	}
	return false
}

const routerPrompt = `You are a query router for Vendora, a B2B e-commerce marketplace.
Analyze the user's query and determine what information sources are needed.

Available intents:
- product_search: User wants to find, buy, or learn about products
- tax_question: Questions about taxes, duties, import/export regulations
- contract_help: Questions about contracts, agreements, legal templates
- supplier_info: Questions about suppliers, vendors, seller information
- platform_help: Questions about how to use the platform
- general: General conversation or unclear intent

Instructions:
1. A query can have MULTIPLE intents (e.g., "Find laptops and what's the import tax?" = product_search + tax_question)
2. Extract any filters mentioned (category, region, supplier, etc.)
3. Set requires_realtime_data=true if the query needs live data (inventory, order status, account info)

Respond ONLY with valid JSON in this exact format:
{
  "intents": ["intent1", "intent2"],
  "product_filters": {"category": "value"} or null,
  "knowledge_filters": {"doc_type": "tax", "region": "VN"} or null,
  "requires_realtime_data": false,
  "confidence": 0.95
}

User query: `

// Router classifies queries into intents. With a configured JSON-mode
// generation call it asks the model and validates the output; without one,
// or whenever the model path fails, it falls back to keyword matching.
// Classification is never a hard failure.
type Router struct {
	classify llm.CallFunc
	logger   *zap.Logger
}

// NewRouter creates a Router. classify may be nil to force the keyword path.
func NewRouter(classify llm.CallFunc, logger *zap.Logger) *Router {
	return &Router{classify: classify, logger: logger}
}

// Classify returns the intent set for a query.
func (r *Router) Classify(ctx context.Context, query string) QueryIntent {
	if r.classify == nil {
		return keywordClassify(query)
	}

	response, err := r.classify(ctx, routerPrompt+query)
	if err != nil {
		r.logger.Warn("intent model call failed, using keyword fallback", zap.Error(err))
		return keywordClassify(query)
	}

	intent, err := parseIntentResponse(response)
	if err != nil {
		r.logger.Warn("intent model returned unusable output, using keyword fallback", zap.Error(err))
		return keywordClassify(query)
	}

	r.logger.Debug("model classified query",
		zap.Strings("intents", intent.Intents),
		zap.Float64("confidence", intent.Confidence),
	)
	return intent
}

// intentResponse is the untyped shape of the model's JSON output, validated
// before conversion into a QueryIntent.
type intentResponse struct {
	Intents              []string       `json:"intents"`
	ProductFilters       map[string]any `json:"product_filters"`
	KnowledgeFilters     map[string]any `json:"knowledge_filters"`
	RequiresRealtimeData bool           `json:"requires_realtime_data"`
	Confidence           *float64       `json:"confidence"`
}

// parseIntentResponse validates the model output against the fixed intent
// vocabulary. Unknown labels are dropped; an empty validated set is an error
// so the caller can fall back rather than attempt partial repair.
func parseIntentResponse(response string) (QueryIntent, error) {
	jsonStr := response
	if idx := strings.Index(response, "{"); idx >= 0 {
		endIdx := strings.LastIndex(response, "}")
		if endIdx > idx {
			jsonStr = response[idx : endIdx+1]
		}
	}

	var parsed intentResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return QueryIntent{}, err
	}

	intents := make([]string, 0, len(parsed.Intents))
	for _, label := range parsed.Intents {
		if intentVocabulary[label] {
			intents = append(intents, label)
		}
	}
	if len(intents) == 0 {
		return QueryIntent{}, errNoValidIntents
	}

	confidence := modelConfidenceDefault
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
	}

	return QueryIntent{
		Intents:              intents,
		ProductFilters:       parsed.ProductFilters,
		KnowledgeFilters:     parsed.KnowledgeFilters,
		RequiresRealtimeData: parsed.RequiresRealtimeData,
		Confidence:           confidence,
	}, nil
}

var intentKeywords = []struct {
	label    string
	keywords []string
}{
	{IntentProductSearch, []string{"product", "buy", "purchase", "price", "find", "search", "looking for"}},
	{IntentTaxQuestion, []string{"tax", "duty", "import", "export", "regulation"}},
	{IntentContractHelp, []string{"contract", "agreement", "legal", "template"}},
	{IntentSupplierInfo, []string{"supplier", "vendor", "seller", "who sells"}},
	{IntentPlatformHelp, []string{"how to", "how do i", "help me", "guide"}},
}

// keywordClassify scans the lower-cased query against fixed keyword sets.
// A query may match several sets; no match defaults to general.
func keywordClassify(query string) QueryIntent {
	lower := strings.ToLower(query)

	var intents []string
	for _, set := range intentKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				intents = append(intents, set.label)
				break
			}
		}
	}

	if len(intents) == 0 {
		intents = []string{IntentGeneral}
	}

	return QueryIntent{Intents: intents, Confidence: keywordConfidence}
}
