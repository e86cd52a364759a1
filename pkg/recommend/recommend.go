// Package recommend implements the preference vector engine: decay-weighted
// online updates of per-user embedding vectors from interaction events, and
// the personalized, item-similarity, and cold-start ranking policies built
// on them.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/eventstream"
	"github.com/vendorahq/vendora-ai/pkg/vector"
)

// Action is the kind of user interaction being tracked.
type Action string

const (
	ActionView      Action = "VIEW"
	ActionAddToCart Action = "ADD_TO_CART"
	ActionOrder     Action = "ORDER"
)

// Interaction is a single tracked user event. At least one of ProductID,
// VariantID, or SKU must identify the item; zero values mean absent.
type Interaction struct {
	UserID    uint64
	ProductID uint64
	VariantID uint64
	SKU       string
	Action    Action
}

// Recommendation is a ranked product reference.
type Recommendation struct {
	ProductID uint64  `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Score     float32 `json:"score"`
}

// Config holds the engine's collections and tunables. The decay, weights,
// and scale are configuration rather than constants; only their ordering
// (order > cart > view) carries meaning.
type Config struct {
	ProductsCollection string
	UsersCollection    string
	Dimensions         uint

	Decay        float64
	ViewWeight   float64
	CartWeight   float64
	OrderWeight  float64
	UpdateScale  float64
	NeutralScore float64
}

// Engine maintains user preference vectors and serves rankings.
//
// TrackInteraction is the only stateful mutation in the system. Updates for
// the same user are serialized by a per-user mutex; concurrent events for
// the same user are last-write-wins, not serializable, which is an accepted
// consistency model for advisory preference signals.
type Engine struct {
	index     vector.Index
	publisher eventstream.Publisher
	cfg       Config
	locks     *userLocks
	logger    *zap.Logger
}

// NewEngine creates an Engine. publisher may be nil to disable event
// emission.
func NewEngine(index vector.Index, publisher eventstream.Publisher, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		index:     index,
		publisher: publisher,
		cfg:       cfg,
		locks:     newUserLocks(),
		logger:    logger,
	}
}

// TrackInteraction folds one interaction into the user's preference vector.
//
// Item resolution is best-effort: if no vector can be resolved (unknown id,
// unknown SKU, or a resolver failure) the event is dropped with a warning
// and nil is returned. A failed persist of the updated vector is a hard
// error.
func (e *Engine) TrackInteraction(ctx context.Context, in Interaction) error {
	itemVec, productID := e.resolveItemVector(ctx, in)
	if itemVec == nil {
		e.logger.Warn("could not resolve item vector for tracking, dropping event",
			zap.Uint64("user_id", in.UserID),
			zap.Uint64("product_id", in.ProductID),
			zap.String("sku", in.SKU),
		)
		return nil
	}

	// Critical section per user: read-modify-write of the preference vector.
	unlock := e.locks.lock(in.UserID)
	defer unlock()

	userID := vector.NumID(in.UserID)
	userVec, err := e.index.FetchVector(ctx, e.cfg.UsersCollection, userID)
	coldStart := false
	switch {
	case errors.Is(err, vector.ErrNotFound):
		// First interaction defines the starting point.
		userVec = itemVec
		coldStart = true
	case err != nil:
		return fmt.Errorf("reading preference vector for user %d: %w", in.UserID, err)
	default:
		userVec, err = blend(userVec, itemVec, e.cfg.Decay, e.updateFactor(in.Action))
		if err != nil {
			return fmt.Errorf("updating preference vector for user %d: %w", in.UserID, err)
		}
	}

	payload := map[string]any{
		"user_id":      int64(in.UserID),
		"last_updated": time.Now().UTC().Format(time.RFC3339),
	}
	if err := e.index.Upsert(ctx, e.cfg.UsersCollection, userID, userVec, payload); err != nil {
		return fmt.Errorf("persisting preference vector for user %d: %w", in.UserID, err)
	}

	e.logger.Info("tracked interaction",
		zap.Uint64("user_id", in.UserID),
		zap.String("action", string(in.Action)),
		zap.Bool("cold_start", coldStart),
	)

	e.publish(ctx, in, productID, coldStart)
	return nil
}

// resolveItemVector resolves the interacted item's vector: by product id
// first, then by SKU lookup. Each step has an explicit absent outcome;
// resolver failures yield absent, never an error.
func (e *Engine) resolveItemVector(ctx context.Context, in Interaction) ([]float32, uint64) {
	productID := in.ProductID

	if productID != 0 {
		vec, err := e.index.FetchVector(ctx, e.cfg.ProductsCollection, vector.NumID(productID))
		if err == nil {
			return vec, productID
		}
		if !errors.Is(err, vector.ErrNotFound) {
			e.logger.Warn("item vector fetch failed", zap.Uint64("product_id", productID), zap.Error(err))
			return nil, 0
		}
	}

	if in.SKU == "" {
		return nil, 0
	}

	// Second step: resolve the product id through its SKU. The query vector
	// is neutral; the SKU filter does the selection.
	hits, err := e.index.Search(ctx, e.cfg.ProductsCollection, e.neutralVector(), 1, vector.Filters{"sku": in.SKU})
	if err != nil {
		e.logger.Warn("sku lookup failed", zap.String("sku", in.SKU), zap.Error(err))
		return nil, 0
	}
	if len(hits) == 0 {
		return nil, 0
	}

	productID = hits[0].ID.Num()
	vec, err := e.index.FetchVector(ctx, e.cfg.ProductsCollection, hits[0].ID)
	if err != nil {
		if !errors.Is(err, vector.ErrNotFound) {
			e.logger.Warn("item vector fetch failed after sku lookup", zap.String("sku", in.SKU), zap.Error(err))
		}
		return nil, 0
	}
	return vec, productID
}

func (e *Engine) updateFactor(action Action) float64 {
	weight := 1.0
	switch action {
	case ActionView:
		weight = e.cfg.ViewWeight
	case ActionAddToCart:
		weight = e.cfg.CartWeight
	case ActionOrder:
		weight = e.cfg.OrderWeight
	}
	return (1 - e.cfg.Decay) * weight * e.cfg.UpdateScale
}

func (e *Engine) publish(ctx context.Context, in Interaction, productID uint64, coldStart bool) {
	if e.publisher == nil {
		return
	}

	event := &eventstream.InteractionTrackedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeInteractionTracked,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		UserID:        in.UserID,
		ProductID:     productID,
		SKU:           in.SKU,
		Action:        string(in.Action),
		ColdStart:     coldStart,
	}
	if err := e.publisher.PublishInteraction(ctx, event); err != nil {
		e.logger.Warn("interaction event publish failed", zap.Error(err))
	}
}

// RecommendForUser returns up to limit products ranked by similarity to the
// user's preference vector. Users without a vector get the cold-start
// default ranking.
func (e *Engine) RecommendForUser(ctx context.Context, userID uint64, limit int) ([]Recommendation, error) {
	userVec, err := e.index.FetchVector(ctx, e.cfg.UsersCollection, vector.NumID(userID))
	if errors.Is(err, vector.ErrNotFound) {
		e.logger.Debug("no preference vector, using default recommendations", zap.Uint64("user_id", userID))
		return e.DefaultRecommendations(ctx, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("reading preference vector for user %d: %w", userID, err)
	}

	hits, err := e.index.Search(ctx, e.cfg.ProductsCollection, userVec, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("searching products for user %d: %w", userID, err)
	}
	return toRecommendations(hits), nil
}

// SimilarItems returns up to limit products similar to the given product.
// Unknown products have no neighbors and yield an empty result, not an
// error. The query product itself is never included.
func (e *Engine) SimilarItems(ctx context.Context, productID uint64, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		return []Recommendation{}, nil
	}

	itemVec, err := e.index.FetchVector(ctx, e.cfg.ProductsCollection, vector.NumID(productID))
	if errors.Is(err, vector.ErrNotFound) {
		return []Recommendation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading vector for product %d: %w", productID, err)
	}

	// limit+1 leaves room to drop the query product from its own results.
	hits, err := e.index.Search(ctx, e.cfg.ProductsCollection, itemVec, limit+1, nil)
	if err != nil {
		return nil, fmt.Errorf("searching similar products for %d: %w", productID, err)
	}

	recs := make([]Recommendation, 0, limit)
	for _, hit := range hits {
		rec := toRecommendation(hit)
		if rec.ProductID == productID {
			continue
		}
		recs = append(recs, rec)
		if len(recs) == limit {
			break
		}
	}
	return recs, nil
}

// HomepageRecommendations returns the user-based ranking padded with default
// recommendations, deduplicated by product id, user-based order first.
func (e *Engine) HomepageRecommendations(ctx context.Context, userID uint64, limit int) ([]Recommendation, error) {
	recs, err := e.RecommendForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(recs) >= limit {
		return recs[:limit], nil
	}

	defaults, err := e.DefaultRecommendations(ctx, limit-len(recs))
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]bool, len(recs))
	for _, rec := range recs {
		seen[rec.ProductID] = true
	}
	for _, rec := range defaults {
		if seen[rec.ProductID] {
			continue
		}
		recs = append(recs, rec)
		seen[rec.ProductID] = true
	}

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// DefaultRecommendations is the policy for users with no preference signal:
// a neutral-vector search over the catalog. The reported score is the fixed
// neutral constant, not a true similarity.
func (e *Engine) DefaultRecommendations(ctx context.Context, limit int) ([]Recommendation, error) {
	hits, err := e.index.Search(ctx, e.cfg.ProductsCollection, e.neutralVector(), limit, nil)
	if err != nil {
		return nil, fmt.Errorf("searching default recommendations: %w", err)
	}

	recs := toRecommendations(hits)
	for i := range recs {
		recs[i].Score = float32(e.cfg.NeutralScore)
	}
	return recs, nil
}

func (e *Engine) neutralVector() []float32 {
	return make([]float32, e.cfg.Dimensions)
}

func toRecommendations(hits []vector.Hit) []Recommendation {
	recs := make([]Recommendation, 0, len(hits))
	for _, hit := range hits {
		recs = append(recs, toRecommendation(hit))
	}
	return recs
}

func toRecommendation(hit vector.Hit) Recommendation {
	var productID uint64
	switch n := hit.Payload["product_id"].(type) {
	case int64:
		productID = uint64(n)
	case int:
		productID = uint64(n)
	case uint64:
		productID = n
	default:
		productID = hit.ID.Num()
	}

	name, _ := hit.Payload["name"].(string)
	sku, _ := hit.Payload["sku"].(string)

	return Recommendation{
		ProductID: productID,
		SKU:       sku,
		Name:      name,
		Score:     hit.Score,
	}
}
