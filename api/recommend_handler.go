package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/recommend"
)

const (
	defaultRecommendLimit = 10
	maxRecommendLimit     = 50
)

// TrackInteractionRequest is the body for POST /ai/recommend/analytics/track.
// At least one of product_id, variant_id, or sku must identify the item.
type TrackInteractionRequest struct {
	UserID    uint64 `json:"user_id"`
	ProductID uint64 `json:"product_id,omitempty"`
	VariantID uint64 `json:"variant_id,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Action    string `json:"action"`
}

// RecommendationsResponse wraps a ranked product list.
type RecommendationsResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

func (s *Server) handleTrackInteraction(c *fiber.Ctx) error {
	var req TrackInteractionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "user_id is required"})
	}
	if req.ProductID == 0 && req.VariantID == 0 && req.SKU == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "one of product_id, variant_id, or sku is required"})
	}

	interaction := recommend.Interaction{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		SKU:       req.SKU,
		Action:    recommend.Action(req.Action),
	}
	if err := s.engine.TrackInteraction(c.Context(), interaction); err != nil {
		s.logger.Error("tracking interaction failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to track interaction"})
	}

	return c.JSON(map[string]string{"status": "tracked"})
}

func (s *Server) handleUserRecommendations(c *fiber.Ctx) error {
	userID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id must be a positive integer"})
	}

	recs, err := s.engine.RecommendForUser(c.Context(), userID, limitQuery(c))
	if err != nil {
		s.logger.Error("user recommendations failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to build recommendations"})
	}

	return c.JSON(RecommendationsResponse{Recommendations: recs})
}

func (s *Server) handleSimilarItems(c *fiber.Ctx) error {
	productID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id must be a positive integer"})
	}

	recs, err := s.engine.SimilarItems(c.Context(), productID, limitQuery(c))
	if err != nil {
		s.logger.Error("similar items failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to find similar items"})
	}

	return c.JSON(RecommendationsResponse{Recommendations: recs})
}

func (s *Server) handleHomepage(c *fiber.Ctx) error {
	userID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id must be a positive integer"})
	}

	recs, err := s.engine.HomepageRecommendations(c.Context(), userID, limitQuery(c))
	if err != nil {
		s.logger.Error("homepage recommendations failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to build recommendations"})
	}

	return c.JSON(RecommendationsResponse{Recommendations: recs})
}

func parseIDParam(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

// limitQuery reads the limit query parameter, clamped to a sane range.
func limitQuery(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", defaultRecommendLimit)
	if limit < 1 {
		return defaultRecommendLimit
	}
	if limit > maxRecommendLimit {
		return maxRecommendLimit
	}
	return limit
}
