package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/ingest"
)

// BulkIngestRequest is the body for POST /ai/ingest/products/bulk.
type BulkIngestRequest struct {
	Products []ingest.Product `json:"products"`
}

// BulkIngestResponse reports how many products were indexed.
type BulkIngestResponse struct {
	Ingested int `json:"ingested"`
	Total    int `json:"total"`
}

// IngestDocumentResponse returns the generated document id.
type IngestDocumentResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleIngestProduct(c *fiber.Ctx) error {
	var product ingest.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if product.ProductID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "product_id is required"})
	}

	if err := s.ingester.IngestProduct(c.Context(), product); err != nil {
		s.logger.Error("product ingest failed", zap.Uint64("product_id", product.ProductID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to ingest product"})
	}

	return c.JSON(map[string]string{"status": "ingested"})
}

func (s *Server) handleIngestProductsBulk(c *fiber.Ctx) error {
	var req BulkIngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Products) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "products is required"})
	}

	ingested, err := s.ingester.IngestProducts(c.Context(), req.Products)
	if err != nil {
		s.logger.Error("bulk ingest failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to ingest products"})
	}

	return c.JSON(BulkIngestResponse{Ingested: ingested, Total: len(req.Products)})
}

func (s *Server) handleIngestDocument(c *fiber.Ctx) error {
	var doc ingest.Document
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(doc.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "text is required"})
	}

	id, err := s.ingester.IngestDocument(c.Context(), doc)
	if err != nil {
		s.logger.Error("document ingest failed", zap.String("title", doc.Title), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to ingest document"})
	}

	return c.JSON(IngestDocumentResponse{ID: id})
}

func (s *Server) handleDeleteProduct(c *fiber.Ctx) error {
	productID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id must be a positive integer"})
	}

	if err := s.ingester.DeleteProduct(c.Context(), productID); err != nil {
		s.logger.Error("product delete failed", zap.Uint64("product_id", productID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to delete product"})
	}

	return c.JSON(map[string]string{"status": "deleted"})
}
