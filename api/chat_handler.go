package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vendorahq/vendora-ai/pkg/assistant"
)

// ChatGenerateRequest is the body for POST /ai/chat/generate.
type ChatGenerateRequest struct {
	Message     string                 `json:"message"`
	History     []assistant.Message    `json:"history,omitempty"`
	UserContext *assistant.UserContext `json:"user_context,omitempty"`
}

// ChatClassifyRequest is the body for POST /ai/chat/classify.
type ChatClassifyRequest struct {
	Message string `json:"message"`
}

// handleChatGenerate runs the full pipeline: classify, retrieve, generate.
func (s *Server) handleChatGenerate(c *fiber.Ctx) error {
	var req ChatGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "message is required"})
	}

	answer := s.assistant.AnswerQuery(c.Context(), req.Message, req.History, req.UserContext)
	return c.JSON(answer)
}

// handleChatClassify classifies a query without retrieving anything.
func (s *Server) handleChatClassify(c *fiber.Ctx) error {
	var req ChatClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "message is required"})
	}

	intent := s.assistant.ClassifyQuery(c.Context(), req.Message)
	return c.JSON(intent)
}
