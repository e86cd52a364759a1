package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/assistant"
	"github.com/vendorahq/vendora-ai/pkg/ingest"
	"github.com/vendorahq/vendora-ai/pkg/recommend"
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the API server for the marketplace assistant.
type Server struct {
	config    Config
	assistant *assistant.Service
	engine    *recommend.Engine
	ingester  *ingest.Service
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The assistant service, recommendation
// engine, and ingester are injected so they can share one embedder and index.
func NewServer(config Config, svc *assistant.Service, engine *recommend.Engine, ingester *ingest.Service, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		assistant: svc,
		engine:    engine,
		ingester:  ingester,
		logger:    logger,
		app:       app,
	}

	app.Get("/health", s.handleHealth)

	app.Post("/ai/chat/generate", s.handleChatGenerate)
	app.Post("/ai/chat/classify", s.handleChatClassify)

	app.Post("/ai/recommend/analytics/track", s.handleTrackInteraction)
	app.Get("/ai/recommend/user/:id", s.handleUserRecommendations)
	app.Get("/ai/recommend/similar/:id", s.handleSimilarItems)
	app.Get("/ai/recommend/homepage/:id", s.handleHomepage)

	app.Post("/ai/ingest/product", s.handleIngestProduct)
	app.Post("/ai/ingest/products/bulk", s.handleIngestProductsBulk)
	app.Post("/ai/ingest/document", s.handleIngestDocument)
	app.Delete("/ai/ingest/product/:id", s.handleDeleteProduct)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(map[string]string{"status": "ok"})
}
