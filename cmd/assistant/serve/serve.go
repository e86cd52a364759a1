// Package servecmder provides the serve command running the assistant API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/api"
	"github.com/vendorahq/vendora-ai/pkg/assistant"
	"github.com/vendorahq/vendora-ai/pkg/config"
	embeddingutils "github.com/vendorahq/vendora-ai/pkg/embeddings/utils"
	"github.com/vendorahq/vendora-ai/pkg/eventstream"
	eskafka "github.com/vendorahq/vendora-ai/pkg/eventstream/kafka"
	"github.com/vendorahq/vendora-ai/pkg/eventstream/nop"
	"github.com/vendorahq/vendora-ai/pkg/ingest"
	"github.com/vendorahq/vendora-ai/pkg/llm"
	"github.com/vendorahq/vendora-ai/pkg/logger"
	"github.com/vendorahq/vendora-ai/pkg/recommend"
	vectorutils "github.com/vendorahq/vendora-ai/pkg/vector/utils"
)

type ServeCommander struct {
	listen    string
	debug     bool
	configDir string
	logger    *zap.Logger
}

const serveLongDesc string = `Run the Vendora AI API server.

The server exposes the chat pipeline, the recommendation endpoints, and
catalog ingestion over HTTP. Configuration is read from config.toml in the
--config directory, with VENDORA_-prefixed environment overrides.`

const serveShortDesc string = "Run the Vendora AI API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, err = cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for API server to listen on (overrides config)")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.API.Listen = c.listen
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
		Timeout:      cfg.VectorStore.Timeout,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector index: %w", err)
	}
	defer index.Close()

	ctx := context.Background()
	for _, collection := range []string{cfg.Collections.Products, cfg.Collections.Knowledge, cfg.Collections.Users} {
		if err := index.EnsureCollection(ctx, collection); err != nil {
			return fmt.Errorf("ensuring collection %s: %w", collection, err)
		}
	}

	callerConfig := llm.CallerConfig{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	}
	routerCall, err := llm.NewJSONCaller(callerConfig)
	if err != nil {
		return fmt.Errorf("creating router caller: %w", err)
	}
	generateCall, err := llm.NewTextCaller(callerConfig)
	if err != nil {
		return fmt.Errorf("creating generation caller: %w", err)
	}
	if routerCall == nil {
		c.logger.Info("no LLM provider configured, using deterministic classification and responses")
	}

	publisher, err := c.newPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	svc := assistant.NewService(embedder, index, routerCall, generateCall, assistant.Config{
		ProductsCollection:  cfg.Collections.Products,
		KnowledgeCollection: cfg.Collections.Knowledge,
		HistoryLimit:        cfg.Chat.HistoryLimit,
	}, c.logger)

	engine := recommend.NewEngine(index, publisher, recommend.Config{
		ProductsCollection: cfg.Collections.Products,
		UsersCollection:    cfg.Collections.Users,
		Dimensions:         cfg.Embedding.Dimensions,
		Decay:              cfg.Recommend.Decay,
		ViewWeight:         cfg.Recommend.ViewWeight,
		CartWeight:         cfg.Recommend.CartWeight,
		OrderWeight:        cfg.Recommend.OrderWeight,
		UpdateScale:        cfg.Recommend.UpdateScale,
		NeutralScore:       cfg.Recommend.NeutralScore,
	}, c.logger)

	ingester := ingest.NewService(embedder, index, ingest.Config{
		ProductsCollection:  cfg.Collections.Products,
		KnowledgeCollection: cfg.Collections.Knowledge,
	}, c.logger)

	server := api.NewServer(api.Config{ListenAddr: cfg.API.Listen}, svc, engine, ingester, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

func (c *ServeCommander) newPublisher(cfg *config.Config) (eventstream.Publisher, error) {
	if len(cfg.Events.Brokers) == 0 {
		c.logger.Info("no event brokers configured, interaction events disabled")
		return nop.NewPublisher(), nil
	}

	publisher, err := eskafka.NewPublisher(eskafka.Config{
		Brokers: cfg.Events.Brokers,
		Topic:   cfg.Events.Topic,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}

	c.logger.Info("publishing interaction events",
		zap.Strings("brokers", cfg.Events.Brokers),
		zap.String("topic", cfg.Events.Topic),
	)
	return publisher, nil
}
