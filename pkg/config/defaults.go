package config

import "time"

const (
	// v0 is the alpha version of the config.
	v0 = 0

	// CurrentV is the currently supported config version, points to v0.
	CurrentV = v0

	defaultAPIListen = ":8090"

	defaultVectorProvider = "qdrant"
	defaultVectorHost     = "localhost"
	defaultVectorPort     = 6334
	defaultVectorTimeout  = 10 * time.Second

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "all-minilm"
	defaultEmbeddingDimensions = 384

	defaultChatHistoryLimit = 10

	defaultDecay        = 0.95
	defaultViewWeight   = 1.0
	defaultCartWeight   = 2.0
	defaultOrderWeight  = 5.0
	defaultUpdateScale  = 0.05
	defaultNeutralScore = 0.5

	defaultProductsCollection  = "product_catalog"
	defaultKnowledgeCollection = "knowledge_base"
	defaultUsersCollection     = "user_vectors"

	defaultEventsTopic = "vendora.interactions"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
			Host:     defaultVectorHost,
			Port:     defaultVectorPort,
			Timeout:  defaultVectorTimeout,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Chat: ChatConfig{
			HistoryLimit: defaultChatHistoryLimit,
		},
		Recommend: RecommendConfig{
			Decay:        defaultDecay,
			ViewWeight:   defaultViewWeight,
			CartWeight:   defaultCartWeight,
			OrderWeight:  defaultOrderWeight,
			UpdateScale:  defaultUpdateScale,
			NeutralScore: defaultNeutralScore,
		},
		Collections: CollectionsConfig{
			Products:  defaultProductsCollection,
			Knowledge: defaultKnowledgeCollection,
			Users:     defaultUsersCollection,
		},
		Events: EventsConfig{
			Topic: defaultEventsTopic,
		},
	}
}
