// Package config holds the persistent vendora-ai configuration, loaded from
// config.toml with VENDORA_-prefixed environment variable overrides.
package config

import "time"

// Config is the full service configuration. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `mapstructure:"version"`
	API         APIConfig         `mapstructure:"api"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Chat        ChatConfig        `mapstructure:"chat"`
	Recommend   RecommendConfig   `mapstructure:"recommend"`
	Collections CollectionsConfig `mapstructure:"collections"`
	Events      EventsConfig      `mapstructure:"events"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Listen string `mapstructure:"listen"`
}

// VectorStoreConfig holds vector index settings.
type VectorStoreConfig struct {
	// Provider selects the index backend: "qdrant" or "memory".
	Provider string `mapstructure:"provider"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`

	// Timeout bounds each remote index call. An unresponsive backend then
	// surfaces as a degraded source instead of a hung request.
	Timeout time.Duration `mapstructure:"timeout"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Target     string `mapstructure:"target"`
	Model      string `mapstructure:"model"`
	Dimensions uint   `mapstructure:"dimensions"`
}

// LLMConfig holds generation backend settings. An empty Provider disables
// generation entirely; classification and responses then use the
// deterministic paths.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// ChatConfig holds chat pipeline settings.
type ChatConfig struct {
	// HistoryLimit is the number of previous messages included in the
	// generation prompt.
	HistoryLimit int `mapstructure:"history_limit"`
}

// RecommendConfig holds the preference vector tunables. The weights have no
// derivation beyond ORDER > ADD_TO_CART > VIEW; they are configuration, not
// constants with intrinsic meaning.
type RecommendConfig struct {
	Decay        float64 `mapstructure:"decay"`
	ViewWeight   float64 `mapstructure:"view_weight"`
	CartWeight   float64 `mapstructure:"cart_weight"`
	OrderWeight  float64 `mapstructure:"order_weight"`
	UpdateScale  float64 `mapstructure:"update_scale"`
	NeutralScore float64 `mapstructure:"neutral_score"`
}

// CollectionsConfig names the vector index collections.
type CollectionsConfig struct {
	Products  string `mapstructure:"products"`
	Knowledge string `mapstructure:"knowledge"`
	Users     string `mapstructure:"users"`
}

// EventsConfig holds the interaction event stream settings. An empty broker
// list disables publishing.
type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}
