package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// validKeys are the dotted keys the config CLI may read and write. The list
// mirrors the TOML section structure.
var validKeys = []string{
	"api.listen",
	"vector_store.provider",
	"vector_store.host",
	"vector_store.port",
	"vector_store.timeout",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.dimensions",
	"llm.provider",
	"llm.model",
	"llm.api_key",
	"llm.base_url",
	"chat.history_limit",
	"recommend.decay",
	"recommend.view_weight",
	"recommend.cart_weight",
	"recommend.order_weight",
	"recommend.update_scale",
	"recommend.neutral_score",
	"collections.products",
	"collections.knowledge",
	"collections.users",
	"events.brokers",
	"events.topic",
}

// ValidConfigKeys returns the settable dotted config keys.
func ValidConfigKeys() []string {
	keys := make([]string, len(validKeys))
	copy(keys, validKeys)
	return keys
}

// IsValidConfigKey reports whether key is a known dotted config key.
func IsValidConfigKey(key string) bool {
	for _, k := range validKeys {
		if k == key {
			return true
		}
	}
	return false
}

// GetConfigValue returns the effective value for key (defaults, file, and
// environment applied) and the config file path in use, if any.
func GetConfigValue(configDir, key string) (value, path string, err error) {
	v, err := InitViper(configDir)
	if err != nil {
		return "", "", err
	}
	return v.GetString(key), v.ConfigFileUsed(), nil
}

// SetConfigValue writes key=value into config.toml under configDir, creating
// the file when absent. Only file contents are touched; defaults and
// environment values are never baked into the file.
func SetConfigValue(configDir, key, value string) (path string, err error) {
	if configDir == "" {
		configDir = "."
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return "", fmt.Errorf("reading config: %w", err)
		}
	}

	v.Set(key, value)

	path = v.ConfigFileUsed()
	if path == "" {
		path = filepath.Join(configDir, "config.toml")
	}
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}
