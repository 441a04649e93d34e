// Package config provides layered configuration for the complexity
// reasoning engine server.
//
// Configuration is loaded in order of precedence (highest wins):
// 1. Environment variables
// 2. A YAML configuration file
// 3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"complexity-engine/internal/storage"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  storage.Config `yaml:"storage"`
	Engine   EngineConfig   `yaml:"engine"`
	Features FeatureFlags   `yaml:"features"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig identifies this server instance for logging.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// EngineConfig tunes the reasoning pipeline itself.
type EngineConfig struct {
	MinConfidence float64 `yaml:"min_confidence"`
}

// FeatureFlags toggles optional engine behavior.
type FeatureFlags struct {
	EnableDebugModel       bool `yaml:"enable_debug_model"`
	EnableSimilaritySearch bool `yaml:"enable_similarity_search"`
}

// LoggingConfig controls verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the baseline configuration before a file or environment
// is consulted.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "complexity-engine",
			Version: "1.0.0",
		},
		Storage: storage.DefaultConfig(),
		Engine: EngineConfig{
			MinConfidence: 0.7,
		},
		Features: FeatureFlags{
			EnableDebugModel:       false,
			EnableSimilaritySearch: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the layered configuration: defaults, then an optional YAML
// file at path (skipped if path is empty or missing), then environment
// variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("config: load file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

// loadFromEnv applies environment overrides. Storage-specific variables
// are delegated to storage.ConfigFromEnv so the two config layers never
// diverge on variable names; a storage field is overridden only where that
// result differs from the built-in default, so an environment value equal
// to the default cannot be told apart from an unset variable and leaves
// the file's value in place.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("ENGINE_SERVER_NAME"); v != "" {
		c.Server.Name = v
	}
	if v := os.Getenv("ENGINE_SERVER_VERSION"); v != "" {
		c.Server.Version = v
	}
	if v := os.Getenv("ENGINE_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Engine.MinConfidence = f
		}
	}
	if v := os.Getenv("ENGINE_ENABLE_DEBUG_MODEL"); v != "" {
		c.Features.EnableDebugModel = parseBool(v)
	}
	if v := os.Getenv("ENGINE_ENABLE_SIMILARITY_SEARCH"); v != "" {
		c.Features.EnableSimilaritySearch = parseBool(v)
	}
	if v := os.Getenv("ENGINE_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	env, def := storage.ConfigFromEnv(), storage.DefaultConfig()
	if env.Type != def.Type {
		c.Storage.Type = env.Type
	}
	if env.SQLitePath != def.SQLitePath {
		c.Storage.SQLitePath = env.SQLitePath
	}
	if env.SQLiteTimeout != def.SQLiteTimeout {
		c.Storage.SQLiteTimeout = env.SQLiteTimeout
	}
}

// Validate rejects an unusable configuration.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server.name cannot be empty")
	}
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 1 {
		return fmt.Errorf("engine.min_confidence must be within [0,1]")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	return nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
