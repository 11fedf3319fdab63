// Package config loads application configuration from a YAML file with
// environment-variable fallbacks for credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SQLiteConfig configures the embedded sqlite-vec store.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Type      string        `yaml:"type"` // sqlite|qdrant
	Dimension int           `yaml:"dimension"`
	SQLite    SQLiteConfig  `yaml:"sqlite"`
	Qdrant    *QdrantConfig `yaml:"qdrant,omitempty"`
}

// OllamaConfig configures local Ollama endpoints.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// OpenAIConfig configures an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Type   string        `yaml:"type"` // ollama|openai
	Ollama OllamaConfig  `yaml:"ollama"`
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
}

// ChatConfig selects and configures the generation model. Provider
// "none" runs without a model; chat then falls back to raw context.
type ChatConfig struct {
	Provider string        `yaml:"provider"` // openai|ollama|none
	Ollama   OllamaConfig  `yaml:"ollama"`
	OpenAI   *OpenAIConfig `yaml:"openai,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Config is the root application configuration.
type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Store    StoreConfig    `yaml:"store"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Chat     ChatConfig     `yaml:"chat"`
	Server   ServerConfig   `yaml:"server"`
}

// Default returns the configuration used when no file is present:
// local Ollama embeddings over an embedded sqlite store, OpenAI chat
// when OPENAI_API_KEY is set.
func Default() *Config {
	return &Config{
		DataDir: "data",
		Store: StoreConfig{
			Type:      "sqlite",
			Dimension: 768,
			SQLite:    SQLiteConfig{Path: filepath.Join("data", "index.db")},
		},
		Embedder: EmbedderConfig{
			Type:   "ollama",
			Ollama: OllamaConfig{URL: "http://localhost:11434", Model: "nomic-embed-text"},
		},
		Chat: ChatConfig{
			Provider: "openai",
			Ollama:   OllamaConfig{URL: "http://localhost:11434", Model: "qwen3:8b"},
			OpenAI:   &OpenAIConfig{APIKeyEnv: "OPENAI_API_KEY", Model: "gpt-4o-mini"},
		},
		Server: ServerConfig{
			Addr:        ":8000",
			CORSOrigins: []string{"http://localhost:8501"},
		},
	}
}

// Load reads configuration from the given path, falling back to
// lectern.yaml in the working directory, then to defaults. A path given
// explicitly must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = "lectern.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Type {
	case "sqlite", "qdrant":
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}
	if c.Store.Type == "qdrant" && c.Store.Qdrant == nil {
		return fmt.Errorf("store type qdrant requires a qdrant section")
	}
	if c.Store.Dimension <= 0 {
		return fmt.Errorf("store dimension must be positive")
	}
	switch c.Embedder.Type {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	if c.Embedder.Type == "openai" && c.Embedder.OpenAI == nil {
		return fmt.Errorf("embedder type openai requires an openai section")
	}
	switch c.Chat.Provider {
	case "openai", "ollama", "none":
	default:
		return fmt.Errorf("unknown chat provider %q", c.Chat.Provider)
	}
	return nil
}

// NotesPath returns the location of the saved notes document.
func (c *Config) NotesPath() string {
	return filepath.Join(c.DataDir, "notes.json")
}

// APIKey resolves a credential from the environment variable named in
// the config section.
func (o *OpenAIConfig) APIKey() string {
	env := o.APIKeyEnv
	if env == "" {
		env = "OPENAI_API_KEY"
	}
	return os.Getenv(env)
}
