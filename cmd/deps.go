package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lectern/internal/config"
	"lectern/internal/embedder"
	"lectern/internal/llm"
	"lectern/internal/rag"
	"lectern/internal/vectorstore"
)

// buildEmbedder constructs the embedding provider named in the config.
func buildEmbedder(cfg *config.Config) (embedder.Embedder, error) {
	switch cfg.Embedder.Type {
	case "openai":
		return embedder.NewOpenAIEmbedder(cfg.Embedder.OpenAI.BaseURL, cfg.Embedder.OpenAI.APIKey(), cfg.Embedder.OpenAI.Model)
	default:
		return embedder.NewOllamaEmbedder(cfg.Embedder.Ollama.URL, cfg.Embedder.Ollama.Model), nil
	}
}

// buildStore opens the configured vector store backend.
func buildStore(cfg *config.Config, emb embedder.Embedder) (vectorstore.Store, error) {
	switch cfg.Store.Type {
	case "qdrant":
		qc := cfg.Store.Qdrant
		apiKey := ""
		if qc.APIKeyEnv != "" {
			apiKey = os.Getenv(qc.APIKeyEnv)
		}
		return vectorstore.NewQdrant(vectorstore.QdrantConfig{
			URL:        qc.URL,
			APIKey:     apiKey,
			Collection: qc.Collection,
			Dimension:  cfg.Store.Dimension,
			Timeout:    time.Duration(qc.TimeoutSecs) * time.Second,
		}, emb)
	default:
		dbPath := cfg.Store.SQLite.Path
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		st, err := vectorstore.OpenSQLite(dbPath, cfg.Store.Dimension, emb)
		if err != nil {
			return nil, err
		}
		// A changed embedding model invalidates stored vectors.
		if last, err := st.GetMeta("embedding_model"); err == nil && last != "" && last != emb.Model() {
			fmt.Fprintf(os.Stderr, "embedding model changed from %q to %q, resetting index\n", last, emb.Model())
			if err := st.Reset(); err != nil {
				st.Close()
				return nil, fmt.Errorf("reset index: %w", err)
			}
		}
		if err := st.SetMeta("embedding_model", emb.Model()); err != nil {
			st.Close()
			return nil, fmt.Errorf("record embedding model: %w", err)
		}
		return st, nil
	}
}

// buildChatClient returns the configured generation client, or nil when
// the provider is "none" or its credential is missing.
func buildChatClient(cfg *config.Config) llm.Client {
	switch cfg.Chat.Provider {
	case "ollama":
		return llm.NewOllamaChat(cfg.Chat.Ollama.URL, cfg.Chat.Ollama.Model)
	case "openai":
		oc := cfg.Chat.OpenAI
		if oc == nil {
			return nil
		}
		client, err := llm.NewOpenAIChat(oc.BaseURL, oc.APIKey(), oc.Model)
		if err != nil {
			return nil
		}
		return client
	default:
		return nil
	}
}

// buildAnswerer selects the answerer variant once, at startup: a model
// answerer when a client is available, the offline fallback otherwise.
func buildAnswerer(client llm.Client) rag.Answerer {
	if client == nil {
		return rag.OfflineAnswerer{}
	}
	return rag.NewModelAnswerer(client)
}
