package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "an explicit path must exist")

	// No path and no lectern.yaml in the working dir falls back to defaults.
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, 768, cfg.Store.Dimension)
	assert.Equal(t, "ollama", cfg.Embedder.Type)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, filepath.Join("data", "notes.json"), cfg.NotesPath())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lectern.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /var/lib/lectern
store:
  type: qdrant
  dimension: 1536
  qdrant:
    url: http://qdrant:6333
    collection: lectures
embedder:
  type: openai
  openai:
    model: text-embedding-3-small
chat:
  provider: none
server:
  addr: ":9000"
  cors_origins: ["http://localhost:3000"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qdrant", cfg.Store.Type)
	require.NotNil(t, cfg.Store.Qdrant)
	assert.Equal(t, "http://qdrant:6333", cfg.Store.Qdrant.URL)
	assert.Equal(t, "lectures", cfg.Store.Qdrant.Collection)
	assert.Equal(t, 1536, cfg.Store.Dimension)
	assert.Equal(t, "none", cfg.Chat.Provider)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)

	// File values overlay defaults; untouched sections keep them.
	assert.Equal(t, "http://localhost:11434", cfg.Embedder.Ollama.URL)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"unknown store": `
store:
  type: redis
`,
		"qdrant without section": `
store:
  type: qdrant
  dimension: 768
  qdrant:
`,
		"zero dimension": `
store:
  type: sqlite
  dimension: 0
`,
		"unknown embedder": `
embedder:
  type: cohere
`,
		"openai embedder without section": `
embedder:
  type: openai
  openai:
`,
		"unknown chat provider": `
chat:
  provider: anthropic
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "lectern.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("LECTERN_TEST_KEY", "sk-test")
	o := &OpenAIConfig{APIKeyEnv: "LECTERN_TEST_KEY"}
	assert.Equal(t, "sk-test", o.APIKey())

	t.Setenv("OPENAI_API_KEY", "sk-default")
	assert.Equal(t, "sk-default", (&OpenAIConfig{}).APIKey())
}
