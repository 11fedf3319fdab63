// Package embedder maps text to fixed-dimension vectors for the vector store.
package embedder

// Embedder converts text into embedding vectors. Implementations are
// HTTP clients to an embedding service; the vector store calls them on
// both the indexing and the query path.
type Embedder interface {
	// Model returns the configured embedding model identifier.
	Model() string
	// Embed returns one embedding per input text, in input order.
	Embed(texts []string) ([][]float32, error)
	// EmbedSingle embeds a single text.
	EmbedSingle(text string) ([]float32, error)
}
