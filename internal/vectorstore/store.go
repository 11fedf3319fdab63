// Package vectorstore persists lecture sections with their embeddings and
// answers nearest-neighbour queries. Embedding happens inside the store on
// both the write and the query path, so callers only ever deal in text.
package vectorstore

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "lectern"

// Entry is the persisted unit: one lecture section keyed by its stable ID.
// Upserting an existing ID replaces its document, metadata, and embedding.
type Entry struct {
	ID        string
	Document  string
	Title     string
	SectionID string
}

// Match is one nearest-neighbour query result. Exactly one of Distance or
// Score is set depending on what the backend reports; both nil means the
// backend gave no ranking signal for this match.
type Match struct {
	Document  string
	Title     string
	SectionID string
	// Distance is a distance-style metric where smaller is better.
	Distance *float64
	// Score is a similarity where larger is better, already in [0,1].
	Score *float64
}

// Store is the vector store contract the core relies on. Implementations
// must be safe for concurrent queries, and an upsert of a given ID must be
// atomic with respect to concurrent readers of that ID.
type Store interface {
	// Upsert writes entries keyed by ID. Re-writing an ID replaces the
	// previous entry; other IDs are unaffected.
	Upsert(entries []Entry) error
	// Query returns the topK nearest entries to the query text, best first.
	Query(text string, topK int) ([]Match, error)
	// Count reports the number of entries in the collection.
	Count() (int, error)
	// Reset removes all entries.
	Reset() error
	// Close releases the underlying connection.
	Close() error
}
