// Package rag implements retrieval-grounded answering over indexed
// lecture notes: semantic retrieval, context assembly, and constrained
// answer generation with citation tracking.
package rag

import (
	"fmt"

	"lectern/internal/vectorstore"
)

// snippetLimit is the maximum snippet length in runes before truncation.
const snippetLimit = 280

// Hit is a single retrieval result: matched content plus similarity
// score and provenance. Hits are built per query and never persisted.
type Hit struct {
	Title     string   `json:"title"`
	Snippet   string   `json:"snippet"`
	Document  string   `json:"document"`
	Score     *float64 `json:"score"`
	SectionID string   `json:"section_id,omitempty"`
	Source    string   `json:"source"`
}

// Retriever runs semantic queries against the vector store and
// normalizes matches into Hits.
type Retriever struct {
	store vectorstore.Store
}

// NewRetriever creates a Retriever over the given store.
func NewRetriever(store vectorstore.Store) *Retriever {
	return &Retriever{store: store}
}

// Search returns the topK nearest sections to the query, in the store's
// best-to-worst order. The store's ranking is preserved as-is. An empty
// store yields an empty slice, not an error.
func (r *Retriever) Search(query string, topK int) ([]Hit, error) {
	matches, err := r.store.Query(query, topK)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		source := m.Title
		if source == "" {
			source = "Notes"
		}
		hits = append(hits, Hit{
			Title:     "Match",
			Snippet:   makeSnippet(m.Document),
			Document:  m.Document,
			Score:     matchScore(m),
			SectionID: m.SectionID,
			Source:    source,
		})
	}
	return hits, nil
}

// makeSnippet returns the first snippetLimit runes of the document, with
// an ellipsis appended when the document is longer.
func makeSnippet(doc string) string {
	runes := []rune(doc)
	if len(runes) <= snippetLimit {
		return doc
	}
	return string(runes[:snippetLimit]) + "…"
}

// matchScore converts a store match into a similarity score in [0,1],
// or nil when the store gave no ranking signal. The 1-distance
// conversion assumes a bounded distance metric (cosine distance);
// clamping keeps other metrics from producing out-of-range scores.
func matchScore(m vectorstore.Match) *float64 {
	switch {
	case m.Score != nil:
		s := clamp01(*m.Score)
		return &s
	case m.Distance != nil:
		s := clamp01(1.0 - *m.Distance)
		return &s
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
