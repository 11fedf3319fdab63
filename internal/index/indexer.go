// Package index writes lecture sections into the vector store.
package index

import (
	"fmt"

	"lectern/internal/notes"
	"lectern/internal/vectorstore"
)

// Indexer converts lecture sections into vector store entries.
type Indexer struct {
	store vectorstore.Store
}

// New creates an Indexer writing to the given store.
func New(store vectorstore.Store) *Indexer {
	return &Indexer{store: store}
}

// IndexSections upserts one store entry per section, tagged with the
// lecture title. Indexing the same section ID again replaces the previous
// entry, so re-ingesting a lecture is idempotent.
//
// Every section must have a non-empty ID and content; a section missing
// either is rejected before anything is written.
func (ix *Indexer) IndexSections(lectureTitle string, sections []notes.Section) error {
	entries := make([]vectorstore.Entry, 0, len(sections))
	for _, sec := range sections {
		if sec.ID == "" || sec.Content == "" {
			return fmt.Errorf("section %q: id and content are required", sec.ID)
		}
		entries = append(entries, vectorstore.Entry{
			ID:        sec.ID,
			Document:  sec.Content,
			Title:     lectureTitle,
			SectionID: sec.ID,
		})
	}
	if err := ix.store.Upsert(entries); err != nil {
		return fmt.Errorf("index sections: %w", err)
	}
	return nil
}

// IndexDoc indexes all sections of a saved notes document.
func (ix *Indexer) IndexDoc(doc *notes.Doc) error {
	return ix.IndexSections(doc.LectureTitle, doc.Sections)
}
