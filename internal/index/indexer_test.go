package index

import (
	"errors"
	"testing"

	"lectern/internal/notes"
	"lectern/internal/vectorstore"
)

// memStore is an in-memory Store with upsert-by-ID semantics.
type memStore struct {
	entries map[string]vectorstore.Entry
	err     error
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]vectorstore.Entry)}
}

func (m *memStore) Upsert(entries []vectorstore.Entry) error {
	if m.err != nil {
		return m.err
	}
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return nil
}

func (m *memStore) Query(text string, topK int) ([]vectorstore.Match, error) {
	return nil, nil
}
func (m *memStore) Count() (int, error) { return len(m.entries), nil }
func (m *memStore) Reset() error        { m.entries = make(map[string]vectorstore.Entry); return nil }
func (m *memStore) Close() error        { return nil }

func lectureSections() []notes.Section {
	return []notes.Section{
		{ID: "sec-1", Title: "Laplace", Content: "The Laplace transform maps time-domain signals to the s-domain.", Type: notes.SectionText},
		{ID: "sec-2", Title: "Stability", Content: "A system is stable if poles lie in the left half-plane.", Type: notes.SectionText},
	}
}

func TestIndexSections(t *testing.T) {
	st := newMemStore()
	ix := New(st)

	if err := ix.IndexSections("Signals 101", lectureSections()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n, _ := st.Count(); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
	e := st.entries["sec-2"]
	if e.SectionID != "sec-2" || e.Title != "Signals 101" {
		t.Errorf("entry metadata wrong: %+v", e)
	}
	if e.Document != "A system is stable if poles lie in the left half-plane." {
		t.Errorf("entry document wrong: %q", e.Document)
	}
}

func TestIndexSectionsIdempotent(t *testing.T) {
	st := newMemStore()
	ix := New(st)
	sections := lectureSections()

	if err := ix.IndexSections("Signals 101", sections); err != nil {
		t.Fatalf("first index: %v", err)
	}
	first, _ := st.Count()

	// Re-index with updated content for one section.
	sections[0].Content = "Updated content for the first section."
	if err := ix.IndexSections("Signals 101", sections); err != nil {
		t.Fatalf("second index: %v", err)
	}

	second, _ := st.Count()
	if second != first {
		t.Errorf("re-indexing grew the store: %d -> %d", first, second)
	}
	// Last write wins.
	if st.entries["sec-1"].Document != "Updated content for the first section." {
		t.Errorf("re-index did not replace content: %q", st.entries["sec-1"].Document)
	}
	if st.entries["sec-2"].Document != sections[1].Content {
		t.Error("untouched section was modified")
	}
}

func TestIndexSectionsRejectsInvalid(t *testing.T) {
	st := newMemStore()
	ix := New(st)

	t.Run("missing id", func(t *testing.T) {
		err := ix.IndexSections("L", []notes.Section{{Content: "x"}})
		if err == nil {
			t.Fatal("expected error for missing id")
		}
	})

	t.Run("missing content", func(t *testing.T) {
		err := ix.IndexSections("L", []notes.Section{{ID: "sec-1"}})
		if err == nil {
			t.Fatal("expected error for missing content")
		}
	})

	// Nothing is written when validation fails.
	if n, _ := st.Count(); n != 0 {
		t.Errorf("store was written despite invalid input: %d entries", n)
	}
}

func TestIndexSectionsPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("disk full")
	st := newMemStore()
	st.err = storeErr

	err := New(st).IndexSections("L", lectureSections())
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
