package rag

import (
	"errors"
	"strings"
	"testing"

	"lectern/internal/vectorstore"
)

// fakeStore returns canned matches for any query.
type fakeStore struct {
	matches []vectorstore.Match
	err     error
}

func (f *fakeStore) Upsert(entries []vectorstore.Entry) error { return f.err }
func (f *fakeStore) Query(text string, topK int) ([]vectorstore.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	if topK < len(f.matches) {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}
func (f *fakeStore) Count() (int, error) { return len(f.matches), nil }
func (f *fakeStore) Reset() error        { return nil }
func (f *fakeStore) Close() error        { return nil }

func fptr(v float64) *float64 { return &v }

func TestSearchNormalizesMatches(t *testing.T) {
	st := &fakeStore{matches: []vectorstore.Match{
		{Document: "poles in the left half-plane", Title: "Signals 101", SectionID: "sec-2", Distance: fptr(0.2)},
		{Document: "laplace transform", SectionID: "sec-1", Distance: fptr(0.5)},
	}}

	hits, err := NewRetriever(st).Search("stability", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}

	if hits[0].SectionID != "sec-2" || hits[0].Source != "Signals 101" {
		t.Errorf("unexpected first hit: %+v", hits[0])
	}
	if *hits[0].Score != 0.8 {
		t.Errorf("expected score 0.8, got %v", *hits[0].Score)
	}
	// Missing lecture title falls back to "Notes".
	if hits[1].Source != "Notes" {
		t.Errorf("expected default source, got %q", hits[1].Source)
	}
	// Store ordering is preserved.
	if *hits[0].Score < *hits[1].Score {
		t.Error("hits out of order")
	}
}

func TestSearchScoreConversion(t *testing.T) {
	tests := []struct {
		name  string
		match vectorstore.Match
		want  *float64
	}{
		{"distance converts", vectorstore.Match{Distance: fptr(0.3)}, fptr(0.7)},
		{"native score passes through", vectorstore.Match{Score: fptr(0.9)}, fptr(0.9)},
		{"no signal gives nil", vectorstore.Match{}, nil},
		{"oversized distance clamps to zero", vectorstore.Match{Distance: fptr(1.8)}, fptr(0.0)},
		{"negative distance clamps to one", vectorstore.Match{Distance: fptr(-0.2)}, fptr(1.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchScore(tt.match)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("expected nil score, got %v", *got)
			case tt.want != nil && got == nil:
				t.Errorf("expected %v, got nil", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("expected %v, got %v", *tt.want, *got)
			}
		})
	}
}

func TestSearchSnippetBound(t *testing.T) {
	long := strings.Repeat("x", 500)
	exact := strings.Repeat("y", 280)
	st := &fakeStore{matches: []vectorstore.Match{
		{Document: long, SectionID: "a", Distance: fptr(0.1)},
		{Document: exact, SectionID: "b", Distance: fptr(0.2)},
		{Document: "short", SectionID: "c", Distance: fptr(0.3)},
	}}

	hits, err := NewRetriever(st).Search("q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := []rune(hits[0].Snippet); len(got) != 281 {
		t.Errorf("truncated snippet has %d runes, want 281", len(got))
	}
	if !strings.HasSuffix(hits[0].Snippet, "…") {
		t.Error("truncated snippet missing ellipsis")
	}
	if hits[1].Snippet != exact {
		t.Error("snippet at exactly 280 chars must not be truncated")
	}
	if hits[2].Snippet != "short" {
		t.Errorf("short snippet altered: %q", hits[2].Snippet)
	}
}

func TestSearchEmptyStore(t *testing.T) {
	hits, err := NewRetriever(&fakeStore{}).Search("anything", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestSearchPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("store down")
	_, err := NewRetriever(&fakeStore{err: storeErr}).Search("q", 5)
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
