package quiz

import (
	"errors"
	"strings"
	"testing"

	"lectern/internal/llm"
	"lectern/internal/rag"
	"lectern/internal/vectorstore"
)

type fakeStore struct {
	matches []vectorstore.Match
	err     error
}

func (f *fakeStore) Upsert([]vectorstore.Entry) error { return f.err }
func (f *fakeStore) Query(text string, topK int) ([]vectorstore.Match, error) {
	return f.matches, f.err
}
func (f *fakeStore) Count() (int, error) { return len(f.matches), f.err }
func (f *fakeStore) Reset() error        { return f.err }
func (f *fakeStore) Close() error        { return nil }

type fakeClient struct {
	response string
	err      error
	prompt   string
}

func (f *fakeClient) Generate(messages []llm.Message, temperature float64) (string, error) {
	if len(messages) > 0 {
		f.prompt = messages[len(messages)-1].Content
	}
	return f.response, f.err
}

func storeWithNotes() *fakeStore {
	return &fakeStore{matches: []vectorstore.Match{
		{Document: "Poles must lie in the left half-plane.", Title: "Signals 101", SectionID: "sec-2"},
	}}
}

func TestGenerateNotConfigured(t *testing.T) {
	g := New(rag.NewRetriever(storeWithNotes()), nil)
	_, err := g.Generate(Request{N: 4})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGenerateNoCorpus(t *testing.T) {
	g := New(rag.NewRetriever(&fakeStore{}), &fakeClient{response: "[]"})
	_, err := g.Generate(Request{})
	if !errors.Is(err, ErrNoCorpus) {
		t.Errorf("expected ErrNoCorpus, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	client := &fakeClient{response: `[
		{"q":"Where must poles lie for stability?","choices":["left half-plane","right half-plane"],"answer":"left half-plane","explanation":"Stated in the stability section."}
	]`}
	g := New(rag.NewRetriever(storeWithNotes()), client)

	items, err := g.Generate(Request{N: 4, Type: "mcq", Topic: "stability"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Answer != "left half-plane" {
		t.Errorf("unexpected answer: %q", items[0].Answer)
	}
	if !strings.Contains(client.prompt, "Poles must lie in the left half-plane.") {
		t.Error("prompt should carry the retrieved lecture context")
	}
	if !strings.Contains(client.prompt, "Write 4 quiz questions") {
		t.Errorf("prompt should carry the requested count: %q", client.prompt)
	}
}

func TestGenerateTruncatesToRequestedCount(t *testing.T) {
	client := &fakeClient{response: `[
		{"q":"one","answer":"a"},
		{"q":"two","answer":"b"},
		{"q":"three","answer":"c"}
	]`}
	g := New(rag.NewRetriever(storeWithNotes()), client)

	items, err := g.Generate(Request{N: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected items truncated to 2, got %d", len(items))
	}
}

func TestGeneratePropagatesModelError(t *testing.T) {
	g := New(rag.NewRetriever(storeWithNotes()), &fakeClient{err: errors.New("model offline")})
	_, err := g.Generate(Request{})
	if err == nil || !strings.Contains(err.Error(), "model offline") {
		t.Errorf("expected wrapped model error, got %v", err)
	}
}

func TestParseItems(t *testing.T) {
	t.Run("plain array", func(t *testing.T) {
		items, err := parseItems(`[{"q":"what?","answer":"this"}]`)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(items) != 1 || items[0].Q != "what?" {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("code fence and prose", func(t *testing.T) {
		text := "Here is your quiz:\n```json\n[{\"q\":\"what?\",\"answer\":\"this\"}]\n```\nEnjoy!"
		items, err := parseItems(text)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(items) != 1 {
			t.Errorf("expected 1 item, got %d", len(items))
		}
	})

	t.Run("no array", func(t *testing.T) {
		if _, err := parseItems("I cannot write a quiz."); err == nil {
			t.Error("expected an error for prose-only response")
		}
	})

	t.Run("empty array", func(t *testing.T) {
		if _, err := parseItems("[]"); err == nil {
			t.Error("expected an error for an empty quiz")
		}
	})
}
