// Package quiz generates practice questions grounded in indexed notes.
package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lectern/internal/llm"
	"lectern/internal/rag"
)

var (
	// ErrNotConfigured means no generation model is available.
	ErrNotConfigured = errors.New("quiz generation requires a configured model")
	// ErrNoCorpus means retrieval found nothing to build questions from.
	ErrNoCorpus = errors.New("no indexed notes to generate a quiz from")
)

const (
	defaultCount  = 6
	maxCount      = 20
	retrievalTopK = 8
)

// Item is one generated quiz question.
type Item struct {
	Q           string   `json:"q"`
	Choices     []string `json:"choices,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Request describes the quiz to generate.
type Request struct {
	N          int    `json:"n"`
	Type       string `json:"type"`       // mcq|fib|mix
	Difficulty string `json:"difficulty"` // auto|easy|medium|hard
	Topic      string `json:"topic,omitempty"`
}

// Generator builds quizzes from retrieved lecture context.
type Generator struct {
	retriever *rag.Retriever
	client    llm.Client
}

// New creates a quiz generator. client may be nil when no model is
// configured; Generate then fails with ErrNotConfigured.
func New(retriever *rag.Retriever, client llm.Client) *Generator {
	return &Generator{retriever: retriever, client: client}
}

const quizSystemPrompt = `You write quiz questions strictly from the provided lecture notes.
Never invent facts that are not in the notes. Respond with a JSON array only, no prose.`

// Generate retrieves context for the requested topic and asks the model
// for quiz items. The same context block format used for chat grounding
// is used here.
func (g *Generator) Generate(req Request) ([]Item, error) {
	if g.client == nil {
		return nil, ErrNotConfigured
	}

	n := req.N
	if n <= 0 {
		n = defaultCount
	}
	if n > maxCount {
		n = maxCount
	}
	qtype := req.Type
	if qtype == "" {
		qtype = "mcq"
	}

	query := req.Topic
	if query == "" {
		query = "key concepts from the lecture"
	}
	hits, err := g.retriever.Search(query, retrievalTopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve quiz context: %w", err)
	}
	contextBlock := rag.BuildContext(hits)
	if contextBlock == "" {
		return nil, ErrNoCorpus
	}

	prompt := buildPrompt(n, qtype, req.Difficulty, contextBlock)
	text, err := g.client.Generate([]llm.Message{
		{Role: "system", Content: quizSystemPrompt},
		{Role: "user", Content: prompt},
	}, 0.3)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	items, err := parseItems(text)
	if err != nil {
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}
	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func buildPrompt(n int, qtype, difficulty, contextBlock string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write %d quiz questions of type %q", n, qtype)
	if difficulty != "" && difficulty != "auto" {
		fmt.Fprintf(&sb, " at %s difficulty", difficulty)
	}
	sb.WriteString(" from the lecture notes below.\n\n")
	sb.WriteString("Return a JSON array of objects with fields: ")
	sb.WriteString(`"q" (question), "choices" (array of options, MCQ only), "answer", "explanation".`)
	sb.WriteString("\n\nLECTURE NOTES:\n\n")
	sb.WriteString(contextBlock)
	return sb.String()
}

// parseItems extracts the JSON array from a model response, tolerating
// code fences and surrounding prose.
func parseItems(text string) ([]Item, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}
	var items []Item
	if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty quiz")
	}
	return items, nil
}
