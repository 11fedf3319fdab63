package rag

import (
	"errors"
	"fmt"
	"strings"

	"lectern/internal/notes"
)

// Client-error sentinels for malformed chat requests.
var (
	ErrEmptyConversation = errors.New("no messages provided")
	ErrNoQuestion        = errors.New("no user question in conversation")
)

const (
	minTopK     = 1
	maxTopK     = 15
	defaultTopK = 5

	// DefaultTemperature is used when the caller does not set one.
	DefaultTemperature = 0.2
)

// Result is a chat answer with the hits that grounded it. Citations are
// exactly the retrieval hits, unfiltered, even if the answer used only
// some of them: the consumer sees everything that was retrieved.
type Result struct {
	Text      string `json:"text"`
	Citations []Hit  `json:"citations"`
}

// Engine composes retrieval, context assembly, and answer generation
// into the end-to-end chat flow.
type Engine struct {
	retriever *Retriever
	answerer  Answerer
}

// NewEngine creates a chat engine from a retriever and an answerer.
func NewEngine(retriever *Retriever, answerer Answerer) *Engine {
	return &Engine{retriever: retriever, answerer: answerer}
}

// HandleChat answers the most recent user question in the conversation,
// grounded in retrieved sections. If generation fails after retrieval
// succeeded, the answer degrades to the raw context dump rather than
// failing the whole request.
func (e *Engine) HandleChat(messages []notes.Message, topK int, temperature float64) (*Result, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyConversation
	}
	question := LastUserMessage(messages)
	if strings.TrimSpace(question) == "" {
		return nil, ErrNoQuestion
	}

	hits, err := e.retriever.Search(question, ClampTopK(topK))
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	contextBlock := BuildContext(hits)

	text, err := e.answerer.Answer(question, contextBlock, messages, temperature)
	if err != nil {
		text, _ = OfflineAnswerer{}.Answer(question, contextBlock, messages, temperature)
	}

	return &Result{Text: text, Citations: hits}, nil
}

// LastUserMessage returns the content of the most recent user-role
// message, scanning backward. Returns "" when no user message exists.
func LastUserMessage(messages []notes.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content.Text
		}
	}
	return ""
}

// ClampTopK bounds a requested result count to [1,15]. Zero means
// unset and falls back to the default of 5.
func ClampTopK(k int) int {
	if k == 0 {
		return defaultTopK
	}
	if k < minTopK {
		return minTopK
	}
	if k > maxTopK {
		return maxTopK
	}
	return k
}
