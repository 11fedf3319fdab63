package rag

import (
	"fmt"
	"strings"

	"lectern/internal/llm"
	"lectern/internal/notes"
)

const systemPolicy = `You are Lectern, a lecture-grounded teaching assistant.
Use ONLY the information provided in the CONTEXT FROM NOTES.

When answering:
- If the context clearly or partially answers the question, say what the notes DO tell us.
- If an aspect of the question is missing (e.g., the question asks "when" but the notes only say WHAT happened), then answer like:
  "The notes mention that you did X, but they do not specify when."
- Only use the exact sentence "I could not find this information in the lecture notes." when there is no clearly relevant information at all.

Always be concise, factual, and avoid adding outside information that is not in the context.`

const (
	// noContextAnswer is returned when no model is configured and
	// retrieval produced nothing.
	noContextAnswer = "I could not find any relevant information in the lecture notes."
	// offlinePreamble prefixes the raw context dump when no model is
	// configured but retrieval succeeded.
	offlinePreamble = "Model access is not configured. But based on your notes:\n\n"
	// historyWindow caps how many trailing conversation messages are
	// forwarded to the model. Older turns are dropped, never summarized.
	historyWindow = 8
)

// Answerer produces an answer from a question, an assembled context
// block, and the conversation history. The two implementations are
// selected once at startup depending on whether a generation model is
// configured.
type Answerer interface {
	Answer(question, contextBlock string, history []notes.Message, temperature float64) (string, error)
}

// ModelAnswerer asks a language model, constraining it to the supplied
// context.
type ModelAnswerer struct {
	client llm.Client
}

// NewModelAnswerer creates an Answerer backed by the given model client.
func NewModelAnswerer(client llm.Client) *ModelAnswerer {
	return &ModelAnswerer{client: client}
}

func (a *ModelAnswerer) Answer(question, contextBlock string, history []notes.Message, temperature float64) (string, error) {
	msgs := buildRequest(question, contextBlock, history)
	text, err := a.client.Generate(msgs, temperature)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// buildRequest composes the full generation request: the system policy,
// the context block, the trailing history window, and a final user
// message restating the question.
func buildRequest(question, contextBlock string, history []notes.Message) []llm.Message {
	msgs := make([]llm.Message, 0, historyWindow+3)
	msgs = append(msgs,
		llm.Message{Role: "system", Content: systemPolicy},
		llm.Message{Role: "system", Content: "CONTEXT FROM NOTES:\n\n" + contextBlock},
	)

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, m := range history[start:] {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content.Text})
	}

	msgs = append(msgs, llm.Message{
		Role:    "user",
		Content: "Using ONLY the lecture context above, answer this question:\n\n" + question,
	})
	return msgs
}

// OfflineAnswerer is the fallback when no generation model is
// configured: it returns the raw context, or a fixed apology when there
// is none. It never fails.
type OfflineAnswerer struct{}

func (OfflineAnswerer) Answer(question, contextBlock string, history []notes.Message, temperature float64) (string, error) {
	if contextBlock == "" {
		return noContextAnswer, nil
	}
	return offlinePreamble + contextBlock, nil
}
