// Package llm provides chat-completion clients for answer generation.
package llm

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is a language-generation capability. Implementations send a
// composed conversation to a model and return the assistant's reply.
type Client interface {
	// Generate sends the conversation and returns the model's response.
	Generate(messages []Message, temperature float64) (string, error)
}
