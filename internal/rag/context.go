package rag

import (
	"fmt"
	"strings"
)

// BuildContext turns an ordered list of hits into a single text block for
// prompting. Each hit gets a header line naming its section, source
// lecture, and score, followed by its full document. Hit order is
// preserved; it encodes the retrieval ranking. Empty input returns the
// empty string, which signals "no context" to the answerer.
func BuildContext(hits []Hit) string {
	if len(hits) == 0 {
		return ""
	}

	parts := make([]string, 0, len(hits))
	for i, h := range hits {
		sec := h.SectionID
		if sec == "" {
			sec = fmt.Sprintf("match-%d", i+1)
		}
		source := h.Source
		if source == "" {
			source = "Notes"
		}

		header := fmt.Sprintf("[%s | %s", sec, source)
		if h.Score != nil {
			header += fmt.Sprintf(" | score=%.2f", *h.Score)
		}
		header += "]"

		body := h.Document
		if body == "" {
			body = h.Snippet
		}
		parts = append(parts, header+"\n"+body+"\n")
	}

	return strings.Join(parts, "\n\n")
}
