package rag

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"lectern/internal/llm"
	"lectern/internal/notes"
)

// fakeClient records the request it receives and returns a canned reply.
type fakeClient struct {
	reply       string
	err         error
	gotMessages []llm.Message
	gotTemp     float64
}

func (f *fakeClient) Generate(messages []llm.Message, temperature float64) (string, error) {
	f.gotMessages = messages
	f.gotTemp = temperature
	return f.reply, f.err
}

func userMsg(s string) notes.Message {
	return notes.Message{Role: "user", Content: notes.PlainText(s)}
}

func TestOfflineAnswerer(t *testing.T) {
	t.Run("no context", func(t *testing.T) {
		got, err := OfflineAnswerer{}.Answer("q", "", nil, 0.2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "I could not find any relevant information in the lecture notes." {
			t.Errorf("unexpected fallback: %q", got)
		}
	})

	t.Run("with context", func(t *testing.T) {
		block := "[sec-1 | Notes]\nsome content\n"
		got, err := OfflineAnswerer{}.Answer("q", block, nil, 0.2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(got, "Model access is not configured.") {
			t.Errorf("missing preamble: %q", got)
		}
		if !strings.Contains(got, block) {
			t.Errorf("context block not included verbatim: %q", got)
		}
	})
}

func TestModelAnswererRequestShape(t *testing.T) {
	client := &fakeClient{reply: "  the answer  "}
	a := NewModelAnswerer(client)

	block := "[sec-1 | Notes]\ncontent\n"
	history := []notes.Message{
		userMsg("earlier question"),
		{Role: "assistant", Content: notes.PlainText("earlier answer")},
	}

	got, err := a.Answer("what is stability?", block, history, 0.4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the answer" {
		t.Errorf("expected trimmed reply, got %q", got)
	}
	if client.gotTemp != 0.4 {
		t.Errorf("temperature not forwarded: %v", client.gotTemp)
	}

	msgs := client.gotMessages
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, "ONLY the information provided") {
		t.Errorf("first message is not the policy: %+v", msgs[0])
	}
	if msgs[1].Role != "system" || !strings.Contains(msgs[1].Content, block) {
		t.Errorf("second message missing context block: %+v", msgs[1])
	}
	if msgs[2].Content != "earlier question" || msgs[3].Content != "earlier answer" {
		t.Errorf("history not forwarded in order: %+v", msgs[2:4])
	}
	last := msgs[len(msgs)-1]
	if last.Role != "user" || !strings.HasSuffix(last.Content, "what is stability?") {
		t.Errorf("final message does not restate the question: %+v", last)
	}
	if !strings.Contains(last.Content, "ONLY the lecture context above") {
		t.Errorf("final message missing grounding instruction: %+v", last)
	}
}

func TestModelAnswererTrimsHistory(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	a := NewModelAnswerer(client)

	var history []notes.Message
	for i := 0; i < 20; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history = append(history, notes.Message{Role: role, Content: notes.PlainText(fmt.Sprintf("turn-%d", i))})
	}

	if _, err := a.Answer("q", "ctx", history, 0.2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2 system + 8 history + 1 final user.
	msgs := client.gotMessages
	if len(msgs) != 11 {
		t.Fatalf("expected 11 messages, got %d", len(msgs))
	}
	for i := 0; i < 8; i++ {
		want := fmt.Sprintf("turn-%d", 12+i)
		if msgs[2+i].Content != want {
			t.Errorf("history position %d: got %q, want %q", i, msgs[2+i].Content, want)
		}
	}
}

func TestModelAnswererPropagatesError(t *testing.T) {
	genErr := errors.New("quota exceeded")
	a := NewModelAnswerer(&fakeClient{err: genErr})

	_, err := a.Answer("q", "ctx", nil, 0.2)
	if !errors.Is(err, genErr) {
		t.Errorf("expected wrapped generation error, got %v", err)
	}
}
