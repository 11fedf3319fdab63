package notes

import "encoding/json"

// Content is a chat message body. Clients send either a plain JSON string
// or a structured object carrying a "text" field; both decode to Text.
// Any other shape decodes to the empty string.
type Content struct {
	Text string
}

// Message is one turn of a conversation.
type Message struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		c.Text = obj.Text
		return nil
	}
	c.Text = ""
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Text)
}

// PlainText wraps a string as message content.
func PlainText(s string) Content {
	return Content{Text: s}
}
