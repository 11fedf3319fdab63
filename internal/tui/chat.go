// Package tui is the interactive chat screen over indexed lecture notes.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"lectern/internal/notes"
	"lectern/internal/rag"
)

type chatState int

const (
	chatIdle chatState = iota
	chatThinking
)

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	viewport    viewport.Model
	input       textinput.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer
	messages    []displayMessage
	history     []notes.Message
	engine      *rag.Engine
	lecture     string
	topK        int
	state       chatState
	width       int
	height      int
	initialized bool
}

type displayMessage struct {
	role      string
	content   string
	citations []rag.Hit
}

// answerMsg is sent when a chat request completes.
type answerMsg struct {
	result *rag.Result
	err    error
}

// New creates the chat model. lecture names the indexed lecture for the
// status bar; it may be empty.
func New(engine *rag.Engine, lecture string, topK int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	ti := textinput.New()
	ti.Placeholder = "Ask a question about your lecture notes..."
	ti.CharLimit = 2000
	ti.Focus()

	return Model{
		spinner: sp,
		input:   ti,
		engine:  engine,
		lecture: lecture,
		topK:    topK,
		state:   chatIdle,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) initViewport(width, height int) {
	m.width = width
	m.height = height

	// Layout: viewport + status bar (1 line) + input (1 line) + gap.
	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport = viewport.New(width, vpHeight)
	m.viewport.SetContent(dimStyle.Render("Welcome to Lectern chat! Ask a question about your lecture notes.\n\nCommands: /help, /clear, /exit"))

	m.input.Width = width - 4

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err == nil {
		m.renderer = r
	}

	m.initialized = true
}

func askQuestion(engine *rag.Engine, history []notes.Message, topK int) tea.Cmd {
	return func() tea.Msg {
		result, err := engine.HandleChat(history, topK, rag.DefaultTemperature)
		if err != nil {
			return answerMsg{err: err}
		}
		return answerMsg{result: result}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.initViewport(msg.Width, msg.Height)
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case answerMsg:
		m.state = chatIdle
		if msg.err != nil {
			m.messages = append(m.messages, displayMessage{role: "error", content: msg.err.Error()})
		} else {
			m.messages = append(m.messages, displayMessage{
				role:      "assistant",
				content:   msg.result.Text,
				citations: msg.result.Citations,
			})
			m.history = append(m.history, notes.Message{Role: "assistant", Content: notes.PlainText(msg.result.Text)})
		}
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.state != chatIdle {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.state != chatIdle {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()

			switch question {
			case "/exit", "/quit":
				return m, tea.Quit
			case "/clear":
				m.messages = nil
				m.history = nil
				m.viewport.SetContent(dimStyle.Render("Conversation cleared."))
				return m, nil
			case "/help":
				helpText := "Commands:\n  /clear  - clear conversation history\n  /exit   - quit\n  /help   - show this help"
				m.messages = append(m.messages, displayMessage{role: "system", content: helpText})
				m.viewport.SetContent(m.renderMessages())
				m.viewport.GotoBottom()
				return m, nil
			}

			m.messages = append(m.messages, displayMessage{role: "user", content: question})
			m.history = append(m.history, notes.Message{Role: "user", Content: notes.PlainText(question)})
			m.state = chatThinking
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()

			return m, tea.Batch(
				m.spinner.Tick,
				askQuestion(m.engine, m.history, m.topK),
			)
		}
	}

	if m.state == chatIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return assistantMsgStyle.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return assistantMsgStyle.Render(content)
	}
	return strings.TrimRight(rendered, "\n")
}

func renderCitations(citations []rag.Hit) string {
	if len(citations) == 0 {
		return ""
	}
	labels := make([]string, 0, len(citations))
	for i, h := range citations {
		label := h.SectionID
		if label == "" {
			label = fmt.Sprintf("match-%d", i+1)
		}
		if h.Score != nil {
			label += fmt.Sprintf(" (%.2f)", *h.Score)
		}
		labels = append(labels, label)
	}
	return citationStyle.Render("Sources: " + strings.Join(labels, ", "))
}

func (m Model) renderMessages() string {
	var sb strings.Builder
	for _, msg := range m.messages {
		switch msg.role {
		case "user":
			sb.WriteString(userMsgStyle.Render("You: ") + msg.content + "\n\n")
		case "assistant":
			sb.WriteString(m.renderMarkdown(msg.content) + "\n")
			if c := renderCitations(msg.citations); c != "" {
				sb.WriteString(c + "\n")
			}
			sb.WriteString("\n")
		case "error":
			sb.WriteString(errorStyle.Render("Error: "+msg.content) + "\n\n")
		case "system":
			sb.WriteString(dimStyle.Render(msg.content) + "\n\n")
		}
	}

	if m.state != chatIdle {
		sb.WriteString(m.spinner.View() + " " + dimStyle.Render("Thinking...") + "\n")
	}

	return sb.String()
}

func (m Model) View() string {
	if !m.initialized {
		return ""
	}

	statusText := "idle"
	if m.state == chatThinking {
		statusText = "thinking..."
	}
	lecture := m.lecture
	if lecture == "" {
		lecture = "no lecture loaded"
	}
	statusBar := statusBarStyle.
		Width(m.width).
		Render(fmt.Sprintf(" lectern chat • %s • %s", lecture, statusText))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		m.input.View(),
	)
}

// Run starts the chat TUI.
func Run(engine *rag.Engine, lecture string, topK int) error {
	p := tea.NewProgram(New(engine, lecture, topK), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
