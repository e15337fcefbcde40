// Package console is the interactive question-and-answer terminal UI.
package console

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hyperjump/predictimed/internal/cli"
	"github.com/hyperjump/predictimed/internal/rag"
)

// Farewell is shown when the user leaves the console.
const Farewell = "👋 Take care! Remember to consult healthcare professionals for medical advice."

var exitCommands = map[string]struct{}{"exit": {}, "quit": {}, "bye": {}, "q": {}}

// IsExitCommand reports whether input asks to leave the console.
func IsExitCommand(input string) bool {
	_, ok := exitCommands[strings.ToLower(strings.TrimSpace(input))]
	return ok
}

// Asker answers one question.
type Asker interface {
	Answer(ctx context.Context, question string) rag.Answer
}

// Info is shown in the console header.
type Info struct {
	GeneratorModel string
	EmbeddingModel string
}

type answerMsg struct {
	question string
	answer   rag.Answer
}

type exchange struct {
	question string
	answer   *rag.Answer
}

// Model is the Bubble Tea model for the console.
type Model struct {
	ctx      context.Context
	asker    Asker
	info     Info
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	busy     bool
	ready    bool
	quitting bool
	status   string
}

// New creates a console model. ctx bounds every question asked.
func New(ctx context.Context, asker Asker, info Info) Model {
	ti := textinput.New()
	ti.Prompt = "❓ "
	ti.Placeholder = "Your medical question (exit to quit)"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		ctx:      ctx,
		asker:    asker,
		info:     info,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Type your medical question below. Type 'exit' to quit.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, resize and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		reserved := headerLines + 1 + ih + bh + 1
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.input.Width = max(10, msg.Width-8)
		m.refresh()
		return m, nil

	case answerMsg:
		m.busy = false
		for i := len(m.history) - 1; i >= 0; i-- {
			if m.history[i].answer == nil && m.history[i].question == msg.question {
				ans := msg.answer
				m.history[i].answer = &ans
				break
			}
		}
		m.status = statusFor(msg.answer)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" || m.busy {
		return m, nil
	}
	m.input.Reset()
	if IsExitCommand(q) {
		m.quitting = true
		return m, tea.Quit
	}
	m.busy = true
	m.status = "🔄 Processing your question..."
	m.history = append(m.history, exchange{question: q})
	m.refresh()
	return m, m.ask(q)
}

func (m Model) ask(q string) tea.Cmd {
	ctx, asker := m.ctx, m.asker
	return func() tea.Msg {
		return answerMsg{question: q, answer: asker.Answer(ctx, q)}
	}
}

func statusFor(a rag.Answer) string {
	switch a.Status {
	case rag.StatusAnswered:
		return "📚 Answered from the medical knowledge base."
	case rag.StatusTooShort:
		return rag.MsgTooShort
	default:
		return "⚠️ Error while generating response. Please try rephrasing your question or try again later."
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return mutedStyle.Render("I can help you with medical questions about diseases, symptoms, treatments, and health conditions.")
	}
	wrap := lipgloss.NewStyle().Width(max(20, m.viewport.Width-2))
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(questionStyle.Render("❓ "+ex.question) + "\n")
		if ex.answer == nil {
			b.WriteString(mutedStyle.Render("…") + "\n")
			continue
		}
		var out strings.Builder
		_ = cli.WriteAnswer(&out, *ex.answer, cli.OutputText)
		b.WriteString(wrap.Render(strings.TrimSpace(out.String())) + "\n")
	}
	return b.String()
}

const headerLines = 3

// View renders the console.
func (m Model) View() string {
	if m.quitting {
		return Farewell + "\n"
	}
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("🏥 Medical Assistant") + "\n" +
		mutedStyle.Render("LLM: "+m.info.GeneratorModel+"  Embeddings: "+m.info.EmbeddingModel) + "\n" +
		warnStyle.Render("⚠️ Not a substitute for professional medical advice. For emergencies call emergency services.")
	return header + "\n" +
		transcriptStyle.Render(m.viewport.View()) + "\n" +
		inputStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(m.status)
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Run starts the console on the terminal and blocks until the user leaves.
func Run(ctx context.Context, asker Asker, info Info) error {
	_, err := tea.NewProgram(New(ctx, asker, info), tea.WithContext(ctx)).Run()
	return err
}
