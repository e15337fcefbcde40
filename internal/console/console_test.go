package console

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/predictimed/internal/rag"
)

type stubAsker struct {
	questions []string
}

func (s *stubAsker) Answer(_ context.Context, q string) rag.Answer {
	s.questions = append(s.questions, q)
	if len(strings.TrimSpace(q)) < rag.MinQuestionLength {
		return rag.Answer{Text: rag.MsgTooShort, Sources: []string{}, Status: rag.StatusTooShort}
	}
	return rag.Answer{
		Text:    "Diabetes is a chronic condition." + rag.Disclaimer,
		Sources: []string{"Medical Database - Diabetes"},
		Status:  rag.StatusAnswered,
	}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func typeAndEnter(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestIsExitCommand(t *testing.T) {
	for _, in := range []string{"exit", "QUIT", " bye ", "q"} {
		assert.True(t, IsExitCommand(in), in)
	}
	for _, in := range []string{"", "exit now", "quitting", "what is flu?"} {
		assert.False(t, IsExitCommand(in), in)
	}
}

func TestModel_AskAndAnswer(t *testing.T) {
	asker := &stubAsker{}
	m := sized(t, New(context.Background(), asker, Info{GeneratorModel: "llama3-70b-8192", EmbeddingModel: "bge"}))

	m, cmd := typeAndEnter(t, m, "What is diabetes?")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Processing your question")

	msg := cmd()
	require.IsType(t, answerMsg{}, msg)
	assert.Equal(t, []string{"What is diabetes?"}, asker.questions)

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.False(t, m.busy)
	view := m.View()
	assert.Contains(t, view, "Diabetes is a chronic condition.")
	assert.Contains(t, view, "1. Medical Database - Diabetes")
	assert.Contains(t, view, "llama3-70b-8192")
}

func TestModel_ShortQuestionWarning(t *testing.T) {
	asker := &stubAsker{}
	m := sized(t, New(context.Background(), asker, Info{}))
	m, cmd := typeAndEnter(t, m, "flu")
	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, rag.MsgTooShort, m.status)
}

func TestModel_IgnoresEmptyAndBusyInput(t *testing.T) {
	asker := &stubAsker{}
	m := sized(t, New(context.Background(), asker, Info{}))

	m, cmd := typeAndEnter(t, m, "   ")
	assert.Nil(t, cmd)
	assert.Empty(t, m.history)

	m, cmd = typeAndEnter(t, m, "What is asthma?")
	require.NotNil(t, cmd)
	_, cmd2 := typeAndEnter(t, m, "What is diabetes?")
	assert.Nil(t, cmd2, "no second question while one is in flight")
}

func TestModel_ExitCommands(t *testing.T) {
	for _, word := range []string{"exit", "quit", "bye", "q"} {
		asker := &stubAsker{}
		m := sized(t, New(context.Background(), asker, Info{}))
		m, cmd := typeAndEnter(t, m, word)
		require.NotNil(t, cmd, word)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Equal(t, Farewell+"\n", m.View())
		assert.Empty(t, asker.questions)
	}
}

func TestModel_CtrlC(t *testing.T) {
	m := sized(t, New(context.Background(), &stubAsker{}, Info{}))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
