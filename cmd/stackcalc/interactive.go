package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/value-runtime/runtime"
	"github.com/wippyai/value-runtime/stack"
)

// maxHistory bounds the output lines kept on screen.
const maxHistory = 12

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	topStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err     error
	rt      *runtime.Runtime
	input   textinput.Model
	cfg     runtime.Config
	history []string
}

type startedMsg struct {
	err error
	rt  *runtime.Runtime
}

func newInteractiveModel(cfg runtime.Config) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "87 -32 345.75 | pop | :p | :r | :q"
	ti.Prompt = "> "
	ti.Width = 40
	ti.Focus()
	return &interactiveModel{cfg: cfg, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.start)
}

func (m *interactiveModel) start() tea.Msg {
	rt, err := runtime.New(context.Background(), m.cfg)
	return startedMsg{rt: rt, err: err}
}

func (m *interactiveModel) close() {
	if m.rt != nil {
		m.rt.Close(context.Background())
		m.rt = nil
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.close()
			return m, tea.Quit

		case "enter":
			if m.rt == nil {
				return m, nil
			}
			line := m.input.Value()
			m.input.Reset()
			res, err := eval(m.rt, line)
			m.err = err
			if err == nil {
				m.record(res.lines...)
			}
			if res.quit {
				m.close()
				return m, tea.Quit
			}
			return m, nil
		}

	case startedMsg:
		m.rt = msg.rt
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) record(lines ...string) {
	m.history = append(m.history, lines...)
	if over := len(m.history) - maxHistory; over > 0 {
		m.history = m.history[over:]
	}
}

func (m *interactiveModel) View() string {
	if m.rt == nil {
		if m.err != nil {
			return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
		}
		return "Starting session..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Value Stack"))
	fmt.Fprintf(&b, " %s/%s  %d/%d\n\n", m.cfg.Backend, m.cfg.Policy, m.rt.Stack().Height(), stack.Capacity)

	b.WriteString(m.stackView())
	b.WriteString("\n")

	for _, line := range m.history {
		b.WriteString(resultStyle.Render(line))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("literal push • pop • :p print • :r reset • :q quit"))

	return b.String()
}

// stackView renders the top slots, top first, with each value's WIT type.
func (m *interactiveModel) stackView() string {
	const shown = 8

	s := m.rt.Stack()
	if s.IsEmpty() {
		return helpStyle.Render("  (empty)") + "\n"
	}

	var b strings.Builder
	for i := 0; i < shown; i++ {
		v, ok := s.PeekN(i)
		if !ok {
			break
		}
		text, err := m.rt.Format(v)
		if err != nil {
			text = err.Error()
		}
		row := fmt.Sprintf("%4d  %s  %s", s.Height()-1-i, typeStyle.Render(v.Tag().WITName()), text)
		if i == 0 {
			row = topStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	if s.Height() > shown {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  ... %d more", s.Height()-shown)))
		b.WriteString("\n")
	}
	return b.String()
}

func runInteractive(cfg runtime.Config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
