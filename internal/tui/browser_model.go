package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/linework/internal/app"
	"github.com/felixgeelhaar/linework/internal/domain/engine"
	"github.com/felixgeelhaar/linework/internal/tui/ui"
)

// browserModel is the Bubble Tea model for the step log browser. The
// selection row is the session cursor: rewinding mutes every step past
// it, exactly what a renderer consuming the visible prefix would show.
type browserModel struct {
	lw       *app.Linework
	script   string
	views    []engine.StepView
	cursor   int
	showRefs bool
	styles   ui.Styles
	keys     ui.KeyMap
	width    int
	height   int
}

// newBrowserModel creates a browser over the application's current figure.
func newBrowserModel(lw *app.Linework) browserModel {
	return browserModel{
		lw:     lw,
		script: lw.Status().Script,
		views:  lw.Steps(),
		cursor: lw.Cursor(),
		styles: ui.DefaultStyles(),
		keys:   ui.DefaultKeyMap(),
		width:  80,
		height: 24,
	}
}

// Cursor returns the current cursor position (for testing).
func (m browserModel) Cursor() int {
	return m.cursor
}

// Init initializes the model.
func (m browserModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages.
func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			return m.moveTo(m.cursor - 1), nil

		case key.Matches(msg, m.keys.Forward):
			return m.moveTo(m.cursor + 1), nil

		case key.Matches(msg, m.keys.Start):
			return m.moveTo(0), nil

		case key.Matches(msg, m.keys.End):
			return m.moveTo(len(m.views)), nil

		case key.Matches(msg, m.keys.Refs):
			m.showRefs = !m.showRefs
			return m, nil
		}
	}

	return m, nil
}

// moveTo moves the session cursor and mirrors where it landed.
func (m browserModel) moveTo(position int) browserModel {
	m.cursor = m.lw.MoveCursor(context.Background(), position)
	return m
}

// View renders the model.
func (m browserModel) View() string {
	var b strings.Builder

	title := "Step log"
	if m.script != "" {
		title = "Step log: " + m.script
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")

	if len(m.views) == 0 {
		b.WriteString(m.styles.Help.Render("The figure is empty. Replay a script first."))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Help.Render("Press q or Esc to exit"))
		return b.String()
	}

	summary := fmt.Sprintf("%d steps, %d visible", len(m.views), m.cursor)
	b.WriteString(m.styles.Help.Render(summary))
	b.WriteString("\n\n")

	for i, view := range m.views {
		prefix := "  "
		if i == m.cursor-1 {
			prefix = "> "
		}

		line := prefix + FormatStep(view, m.showRefs)
		if len(line) > m.width-2 && m.width > 7 {
			line = line[:m.width-5] + "..."
		}

		switch {
		case i == m.cursor-1:
			line = m.styles.ListItemActive.Render(line)
		case i >= m.cursor:
			line = m.styles.ListItemMuted.Render(line)
		default:
			line = m.styles.ListItem.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("↑/k rewind • ↓/j advance • g start • G end • r refs • q quit"))

	return b.String()
}
