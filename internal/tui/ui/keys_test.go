package ui_test

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/linework/internal/tui/ui"
)

func TestDefaultKeyMap(t *testing.T) {
	t.Parallel()

	km := ui.DefaultKeyMap()

	assert.NotEmpty(t, km.Back.Keys())
	assert.NotEmpty(t, km.Forward.Keys())
	assert.NotEmpty(t, km.Start.Keys())
	assert.NotEmpty(t, km.End.Keys())
	assert.NotEmpty(t, km.Refs.Keys())
	assert.NotEmpty(t, km.Quit.Keys())
}

func TestKeyMapMatching(t *testing.T) {
	t.Parallel()

	km := ui.DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
		matches bool
	}{
		{"arrow up rewinds", tea.KeyMsg{Type: tea.KeyUp}, km.Back, true},
		{"vim k rewinds", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, km.Back, true},
		{"vim j advances", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, km.Forward, true},
		{"G jumps to the tail", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")}, km.End, true},
		{"r toggles references", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, km.Refs, true},
		{"q quits", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, km.Quit, true},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit, true},
		{"x matches nothing", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, km.Back, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.matches, key.Matches(tt.msg, tt.binding))
		})
	}
}
