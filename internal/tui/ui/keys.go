package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap contains the key bindings for the step browser.
type KeyMap struct {
	// Navigation
	Back    key.Binding
	Forward key.Binding
	Start   key.Binding
	End     key.Binding

	// Display
	Refs key.Binding

	// General
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Back: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "rewind one step"),
		),
		Forward: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "advance one step"),
		),
		Start: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "rewind everything"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "jump to the tail"),
		),
		Refs: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "toggle references"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
