package transcript

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keybindings for the transcript TUI
type KeyMap struct {
	// Global
	Quit       key.Binding
	NewSession key.Binding

	// Editor
	Send key.Binding

	// History navigation
	LineUp       key.Binding
	LineDown     key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	JumpToBottom key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		NewSession: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new session"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		LineUp: key.NewBinding(
			key.WithKeys("up", "ctrl+k"),
			key.WithHelp("↑", "scroll up"),
		),
		LineDown: key.NewBinding(
			key.WithKeys("down", "ctrl+j"),
			key.WithHelp("↓", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		JumpToBottom: key.NewBinding(
			key.WithKeys("ctrl+g", "end"),
			key.WithHelp("ctrl+g", "jump to bottom"),
		),
	}
}
