package tui

import "github.com/charmbracelet/bubbles/key"

// Keys are the monitor's key bindings.
type Keys struct {
	Quit         key.Binding
	Refresh      key.Binding
	Perspectives key.Binding
	Up           key.Binding
	Down         key.Binding
}

var keys = Keys{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Perspectives: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "perspectives"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "scroll"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "scroll"),
	),
}
