package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the feed key bindings.
type KeyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Jump    key.Binding // 1-9 jump to page, 0 to page 10
	Refresh key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next"),
		),
		Jump: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-0", "page"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) bindings() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Jump, k.Refresh, k.Quit}
}
