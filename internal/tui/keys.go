package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextKind    key.Binding
	PrevKind    key.Binding
	Copy        key.Binding
	CopyLink    key.Binding
	PreviewUp   key.Binding
	PreviewDown key.Binding
	Quit        key.Binding
}

// ShortHelp and FullHelp make keyMap a help.KeyMap for the status line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextKind, k.Copy, k.CopyLink, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PreviewUp, k.PreviewDown},
		{k.NextKind, k.PrevKind},
		{k.Copy, k.CopyLink, k.Quit},
	}
}

var keys = keyMap{
	Up:          key.NewBinding(key.WithKeys("up", "ctrl+k"), key.WithHelp("↑", "prev")),
	Down:        key.NewBinding(key.WithKeys("down", "ctrl+j"), key.WithHelp("↓", "next")),
	NextKind:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "kind")),
	PrevKind:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev kind")),
	Copy:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "copy lat,lon")),
	CopyLink:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("C-o", "copy maps link")),
	PreviewUp:   key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("C-u", "preview up")),
	PreviewDown: key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("C-d", "preview down")),
	Quit:        key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}
