package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	accept  key.Binding
	save    key.Binding
	create  key.Binding
	open    key.Binding
	history key.Binding
	delete  key.Binding
	clear   key.Binding
	login   key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		accept:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "accept suggestion")),
		save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save to history")),
		create:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create on Spotify")),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		history: key.NewBinding(key.WithKeys("ctrl+h"), key.WithHelp("ctrl+h", "history")),
		delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		clear:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear local copy")),
		login:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.accept, k.history},
		{k.save, k.create, k.open},
		{k.delete, k.clear, k.quit},
	}
}
