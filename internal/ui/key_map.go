package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	nextPage  key.Binding
	prevPage  key.Binding
	watchlist key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		nextPage:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next page")),
		prevPage:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev page")),
		watchlist: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watchlist")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.prevPage, k.nextPage, k.watchlist},
		{k.back, k.quit},
	}
}
