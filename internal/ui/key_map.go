package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Single-letter bindings only apply while the list has focus, so they never swallow typed text.
type keyMap struct {
	tab       key.Binding
	up        key.Binding
	down      key.Binding
	submit    key.Binding
	back      key.Binding
	input     key.Binding
	toggle    key.Binding
	edit      key.Binding
	remove    key.Binding
	favorite  key.Binding
	next      key.Binding
	prev      key.Binding
	quit      key.Binding
	forceQuit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		tab:       key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch view")),
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "list")),
		input:     key.NewBinding(key.WithKeys("i", "/"), key.WithHelp("i", "type")),
		toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("x", "complete")),
		edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		remove:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		favorite:  key.NewBinding(key.WithKeys("f", " "), key.WithHelp("f", "favorite")),
		next:      key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		prev:      key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		forceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.tab, k.input, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.tab, k.up, k.down, k.submit, k.back},
		{k.toggle, k.edit, k.remove},
		{k.favorite, k.next, k.prev},
		{k.input, k.quit},
	}
}

// watchlistHelp lists the bindings shown under the watchlist.
func (k keyMap) watchlistHelp(inputFocused bool) []key.Binding {
	if inputFocused {
		return []key.Binding{k.submit, k.back, k.tab}
	}
	return []key.Binding{k.up, k.down, k.toggle, k.edit, k.remove, k.input, k.tab, k.quit}
}

// moviesHelp lists the bindings shown under the movie search.
func (k keyMap) moviesHelp(inputFocused bool) []key.Binding {
	if inputFocused {
		return []key.Binding{k.submit, k.back, k.tab}
	}
	return []key.Binding{k.up, k.down, k.favorite, k.prev, k.next, k.input, k.tab, k.quit}
}
