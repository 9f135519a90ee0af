package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines key bindings used across the TUI.
type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Refresh  key.Binding

	// Analysis explorer filters
	FilterTicker     key.Binding
	FilterSignal     key.Binding
	FilterActionable key.Binding

	// Run a fresh analysis for the selected ticker
	RunAnalysis key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),

	FilterTicker:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle ticker")),
	FilterSignal:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle signal")),
	FilterActionable: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "cycle actionable")),

	RunAnalysis: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "analyze ticker")),
}
