// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the workspace.
type KeyMap struct {
	// Tabs
	PrevTab      key.Binding
	NextTab      key.Binding
	MoveTabLeft  key.Binding
	MoveTabRight key.Binding
	NewTab       key.Binding
	CloseTab     key.Binding
	Preferences  key.Binding

	// Windows
	NextWindow   key.Binding
	PrevWindow   key.Binding
	MoveToWindow key.Binding
	Detach       key.Binding
	NewWindow    key.Binding
	CloseWindow  key.Binding

	// Keyboard drag
	Grab        key.Binding
	Drop        key.Binding
	DropOutside key.Binding
	Cancel      key.Binding

	// General
	Help         key.Binding
	ToggleStatus key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevTab: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous tab"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next tab"),
		),
		MoveTabLeft: key.NewBinding(
			key.WithKeys("H", "shift+left"),
			key.WithHelp("H", "move tab left"),
		),
		MoveTabRight: key.NewBinding(
			key.WithKeys("L", "shift+right"),
			key.WithHelp("L", "move tab right"),
		),
		NewTab: key.NewBinding(
			key.WithKeys("t", "ctrl+t"),
			key.WithHelp("t", "new tab"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("x", "ctrl+w"),
			key.WithHelp("x", "close tab"),
		),
		Preferences: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "preferences"),
		),

		NextWindow: key.NewBinding(
			key.WithKeys("tab", "j"),
			key.WithHelp("tab", "next window"),
		),
		PrevWindow: key.NewBinding(
			key.WithKeys("shift+tab", "k"),
			key.WithHelp("shift+tab", "previous window"),
		),
		MoveToWindow: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move tab to next window"),
		),
		Detach: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "open tab in new window"),
		),
		NewWindow: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "new window"),
		),
		CloseWindow: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "close window"),
		),

		Grab: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "pick up tab"),
		),
		Drop: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "drop tab"),
		),
		DropOutside: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "drop outside windows"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel drag"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		ToggleStatus: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "toggle status bar"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevTab, k.NextTab, k.NextWindow, k.Grab, k.MoveToWindow, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevTab, k.NextTab, k.MoveTabLeft, k.MoveTabRight, k.NewTab, k.CloseTab, k.Preferences}, // Tabs
		{k.NextWindow, k.PrevWindow, k.MoveToWindow, k.Detach, k.NewWindow, k.CloseWindow},          // Windows
		{k.Grab, k.Drop, k.DropOutside, k.Cancel},                                                   // Drag
		{k.Help, k.ToggleStatus, k.Quit},                                                            // General
	}
}

// DragKeyMap returns the bindings that are live while a tab is picked up.
// Movement reuses the tab and window keys.
func (k KeyMap) DragKeyMap() []key.Binding {
	return []key.Binding{k.PrevTab, k.NextTab, k.NextWindow, k.PrevWindow, k.Drop, k.DropOutside, k.Cancel}
}
