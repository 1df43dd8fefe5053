package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the booking TUI. Letters are kept
// off the destination screen, where they go to the text input.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Increase key.Binding
	Decrease key.Binding

	Select key.Binding // Submit, continue or confirm the current screen.
	Back   key.Binding // Previous screen, or close an open panel.
	Toggle key.Binding // Safety briefing checkbox.

	// In-flight controls.
	Warmer    key.Binding
	Cooler    key.Binding
	Louder    key.Binding
	Quieter   key.Binding
	Emergency key.Binding
	Chat      key.Binding

	NewTrip key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Increase: key.NewBinding(
		key.WithKeys("+", "right", "up"),
		key.WithHelp("+", "more"),
	),
	Decrease: key.NewBinding(
		key.WithKeys("-", "left", "down"),
		key.WithHelp("-", "fewer"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "continue"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "space", "x"),
		key.WithHelp("Space", "tick"),
	),
	Warmer: key.NewBinding(
		key.WithKeys("T"),
		key.WithHelp("T", "warmer"),
	),
	Cooler: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "cooler"),
	),
	Louder: key.NewBinding(
		key.WithKeys("V"),
		key.WithHelp("V", "louder"),
	),
	Quieter: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "quieter"),
	),
	Emergency: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "emergency"),
	),
	Chat: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "chat"),
	),
	NewTrip: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "new trip"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}
