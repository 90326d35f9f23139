package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Back        key.Binding
	Confirm     key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	SwitchPanel key.Binding
	Add         key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Reset       key.Binding
	Save        key.Binding
	MoreQudits  key.Binding
	LessQudits  key.Binding
	DimUp       key.Binding
	DimDown     key.Binding
	Frame       key.Binding
	Validate    key.Binding
	Compact     key.Binding
}

var keys = keyMap{
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Confirm:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "ok")),
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "qudit up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "qudit down")),
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "step back")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "step forward")),
	SwitchPanel: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "text editor")),
	Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add gate")),
	Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit gate")),
	Delete:      key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("bksp", "delete")),
	Reset:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^R", "clear")),
	Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "save")),
	MoreQudits:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "add qudit")),
	LessQudits:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "remove qudit")),
	DimUp:       key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "dimension up")),
	DimDown:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "dimension down")),
	Frame:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "pauli frame")),
	Validate:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "validate")),
	Compact:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compact")),
}
