package main

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	cellW        = 11 // width of each step column in characters
	labelVisualW = 7  // visual width of qudit label area
	gateNameW    = 5  // width of gate name inside box
	gateBoxW     = 7  // ┤ + gateNameW + ├
	probBarW     = 16 // width of a probability bar
	maxProbRows  = 8
)

// Palette (Tokyo Night).
const (
	orange = lipgloss.Color("#ff9e64")
	yellow = lipgloss.Color("#e0af68")
	green  = lipgloss.Color("#9ece6a")
	teal   = lipgloss.Color("#73daca")
	cyan   = lipgloss.Color("#7dcfff")
	blue   = lipgloss.Color("#7aa2f7")
	purple = lipgloss.Color("#bb9af7")
	red    = lipgloss.Color("#f7768e")
	fg     = lipgloss.Color("#c0caf5")
	muted  = lipgloss.Color("#565f89")
)

// panel returns a rounded-border box in the given colour.
func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func text(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return text(c).Bold(true)
}

var (
	circuitStyle    = panel(blue).Padding(1)
	textPanelStyle  = panel(purple)
	statePanelStyle = panel(cyan)
	controlsStyle   = panel(green)
	menuBorderStyle = panel(orange)

	titleStyle        = bold(orange)
	cursorBoxStyle    = bold(orange)
	menuSelectedStyle = bold(orange)
	targetSelectStyle = bold(purple)
	gateStyle         = bold(teal)
	passStyle         = bold(green)
	failStyle         = bold(red)

	measureConnectorStyle = bold(yellow)
	activeGateStyle       = text(yellow)
	quditLabelStyle       = text(cyan)
	probBarStyle          = text(teal)
	menuNormalStyle       = text(fg)
	dimStyle              = text(muted)
)
