package main

import (
	"fmt"
	"strings"

	"qudeck/circuit"
)

// menuItem represents a single gate choice in the menu.
type menuItem struct {
	name            string
	gate            string // circuit op name
	symbol          string
	needsTarget     bool
	needsMultiplier bool
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// gateMenu defines the gate picker categories and items.
var gateMenu = []menuCategory{
	{
		name: "Pauli",
		items: []menuItem{
			{name: "Shift (X)", gate: "X", symbol: "X"},
			{name: "Clock (Z)", gate: "Z", symbol: "Z"},
			{name: "Identity", gate: "I", symbol: "I"},
		},
	},
	{
		name: "Clifford",
		items: []menuItem{
			{name: "Fourier (H)", gate: "H", symbol: "H"},
			{name: "Phase (P)", gate: "P", symbol: "P"},
			{name: "Multiply", gate: circuit.Mul, symbol: "M(a)", needsMultiplier: true},
		},
	},
	{
		name: "Two Qudit",
		items: []menuItem{
			{name: "SUM (CNOT)", gate: "CNOT", symbol: "●─⊕", needsTarget: true},
		},
	},
	{
		name: "Measurement",
		items: []menuItem{
			{name: "Measure Z", gate: circuit.Measure, symbol: "⟨M⟩"},
		},
	},
}

// renderMenu renders the floating gate-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Add Gate (d=%d)", m.circ.Dimension)))
	sb.WriteString("\n")

	for i, cat := range gateMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(gateMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 42)))
	sb.WriteString("\n")

	cat := gateMenu[m.menuCat]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsTarget {
			sb.WriteString(dimStyle.Render(" →target"))
		}
		if item.needsMultiplier {
			sb.WriteString(dimStyle.Render(" (a coprime to d)"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
