package main

import (
	"cmp"
	"fmt"
	"math"
	"math/cmplx"
	"slices"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"qudeck/statevector"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres s within width visible columns.
func padCenter(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// wire draws sym in the middle of a cell-wide wire segment.
func wire(sym string) string {
	dashL := (cellW - 1) / 2
	return strings.Repeat("─", dashL) + sym + strings.Repeat("─", cellW-dashL-1)
}

// boxed returns the three lines of a gate box labelled name.
func boxed(name string) (top, mid, bot string) {
	margin := (cellW - gateBoxW) / 2
	right := cellW - margin - gateBoxW
	top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", right)
	mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+padCenter(name, gateNameW)+"├") + strings.Repeat("─", right)
	bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", right)
	return
}

// probBar renders p in [0, 1] as a fixed-width bar.
func probBar(p float64) string {
	n := int(math.Round(p * probBarW))
	n = max(0, min(n, probBarW))
	return probBarStyle.Render(strings.Repeat("█", n)) + dimStyle.Render(strings.Repeat("░", probBarW-n))
}

// formatComplex renders z with three decimals.
func formatComplex(z complex128) string {
	re, im := real(z), imag(z)
	if math.Abs(re) < 5e-4 {
		re = 0
	}
	if math.Abs(im) < 5e-4 {
		return fmt.Sprintf("%.3f", re)
	}
	return fmt.Sprintf("%.3f%+.3fi", re, im)
}

// ──────────────────────────── Cell rendering ────────────────────────────

type cellHighlight int

const (
	hlNone cellHighlight = iota
	hlCursor
	hlTargetSelect
)

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo, hl cellHighlight) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dblVertRow := strings.Repeat(" ", halfW) + measureConnectorStyle.Render("║") + strings.Repeat(" ", cellW-halfW-1)

	if hl != hlNone {
		bdr := cursorBoxStyle
		if hl == hlTargetSelect {
			bdr = targetSelectStyle
		}
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1
		centre := func(sym string) string {
			return bdr.Render("║") + strings.Repeat("─", dashL) + sym + strings.Repeat("─", dashR) + bdr.Render("║")
		}

		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")
		switch {
		case info.isControl:
			mid = centre(gateStyle.Render("●"))
		case info.isTarget:
			mid = centre(gateStyle.Render("⊕"))
		case info.op != nil:
			mid = bdr.Render("║") + "─┤" + gateStyle.Render(padCenter(opDisplayName(*info.op), gateNameW)) + "├─" + bdr.Render("║")
		case info.passThrough:
			mid = centre("┼")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}
		return
	}

	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}

	switch {
	case info.isControl:
		mid = wire(gateStyle.Render("●"))
	case info.isTarget:
		mid = wire(gateStyle.Render("⊕"))
	case info.op != nil:
		top, mid, bot = boxed(opDisplayName(*info.op))
	case info.passThrough:
		mid = wire("┼")
	case info.measureBelow:
		top = dblVertRow
		if info.vertAbove {
			top = vertRow
		}
		mid = wire(measureConnectorStyle.Render("╫"))
	default:
		mid = strings.Repeat("─", cellW)
	}
	if info.measureBelow {
		bot = dblVertRow
	}
	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Qudit Circuit  d=%d", m.circ.Dimension)))
	sb.WriteString("\n\n")

	availWidth := width - labelVisualW - 4
	displaySteps := max(availWidth/cellW, 1)

	startStep := 0
	if m.cursorStep >= displaySteps {
		startStep = m.cursorStep - displaySteps + 1
	}
	if startStep > 0 {
		fmt.Fprintf(&sb, "  ◀ showing steps %d–%d\n", startStep, startStep+displaySteps-1)
	}

	header := strings.Repeat(" ", labelVisualW)
	for step := startStep; step < startStep+displaySteps; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(header + "\n")

	for qudit := range m.circ.NumQudits {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := quditLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", qudit))) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := startStep; step < startStep+displaySteps; step++ {
			hl := hlNone
			if step == m.cursorStep && qudit == m.cursorQudit && m.focus != focusText {
				hl = hlCursor
			} else if step == m.cursorStep && qudit == m.targetQudit && m.focus == focusSelectTarget {
				hl = hlTargetSelect
			}
			top, mid, bot := renderCell(cellAt(m.circ, step, qudit), hl)
			topLine += top
			midLine += mid
			botLine += bot
		}
		sb.WriteString(topLine + "\n" + midLine + "\n" + botLine + "\n")
	}

	// Measurement record row
	if measured := m.circ.Measured(); len(measured) > 0 {
		label := fmt.Sprintf("c%d", len(measured))
		line := measureConnectorStyle.Render(fmt.Sprintf("%-5s", label)) + dimStyle.Render("══")
		for step := startStep; step < startStep+displaySteps; step++ {
			q := measureAtStep(m.circ, step)
			if q < 0 {
				line += dimStyle.Render(strings.Repeat("═", cellW))
				continue
			}
			bit := fmt.Sprintf("%d", q)
			dashL := (cellW - 1) / 2
			dashR := max(cellW-dashL-1-len(bit), 0)
			line += dimStyle.Render(strings.Repeat("═", dashL)) +
				measureConnectorStyle.Render("╩"+bit) +
				dimStyle.Render(strings.Repeat("═", dashR))
		}
		sb.WriteString(line + "\n")
	}

	if m.focus == focusSelectTarget {
		fmt.Fprintf(&sb, "\n  %s", activeGateStyle.Render(m.pendingGate))
		sb.WriteString("  Select target qudit: ")
		sb.WriteString(targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQudit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	} else {
		fmt.Fprintf(&sb, "\n  Position: Step %d, Qudit %d  Depth %d", m.cursorStep, m.cursorQudit, m.circ.Depth())
		if m.statusMsg != "" {
			fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderTextPanel renders the circuit text editor panel.
func (m Model) renderTextPanel(width, height int) string {
	var sb strings.Builder

	title := "Circuit Text"
	if m.focus == focusText {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	if m.textErr != nil {
		sb.WriteString("  " + failStyle.Render("✗"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.textEditor.View())
	if m.textErr != nil {
		sb.WriteString("\n" + dimStyle.Render(ansi.Truncate(m.textErr.Error(), max(width-4, 8), "…")))
	}

	return textPanelStyle.Width(width).Height(height).Render(sb.String())
}

// renderStatePanel renders the exact distribution, the Pauli frame and the
// last validation result.
func (m Model) renderStatePanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("State"))
	sb.WriteString("\n")

	switch {
	case m.stateErr != nil:
		sb.WriteString(failStyle.Render(m.stateErr.Error()))
		sb.WriteString("\n")
	case m.state != nil:
		basis := m.state.Basis(m.cfg.ProbCutoff)
		slices.SortStableFunc(basis, func(a, b statevector.BasisState) int { return cmp.Compare(b.Prob, a.Prob) })
		for i, b := range basis {
			if i == maxProbRows {
				sb.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", len(basis)-maxProbRows)))
				sb.WriteString("\n")
				break
			}
			fmt.Fprintf(&sb, "%-*s %s %5.1f%%\n", m.circ.NumQudits+2, b.Label, probBar(b.Prob), 100*b.Prob)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(activeGateStyle.Render("Frame "))
	if m.focus == focusFrame {
		sb.WriteString(m.frameInput.View())
	} else if m.frame != nil {
		sb.WriteString(m.frame.String())
		if m.state != nil {
			if ev, err := m.state.Expectation(m.frame); err == nil {
				fmt.Fprintf(&sb, "  ⟨P⟩ = %s  |%.3f|", formatComplex(ev), cmplx.Abs(ev))
			}
		}
	} else {
		sb.WriteString(dimStyle.Render("f to set"))
	}
	sb.WriteString("\n")

	sb.WriteString(activeGateStyle.Render("Check "))
	switch {
	case m.validating:
		sb.WriteString(dimStyle.Render("sampling…"))
	case m.validateErr != nil:
		sb.WriteString(failStyle.Render(m.validateErr.Error()))
	case m.report != nil:
		verdict := passStyle.Render("PASS")
		if !m.report.Passed {
			verdict = failStyle.Render("FAIL")
		}
		fmt.Fprintf(&sb, "%s  TVD %.4f (limit %.2f, %d samples)", verdict, m.report.TVD, m.report.Threshold, m.report.Samples)
	default:
		sb.WriteString(dimStyle.Render("v to sample"))
	}

	return statePanelStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Qudit  ←→/hl Step  +/- Qudits  [/] Dimension")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Add gate  ")
	sb.WriteString(activeGateStyle.Render("e"))
	sb.WriteString(" Edit\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab Text  f Frame  v Validate  c Compact  Bksp Delete  ^R Reset  ^S Save  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites overlay on top of bg with its top-left corner at
// visible column x of line y.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	for i, ovLine := range strings.Split(overlay, "\n") {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		bgLines[row] = spliceLineAt(bgLines[row], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces the visible columns [x, x+width(overlay)) of line.
func spliceLineAt(line, overlay string, x int) string {
	prefix := ansi.Truncate(line, x, "")
	if pad := x - ansi.StringWidth(prefix); pad > 0 {
		prefix += strings.Repeat(" ", pad)
	}
	suffix := ansi.TruncateLeft(line, x+ansi.StringWidth(overlay), "")
	return prefix + overlay + suffix
}
