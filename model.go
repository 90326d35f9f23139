package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"qudeck/circuit"
	"qudeck/internal/config"
	"qudeck/pauli"
	"qudeck/statevector"
	"qudeck/validate"
)

// saveFile is where ctrl+s writes the circuit text.
const saveFile = "circuit.qdc"

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusText
	focusMenu
	focusSelectTarget
	focusInputMultiplier
	focusFrame
	focusEditGate
	focusEditMultiplier
	focusEditTarget
	focusEditControl
)

// validationMsg carries the result of an asynchronous validation run.
type validationMsg struct {
	run    int
	report *validate.Report
	err    error
}

// Model represents the TUI application state.
type Model struct {
	cfg  *config.Config
	log  zerolog.Logger
	seed func() uint64

	circ     *circuit.Circuit // single source of truth
	state    *statevector.State
	stateErr error

	cursorQudit int
	cursorStep  int
	width       int
	height      int
	focus       focus
	statusMsg   string // transient status message (e.g. save confirmation)

	textEditor textarea.Model
	lastText   string
	textErr    error

	// Menu state
	menuCat  int
	menuItem int

	// Placement state
	pendingGate string
	targetQudit int
	multInput   string

	// Pauli frame
	frameInput textinput.Model
	frame      *pauli.String

	// Edit gate state
	editOp      *circuit.Op // copy of the op being edited
	editMenuIdx int

	// Validation state
	validating  bool
	runs        int
	report      *validate.Report
	validateErr error
}

func newModel(cfg *config.Config, log zerolog.Logger, c *circuit.Circuit, seed func() uint64) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit circuit text here..."
	ta.SetWidth(40)
	ta.SetHeight(16)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)

	ti := textinput.New()
	ti.Placeholder = "w1 X Z2 I  or  (X)(Z2)(I)"
	ti.Prompt = ""
	ti.CharLimit = 256

	m := Model{
		cfg:        cfg,
		log:        log,
		seed:       seed,
		circ:       c,
		textEditor: ta,
		frameInput: ti,
		focus:      focusCircuit,
	}
	m.syncFromCircuit()
	return m
}

// syncFromCircuit refreshes every view derived from the circuit.
func (m *Model) syncFromCircuit() {
	text := circuit.Format(m.circ)
	m.textEditor.SetValue(text)
	m.lastText = text
	m.textErr = nil
	m.refreshState()
}

// refreshState re-evolves the circuit and drops results that no longer
// match its shape.
func (m *Model) refreshState() {
	m.state, m.stateErr = statevector.Evolve(m.circ, -1)
	if m.frame != nil && (m.frame.NumQudits() != m.circ.NumQudits || m.frame.Dimension() != m.circ.Dimension) {
		m.frame = nil
	}
	m.report = nil
	m.validateErr = nil
	if m.validating {
		m.runs++
		m.validating = false
	}
}

// parseTextInput rebuilds the circuit from the text editor when it changed
// and parses. A parse error keeps the previous circuit.
func (m *Model) parseTextInput() {
	text := m.textEditor.Value()
	if text == m.lastText {
		return
	}
	m.lastText = text
	c, err := circuit.ParseText(text)
	if err != nil {
		m.textErr = err
		return
	}
	m.textErr = nil
	m.circ = c
	m.cursorQudit = min(m.cursorQudit, c.NumQudits-1)
	m.refreshState()
}

// placeGate places gate at the cursor. target is the CNOT target, -1
// otherwise; mult is the MUL multiplier. An op already on the cursor cell is
// replaced. Returns false if the placement is blocked.
func (m *Model) placeGate(gate string, target, mult int) bool {
	op := circuit.Op{Gate: gate, Target: m.cursorQudit, Control: -1, Multiplier: mult, Step: m.cursorStep}
	if target >= 0 {
		op.Control, op.Target = m.cursorQudit, target
	}

	next := m.circ.Clone()
	for _, q := range op.Qudits() {
		next.RemoveAt(m.cursorStep, q)
	}
	if err := next.PlaceAt(op); err != nil {
		m.statusMsg = fmt.Sprintf("Cannot place: %v", err)
		m.clearPending()
		return false
	}
	m.circ = next
	m.clearPending()

	m.cursorStep++
	m.syncFromCircuit()
	return true
}

func (m *Model) clearPending() {
	m.pendingGate = ""
	m.multInput = ""
}

// replaceOp swaps orig for updated, restoring orig if updated does not fit.
func (m *Model) replaceOp(orig, updated circuit.Op) error {
	next := m.circ.Clone()
	next.RemoveAt(orig.Step, orig.Target)
	if err := next.PlaceAt(updated); err != nil {
		return err
	}
	m.circ = next
	m.syncFromCircuit()
	return nil
}

// fitsState reports whether n qudits of dimension d fit in a statevector.
func fitsState(n, d int) bool {
	size := 1
	for range n {
		size *= d
		if size > statevector.MaxAmplitudes {
			return false
		}
	}
	return true
}

// setDimension rebuilds the circuit for dimension d, dropping ops that are
// not valid there.
func (m *Model) setDimension(d int) {
	if d < 2 {
		return
	}
	if !fitsState(m.circ.NumQudits, d) {
		m.statusMsg = statevector.ErrTooLarge.Error()
		return
	}
	next, err := circuit.New(m.circ.NumQudits, d)
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	dropped := 0
	for _, op := range m.circ.Ops {
		if next.PlaceAt(op) != nil {
			dropped++
		}
	}
	m.circ = next
	m.syncFromCircuit()
	m.statusMsg = fmt.Sprintf("Dimension %d", d)
	if dropped > 0 {
		m.statusMsg += fmt.Sprintf(", dropped %d op(s)", dropped)
	}
}

// selectTarget starts target selection next to the cursor qudit.
func (m *Model) selectTarget() bool {
	if m.circ.NumQudits < 2 {
		m.statusMsg = "CNOT needs at least two qudits"
		return false
	}
	m.targetQudit = m.cursorQudit + 1
	if m.targetQudit >= m.circ.NumQudits {
		m.targetQudit = m.cursorQudit - 1
	}
	m.focus = focusSelectTarget
	return true
}

// moveSelection moves sel by delta, skipping excluded qudits.
func (m *Model) moveSelection(sel, delta int, excluded ...int) int {
	for next := sel + delta; next >= 0 && next < m.circ.NumQudits; next += delta {
		if !slices.Contains(excluded, next) {
			return next
		}
	}
	return sel
}

// runValidation samples a snapshot of the circuit in the background.
func (m Model) runValidation() tea.Cmd {
	c := m.circ.Clone()
	run := m.runs
	r := &validate.Runner{
		Sampler:   statevector.Engine{},
		Samples:   m.cfg.Samples,
		Workers:   m.cfg.Workers,
		Seed:      m.seed(),
		Threshold: m.cfg.TVDThreshold,
		Cutoff:    m.cfg.ProbCutoff,
		Log:       m.log,
	}
	return func() tea.Msg {
		report, err := r.Run(context.Background(), c)
		return validationMsg{run: run, report: report, err: err}
	}
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textEditor.SetWidth(max(msg.Width/3-6, 20))
		m.textEditor.SetHeight(max((msg.Height-8)/2-4, 4))
		m.frameInput.Width = max(msg.Width/3-12, 10)

	case validationMsg:
		if msg.run != m.runs {
			break // circuit changed while sampling
		}
		m.validating = false
		m.report, m.validateErr = msg.report, msg.err

	case tea.KeyMsg:
		m.statusMsg = ""
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			return m.updateCircuit(msg)

		case focusMenu:
			m.updateMenu(msg)

		case focusSelectTarget:
			switch {
			case key.Matches(msg, keys.Back):
				m.focus = focusCircuit
				m.clearPending()
			case key.Matches(msg, keys.Up):
				m.targetQudit = m.moveSelection(m.targetQudit, -1, m.cursorQudit)
			case key.Matches(msg, keys.Down):
				m.targetQudit = m.moveSelection(m.targetQudit, 1, m.cursorQudit)
			case key.Matches(msg, keys.Confirm):
				m.placeGate(m.pendingGate, m.targetQudit, 0)
				m.focus = focusCircuit
			}

		case focusInputMultiplier, focusEditMultiplier:
			m.updateMultiplier(msg)

		case focusFrame:
			switch msg.String() {
			case "esc":
				m.frameInput.Blur()
				m.focus = focusCircuit
			case "enter":
				p, err := parseFrame(m.frameInput.Value(), m.circ.NumQudits, m.circ.Dimension)
				if err != nil {
					m.statusMsg = fmt.Sprintf("Frame: %v", err)
					break
				}
				m.frame = p
				m.frameInput.Blur()
				m.focus = focusCircuit
			default:
				var cmd tea.Cmd
				m.frameInput, cmd = m.frameInput.Update(msg)
				cmds = append(cmds, cmd)
			}

		case focusEditGate:
			m.updateEditGate(msg)

		case focusEditTarget, focusEditControl:
			m.updateEditLeg(msg)

		case focusText:
			if key.Matches(msg, keys.SwitchPanel) {
				m.focus = focusCircuit
				m.textEditor.Blur()
				break
			}
			var cmd tea.Cmd
			m.textEditor, cmd = m.textEditor.Update(msg)
			cmds = append(cmds, cmd)
			m.parseTextInput()
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateCircuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.SwitchPanel):
		m.focus = focusText
		cmd := m.textEditor.Focus()
		return m, cmd
	case key.Matches(msg, keys.Reset):
		m.circ.Clear()
		m.cursorStep = 0
		m.syncFromCircuit()
	case key.Matches(msg, keys.Save):
		if err := os.WriteFile(saveFile, []byte(circuit.Format(m.circ)), 0o644); err != nil {
			m.statusMsg = fmt.Sprintf("Save error: %v", err)
		} else {
			m.statusMsg = "Saved " + saveFile
			m.log.Info().Str("file", saveFile).Int("ops", len(m.circ.Ops)).Msg("circuit saved")
		}
	case key.Matches(msg, keys.Up):
		m.cursorQudit = max(m.cursorQudit-1, 0)
	case key.Matches(msg, keys.Down):
		m.cursorQudit = min(m.cursorQudit+1, m.circ.NumQudits-1)
	case key.Matches(msg, keys.Left):
		m.cursorStep = max(m.cursorStep-1, 0)
	case key.Matches(msg, keys.Right):
		m.cursorStep++
	case key.Matches(msg, keys.MoreQudits):
		if !fitsState(m.circ.NumQudits+1, m.circ.Dimension) {
			m.statusMsg = statevector.ErrTooLarge.Error()
			break
		}
		_ = m.circ.Resize(m.circ.NumQudits + 1)
		m.syncFromCircuit()
	case key.Matches(msg, keys.LessQudits):
		if m.circ.NumQudits > 1 {
			_ = m.circ.Resize(m.circ.NumQudits - 1)
			m.cursorQudit = min(m.cursorQudit, m.circ.NumQudits-1)
			m.syncFromCircuit()
		}
	case key.Matches(msg, keys.DimUp):
		m.setDimension(m.circ.Dimension + 1)
	case key.Matches(msg, keys.DimDown):
		m.setDimension(m.circ.Dimension - 1)
	case key.Matches(msg, keys.Add):
		m.focus = focusMenu
		m.menuCat, m.menuItem = 0, 0
	case key.Matches(msg, keys.Delete):
		m.circ.RemoveAt(m.cursorStep, m.cursorQudit)
		m.syncFromCircuit()
	case key.Matches(msg, keys.Compact):
		m.circ.Compact()
		m.cursorStep = min(m.cursorStep, max(m.circ.MaxSteps-1, 0))
		m.syncFromCircuit()
	case key.Matches(msg, keys.Edit):
		if op := m.circ.OpAt(m.cursorStep, m.cursorQudit); op != nil {
			cp := *op
			m.editOp = &cp
			m.editMenuIdx = 0
			m.focus = focusEditGate
		}
	case key.Matches(msg, keys.Frame):
		m.focus = focusFrame
		if m.frame != nil {
			m.frameInput.SetValue(m.frame.String())
		}
		cmd := m.frameInput.Focus()
		return m, cmd
	case key.Matches(msg, keys.Validate):
		if m.validating {
			break
		}
		m.runs++
		m.validating = true
		m.report, m.validateErr = nil, nil
		cmd := m.runValidation()
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, keys.Back):
		m.focus = focusCircuit
	case key.Matches(msg, keys.Up):
		m.menuItem = max(m.menuItem-1, 0)
	case key.Matches(msg, keys.Down):
		m.menuItem = min(m.menuItem+1, len(gateMenu[m.menuCat].items)-1)
	case key.Matches(msg, keys.Left):
		if m.menuCat > 0 {
			m.menuCat--
			m.menuItem = 0
		}
	case key.Matches(msg, keys.Right):
		if m.menuCat < len(gateMenu)-1 {
			m.menuCat++
			m.menuItem = 0
		}
	case key.Matches(msg, keys.Confirm):
		item := gateMenu[m.menuCat].items[m.menuItem]
		m.pendingGate = item.gate
		switch {
		case item.needsMultiplier:
			m.multInput = ""
			m.focus = focusInputMultiplier
		case item.needsTarget:
			if !m.selectTarget() {
				m.focus = focusCircuit
			}
		default:
			m.placeGate(item.gate, -1, 0)
			m.focus = focusCircuit
		}
	}
}

// updateMultiplier handles the multiplier prompt for both new and edited
// MUL gates.
func (m *Model) updateMultiplier(msg tea.KeyMsg) {
	back := focusCircuit
	if m.focus == focusEditMultiplier {
		back = focusEditGate
	}
	switch msg.String() {
	case "esc":
		m.multInput = ""
		m.focus = back
	case "backspace":
		if len(m.multInput) > 0 {
			m.multInput = m.multInput[:len(m.multInput)-1]
		}
	case "enter":
		a, err := parseMultiplier(m.multInput, m.circ.Dimension)
		if err != nil {
			m.statusMsg = fmt.Sprintf("Invalid multiplier: %v", err)
			break
		}
		if m.focus == focusEditMultiplier && m.editOp != nil {
			updated := *m.editOp
			updated.Multiplier = a
			if err := m.replaceOp(*m.editOp, updated); err != nil {
				m.statusMsg = err.Error()
			} else {
				m.editOp = &updated
			}
			m.multInput = ""
			m.focus = focusEditGate
			break
		}
		m.placeGate(m.pendingGate, -1, a)
		m.focus = focusCircuit
	default:
		if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789-/invINV() ") {
			m.multInput += s
		}
	}
}

// editOption represents an option in the edit gate menu.
type editOption struct {
	label  string
	action string
}

// getEditOptions returns available edit options for the current op.
func (m *Model) getEditOptions() []editOption {
	if m.editOp == nil {
		return nil
	}
	var opts []editOption
	if m.editOp.Gate == circuit.Mul {
		opts = append(opts, editOption{
			label:  "Multiplier: " + formatMultiplier(m.editOp.Multiplier, m.circ.Dimension),
			action: "edit_multiplier",
		})
	}
	opts = append(opts, editOption{label: fmt.Sprintf("Target: q[%d]", m.editOp.Target), action: "edit_target"})
	if m.editOp.Control >= 0 {
		opts = append(opts, editOption{label: fmt.Sprintf("Control: q[%d]", m.editOp.Control), action: "edit_control"})
	}
	return append(opts, editOption{label: "Delete gate", action: "delete"})
}

func (m *Model) updateEditGate(msg tea.KeyMsg) {
	if m.editOp == nil {
		m.focus = focusCircuit
		return
	}
	opts := m.getEditOptions()
	switch {
	case key.Matches(msg, keys.Back):
		m.focus = focusCircuit
		m.editOp = nil
	case key.Matches(msg, keys.Up):
		m.editMenuIdx = max(m.editMenuIdx-1, 0)
	case key.Matches(msg, keys.Down):
		m.editMenuIdx = min(m.editMenuIdx+1, len(opts)-1)
	case key.Matches(msg, keys.Confirm):
		switch opts[m.editMenuIdx].action {
		case "edit_multiplier":
			m.multInput = ""
			m.focus = focusEditMultiplier
		case "edit_target":
			m.targetQudit = m.editOp.Target
			m.focus = focusEditTarget
		case "edit_control":
			m.targetQudit = m.editOp.Control
			m.focus = focusEditControl
		case "delete":
			m.circ.RemoveAt(m.editOp.Step, m.editOp.Target)
			m.editOp = nil
			m.focus = focusCircuit
			m.syncFromCircuit()
		}
	}
}

// updateEditLeg moves the target or control of the edited op.
func (m *Model) updateEditLeg(msg tea.KeyMsg) {
	other := m.editOp.Control
	if m.focus == focusEditControl {
		other = m.editOp.Target
	}
	switch {
	case key.Matches(msg, keys.Back):
		m.focus = focusEditGate
	case key.Matches(msg, keys.Up):
		m.targetQudit = m.moveSelection(m.targetQudit, -1, other)
	case key.Matches(msg, keys.Down):
		m.targetQudit = m.moveSelection(m.targetQudit, 1, other)
	case key.Matches(msg, keys.Confirm):
		updated := *m.editOp
		if m.focus == focusEditControl {
			updated.Control = m.targetQudit
		} else {
			updated.Target = m.targetQudit
		}
		if err := m.replaceOp(*m.editOp, updated); err != nil {
			m.statusMsg = err.Error()
		} else {
			m.editOp = &updated
		}
		m.focus = focusEditGate
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sideWidth := m.width / 3
	circuitWidth := m.width - sideWidth - 4
	controlsHeight := 6
	mainHeight := max(m.height-controlsHeight-2, 6)
	textHeight := mainHeight / 2
	stateHeight := mainHeight - textHeight - 2

	side := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTextPanel(sideWidth, textHeight),
		m.renderStatePanel(sideWidth, stateHeight),
	)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderCircuitPanel(circuitWidth, mainHeight), side)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, m.renderControlsPanel(m.width-4, controlsHeight-2))

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputMultiplier, focusEditMultiplier:
		frame = overlayAt(frame, m.renderMultiplierInput(), 2, 2)
	case focusEditGate, focusEditTarget, focusEditControl:
		frame = overlayAt(frame, m.renderEditGateMenu(), 2, 2)
	}
	return frame
}

// renderMultiplierInput renders the multiplier prompt overlay.
func (m Model) renderMultiplierInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enter Multiplier"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "a: %s_", m.multInput)
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("gcd(a, %d) = 1.  Examples: 2, -1, 1/2", m.circ.Dimension)))
	return menuBorderStyle.Render(sb.String())
}

// renderEditGateMenu renders the edit gate menu overlay.
func (m Model) renderEditGateMenu() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Edit Gate"))
	sb.WriteString("\n\n")
	for i, opt := range m.getEditOptions() {
		if i == m.editMenuIdx {
			sb.WriteString(menuSelectedStyle.Render("▸ " + opt.label))
		} else {
			sb.WriteString("  " + opt.label)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	switch m.focus {
	case focusEditTarget, focusEditControl:
		sb.WriteString(targetSelectStyle.Render(fmt.Sprintf("→ q[%d]", m.targetQudit)))
		sb.WriteString(dimStyle.Render("  ↑↓ Move  ⏎ Ok  Esc ✕"))
	default:
		sb.WriteString(dimStyle.Render("↑↓ Select  ⏎ Ok  Esc ✕"))
	}
	return menuBorderStyle.Render(sb.String())
}
