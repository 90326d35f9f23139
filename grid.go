package main

import (
	"strconv"

	"qudeck/circuit"
)

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	op           *circuit.Op
	isControl    bool
	isTarget     bool
	vertAbove    bool
	vertBelow    bool
	passThrough  bool
	measureBelow bool
}

// cellAt returns rendering information for the cell at (step, qudit).
func cellAt(c *circuit.Circuit, step, qudit int) cellInfo {
	var info cellInfo

	if op := c.OpAt(step, qudit); op != nil {
		info.op = op
		info.isControl = op.Control == qudit
		info.isTarget = op.Target == qudit && op.Control >= 0
	}

	for _, o := range c.Ops {
		if o.Step != step {
			continue
		}
		if o.Control >= 0 {
			lo, hi := min(o.Control, o.Target), max(o.Control, o.Target)
			if qudit >= lo && qudit <= hi {
				info.vertAbove = info.vertAbove || qudit > lo
				info.vertBelow = info.vertBelow || qudit < hi
				if qudit > lo && qudit < hi && info.op == nil {
					info.passThrough = true
				}
			}
		}
		// measurement record wire runs down to the result row
		if o.IsMeasurement() && qudit > o.Target {
			info.measureBelow = true
		}
	}
	return info
}

// measureAtStep returns the qudit measured at step, or -1.
func measureAtStep(c *circuit.Circuit, step int) int {
	for _, o := range c.Ops {
		if o.Step == step && o.IsMeasurement() {
			return o.Target
		}
	}
	return -1
}

// opDisplayName returns the short name drawn inside a gate box.
func opDisplayName(op circuit.Op) string {
	switch op.Gate {
	case circuit.Measure:
		return "M"
	case circuit.Mul:
		return "×" + strconv.Itoa(op.Multiplier)
	default:
		return op.Gate
	}
}
