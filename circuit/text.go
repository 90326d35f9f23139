package circuit

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Header is the first line written by Format.
const Header = "OPENQUDIT 1.0;"

// Pre-compiled regexps for the text format.
var (
	headerRegex   = regexp.MustCompile(`^OPENQUDIT\s+[\d.]+;?$`)
	quditsRegex   = regexp.MustCompile(`^qudits\s+(\d+)\s+dim\s+(\d+);?$`)
	singleRegex   = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	paramRegex    = regexp.MustCompile(`^(\w+)\s*\(\s*(-?\d+)\s*\)\s+q\[(\d+)\];?$`)
	twoQuditRegex = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	measureRegex  = regexp.MustCompile(`^measure\s+q\[(\d+)\](?:\s*->\s*\w+\[\d+\])?;?$`)
)

// Format writes c in the text format, ops in step order.
func Format(c *Circuit) string {
	var sb strings.Builder
	sb.WriteString(Header + "\n")
	fmt.Fprintf(&sb, "qudits %d dim %d;\n\n", c.NumQudits, c.Dimension)

	for _, op := range c.Ordered() {
		name := strings.ToLower(op.Gate)
		switch {
		case op.Gate == Mul:
			fmt.Fprintf(&sb, "%s(%d) q[%d];\n", name, op.Multiplier, op.Target)
		case op.Control >= 0:
			fmt.Fprintf(&sb, "%s q[%d], q[%d];\n", name, op.Control, op.Target)
		default:
			fmt.Fprintf(&sb, "%s q[%d];\n", name, op.Target)
		}
	}
	return sb.String()
}

// ParseText reads a circuit in the text format. The qudits declaration must
// come before the first gate. Errors name the offending line.
func ParseText(text string) (*Circuit, error) {
	var c *Circuit

	for i, raw := range strings.Split(text, "\n") {
		line := raw
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" || headerRegex.MatchString(line) {
			continue
		}

		if matches := quditsRegex.FindStringSubmatch(line); matches != nil {
			if c != nil {
				return nil, lineError(i, raw, errors.New("duplicate qudits declaration"))
			}
			n, _ := strconv.Atoi(matches[1])
			d, _ := strconv.Atoi(matches[2])
			var err error
			if c, err = New(n, d); err != nil {
				return nil, lineError(i, raw, err)
			}
			continue
		}

		if c == nil {
			return nil, lineError(i, raw, errors.New("gate before qudits declaration"))
		}
		if err := c.parseGateLine(line); err != nil {
			return nil, lineError(i, raw, err)
		}
	}

	if c == nil {
		return nil, fmt.Errorf("ParseText: missing qudits declaration: %w", ErrSyntax)
	}
	return c, nil
}

// parseGateLine appends the op described by one non-empty line.
func (c *Circuit) parseGateLine(line string) error {
	if matches := measureRegex.FindStringSubmatch(line); matches != nil {
		q, _ := strconv.Atoi(matches[1])
		return c.AddGate(Measure, q)
	}

	// Parameterized gates: mul(a) q[i], also written m(a) q[i]
	if matches := paramRegex.FindStringSubmatch(line); matches != nil {
		name := strings.ToUpper(matches[1])
		if name != Mul && name != "M" {
			return fmt.Errorf("%s takes no parameter: %w", name, ErrSyntax)
		}
		a, err := strconv.Atoi(matches[2])
		if err != nil {
			return fmt.Errorf("multiplier %q: %w", matches[2], ErrSyntax)
		}
		q, _ := strconv.Atoi(matches[3])
		return c.AddMultiplier(a, q)
	}

	if matches := twoQuditRegex.FindStringSubmatch(line); matches != nil {
		q1, _ := strconv.Atoi(matches[2])
		q2, _ := strconv.Atoi(matches[3])
		return c.AddGate(matches[1], q1, q2)
	}

	if matches := singleRegex.FindStringSubmatch(line); matches != nil {
		q, _ := strconv.Atoi(matches[2])
		return c.AddGate(matches[1], q)
	}

	return ErrSyntax
}

func lineError(i int, line string, err error) error {
	if !errors.Is(err, ErrSyntax) {
		err = fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return fmt.Errorf("line %d %q: %w", i+1, strings.TrimSpace(line), err)
}
