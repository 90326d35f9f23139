package pauli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for the text form.
var (
	groupRegex = regexp.MustCompile(`\(([^()]*)\)`)
	termRegex  = regexp.MustCompile(`^([A-Z](?:\d+|!)?)([A-Z](?:\d+|!)?)?$`)
)

// String renders the canonical text form, e.g. "w2(X)(I)(X!Z)".
func (s *String) String() string {
	var sb strings.Builder
	if s.phase != 0 {
		k, _ := s.phaseDigit(s.phase)
		fmt.Fprintf(&sb, "w%d", k)
	}
	for _, t := range s.terms {
		sb.WriteByte('(')
		if t.x == 0 && t.z == 0 {
			sb.WriteByte('I')
		}
		if t.x != 0 {
			sb.WriteByte('X')
			sb.WriteString(s.formatPower(t.x))
		}
		if t.z != 0 {
			sb.WriteByte('Z')
			sb.WriteString(s.formatPower(t.z))
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// formatPower is the inverse of power. A power of 1 renders as the bare letter,
// which also covers d-1 when d is 2.
func (s *String) formatPower(p int) string {
	switch p {
	case 1:
		return ""
	case s.dim - 1:
		return "!"
	default:
		return strconv.Itoa(p)
	}
}

// Parse replaces the receiver's phase and powers with those encoded in text.
// The receiver is left unchanged when an error is returned.
func (s *String) Parse(text string) error {
	text = strings.TrimSpace(text)
	rest := text

	phase := 0
	if strings.HasPrefix(rest, "w") {
		if len(rest) < 2 || rest[1] < '0' || rest[1] > '9' {
			return fmt.Errorf("Parse(%q): phase prefix: %w", text, ErrMalformedTerm)
		}
		k := int(rest[1] - '0')
		if s.dim%2 == 0 {
			phase = (2 * k) % s.dim
		} else {
			phase = k % s.dim
		}
		rest = rest[2:]
	}

	groups, err := splitGroups(rest)
	if err != nil {
		return fmt.Errorf("Parse(%q): %w", text, err)
	}
	if len(groups) != len(s.terms) {
		return fmt.Errorf("Parse(%q): got %d terms for %d qudits: %w", text, len(groups), len(s.terms), ErrCountMismatch)
	}

	terms := make([]term, len(groups))
	for i, g := range groups {
		t, err := s.parseGroup(g)
		if err != nil {
			return fmt.Errorf("Parse(%q): term %d %q: %w", text, i, g, err)
		}
		terms[i] = t
	}

	s.phase = phase
	s.terms = terms
	return nil
}

// splitGroups returns the contents of consecutive parenthesized groups. Any
// text between or around the groups is malformed.
func splitGroups(s string) ([]string, error) {
	var groups []string
	pos := 0
	for _, loc := range groupRegex.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] != pos {
			return nil, ErrMalformedTerm
		}
		groups = append(groups, s[loc[2]:loc[3]])
		pos = loc[1]
	}
	if pos != len(s) {
		return nil, ErrMalformedTerm
	}
	return groups, nil
}

// parseGroup decodes the inside of one parenthesized term. Parts are folded
// with merge starting from the identity; an X part may not follow a Z part.
func (s *String) parseGroup(g string) (term, error) {
	m := termRegex.FindStringSubmatch(g)
	if m == nil {
		return term{}, ErrMalformedTerm
	}

	var t term
	seenZ := false
	for _, part := range m[1:] {
		if part == "" {
			continue
		}
		symbol := part[0]
		if !validSymbol(symbol) {
			return term{}, ErrInvalidSymbol
		}
		if symbol == 'X' && seenZ {
			return term{}, ErrMalformedTerm
		}
		p, err := s.power(part[1:])
		if err != nil {
			return term{}, err
		}
		t = merge(t, symbol, p)
		seenZ = seenZ || symbol == 'Z'
	}
	return t, nil
}

// Parse returns a new String of the given shape decoded from text.
func Parse(text string, numQudits, dim int) (*String, error) {
	s, err := New(numQudits, dim)
	if err != nil {
		return nil, err
	}
	if err := s.Parse(text); err != nil {
		return nil, err
	}
	return s, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s *String) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The receiver must already
// have its shape, typically from New.
func (s *String) UnmarshalText(text []byte) error {
	if s.dim == 0 {
		return fmt.Errorf("UnmarshalText: %w", ErrShapeMismatch)
	}
	return s.Parse(string(text))
}
