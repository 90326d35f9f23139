package main

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qudeck/gates"
	"qudeck/pauli"
)

var (
	// multiplierRegex matches "a", "-a", "1/a" and "inv a" / "inv(a)".
	multiplierRegex = regexp.MustCompile(`^(?:(1\s*/\s*|inv\s*\(?\s*))?(-?\d+)\s*\)?$`)
	// frameFieldRegex matches one per-qudit field of the short frame form.
	frameFieldRegex = regexp.MustCompile(`^(?:[XZI](?:\d+|!)?){1,2}$`)
	// framePhaseRegex matches a leading phase field, e.g. "w2".
	framePhaseRegex = regexp.MustCompile(`^w\d$`)
)

var errBadMultiplier = errors.New("multiplier must be an integer, 1/a or inv a")

// parseMultiplier parses the multiplier prompt for dimension d. "1/a" and
// "inv a" denote the inverse of a mod d. The result is normalized to [1, d).
func parseMultiplier(input string, d int) (int, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	matches := multiplierRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, errBadMultiplier
	}
	a, err := strconv.Atoi(matches[2])
	if err != nil {
		return 0, errBadMultiplier
	}
	g, err := gates.NewM(d, a)
	if err != nil {
		return 0, err
	}
	if matches[1] != "" {
		return inverseMod(g.Multiplier(), d), nil
	}
	return g.Multiplier(), nil
}

// inverseMod returns b with a·b ≡ 1 (mod d). a must be a unit.
func inverseMod(a, d int) int {
	for b := 1; b < d; b++ {
		if a*b%d == 1 {
			return b
		}
	}
	return 1
}

// formatMultiplier shows a together with its inverse when they differ.
func formatMultiplier(a, d int) string {
	inv := inverseMod(a, d)
	if inv == a {
		return strconv.Itoa(a)
	}
	return fmt.Sprintf("%d = 1/%d", a, inv)
}

// parseFrame parses the Pauli frame prompt for n qudits of dimension d. It
// accepts the canonical text form, e.g. "w1(X)(Z2)", or the short form of
// space-separated fields "w1 X Z2", one field per qudit.
func parseFrame(input string, n, d int) (*pauli.String, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return pauli.New(n, d)
	}
	if strings.Contains(s, "(") {
		return pauli.Parse(s, n, d)
	}

	var sb strings.Builder
	for i, field := range strings.Fields(s) {
		if i == 0 && framePhaseRegex.MatchString(field) {
			sb.WriteString(field)
			continue
		}
		field = strings.ToUpper(field)
		if !frameFieldRegex.MatchString(field) {
			return nil, fmt.Errorf("field %q: %w", field, pauli.ErrMalformedTerm)
		}
		sb.WriteString("(" + field + ")")
	}
	return pauli.Parse(sb.String(), n, d)
}
