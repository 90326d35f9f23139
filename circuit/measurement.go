package circuit

import (
	"slices"
	"strconv"
	"strings"
)

// MeasurementResult is one measurement record produced by a sampling engine.
type MeasurementResult struct {
	Qudit         int
	Deterministic bool
	Value         int // in [0, d)
}

// Key folds the outcomes into one integer, most significant digit first in
// ascending qudit order: key = key*d + value.
func Key(results []MeasurementResult, d int) int {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b MeasurementResult) int { return a.Qudit - b.Qudit })
	key := 0
	for _, r := range sorted {
		key = key*d + r.Value
	}
	return key
}

// DigitsOf returns the width base-d digits of key, most significant first.
func DigitsOf(key, width, d int) []int {
	digits := make([]int, width)
	for i := width - 1; i >= 0; i-- {
		digits[i] = key % d
		key /= d
	}
	return digits
}

// KeyLabel renders a key as a ket label such as "|021>". Digits above 9 are
// separated by commas.
func KeyLabel(key, width, d int) string {
	digits := DigitsOf(key, width, d)
	parts := make([]string, width)
	for i, v := range digits {
		parts[i] = strconv.Itoa(v)
	}
	sep := ""
	if d > 10 {
		sep = ","
	}
	return "|" + strings.Join(parts, sep) + ">"
}
