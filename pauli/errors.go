package pauli

import "errors"

// Sentinel errors returned by this package. Callers match them with errors.Is;
// returned errors carry the offending call and token as context.
var (
	// ErrOutOfRange is returned when a qudit index is outside [0, NumQudits).
	ErrOutOfRange = errors.New("pauli: qudit index out of range")

	// ErrInvalidPower is returned for a negative power or a power >= dimension.
	ErrInvalidPower = errors.New("pauli: power out of range")

	// ErrMalformedTerm is returned when text does not match the term grammar.
	ErrMalformedTerm = errors.New("pauli: malformed term")

	// ErrInvalidSymbol is returned for a term letter other than X, Z or I.
	ErrInvalidSymbol = errors.New("pauli: invalid operator symbol")

	// ErrCountMismatch is returned when the number of parenthesized terms
	// differs from the declared qudit count.
	ErrCountMismatch = errors.New("pauli: term count does not match qudit count")

	// ErrInvalidDimension is returned for a dimension below 2.
	ErrInvalidDimension = errors.New("pauli: dimension must be at least 2")

	// ErrInvalidQuditCount is returned for a qudit count below 1.
	ErrInvalidQuditCount = errors.New("pauli: qudit count must be positive")

	// ErrInvalidPhase is returned for a phase the text form cannot express.
	ErrInvalidPhase = errors.New("pauli: phase not expressible")

	// ErrShapeMismatch is returned when two operators of different qudit count
	// or dimension are combined or decoded into each other.
	ErrShapeMismatch = errors.New("pauli: shape mismatch")
)
