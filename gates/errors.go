package gates

import "errors"

var (
	// ErrInvalidDimension is returned for a dimension below 2.
	ErrInvalidDimension = errors.New("gates: dimension must be at least 2")

	// ErrNotCoprime is returned when the M multiplier is not invertible mod d.
	ErrNotCoprime = errors.New("gates: multiplier not coprime to dimension")

	// ErrUnknownGate is returned for a gate name outside the generator set.
	ErrUnknownGate = errors.New("gates: unknown gate")

	// ErrMultiplierRequired is returned when M is requested without a multiplier.
	ErrMultiplierRequired = errors.New("gates: multiplier required")
)
