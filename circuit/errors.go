package circuit

import "errors"

var (
	// ErrOutOfRange is returned for a qudit index outside [0, NumQudits).
	ErrOutOfRange = errors.New("circuit: qudit index out of range")

	// ErrArity is returned when a gate gets the wrong number of qudit indices.
	ErrArity = errors.New("circuit: wrong number of qudits for gate")

	// ErrSameQudit is returned when control and target coincide.
	ErrSameQudit = errors.New("circuit: control and target must differ")

	// ErrOccupied is returned when placing an op on a busy step.
	ErrOccupied = errors.New("circuit: qudit already used at this step")

	// ErrInvalidShape is returned for a dimension below 2 or no qudits.
	ErrInvalidShape = errors.New("circuit: invalid qudit count or dimension")

	// ErrSyntax is returned by ParseText for a line it cannot read.
	ErrSyntax = errors.New("circuit: syntax error")
)
