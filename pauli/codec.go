package pauli

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// row is the msgpack wire form of a String. Powers are stored as two parallel
// slices so a row decodes without knowing the grammar.
type row struct {
	Dim   int   `msgpack:"d"`
	Phase int   `msgpack:"w"`
	X     []int `msgpack:"x"`
	Z     []int `msgpack:"z"`
}

func (s *String) toRow() row {
	return row{Dim: s.dim, Phase: s.phase, X: s.XPowers(), Z: s.ZPowers()}
}

// fromRow validates r and builds a String from it.
func fromRow(r row) (*String, error) {
	if len(r.X) != len(r.Z) {
		return nil, ErrShapeMismatch
	}
	s, err := New(len(r.X), r.Dim)
	if err != nil {
		return nil, err
	}
	for i := range r.X {
		if r.X[i] < 0 || r.X[i] >= r.Dim || r.Z[i] < 0 || r.Z[i] >= r.Dim {
			return nil, ErrInvalidPower
		}
		s.terms[i] = term{x: r.X[i], z: r.Z[i]}
	}
	if err := s.SetPhase(r.Phase); err != nil {
		return nil, err
	}
	return s, nil
}

// MarshalBinary implements encoding.BinaryMarshaler using msgpack.
func (s *String) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(s.toRow())
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. A receiver that
// already has a shape only accepts rows of that shape.
func (s *String) UnmarshalBinary(data []byte) error {
	var r row
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("UnmarshalBinary: %w", err)
	}
	decoded, err := fromRow(r)
	if err != nil {
		return fmt.Errorf("UnmarshalBinary: %w", err)
	}
	if s.dim != 0 && (s.dim != decoded.dim || len(s.terms) != len(decoded.terms)) {
		return fmt.Errorf("UnmarshalBinary: %w", ErrShapeMismatch)
	}
	*s = *decoded
	return nil
}

// EncodeRows serializes a tableau snapshot: every row must share one shape.
func EncodeRows(rows []*String) ([]byte, error) {
	wire := make([]row, len(rows))
	for i, r := range rows {
		if r.dim != rows[0].dim || len(r.terms) != len(rows[0].terms) {
			return nil, fmt.Errorf("EncodeRows: row %d: %w", i, ErrShapeMismatch)
		}
		wire[i] = r.toRow()
	}
	return msgpack.Marshal(wire)
}

// DecodeRows is the inverse of EncodeRows.
func DecodeRows(data []byte) ([]*String, error) {
	var wire []row
	if err := msgpack.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("DecodeRows: %w", err)
	}
	rows := make([]*String, len(wire))
	for i, r := range wire {
		s, err := fromRow(r)
		if err != nil {
			return nil, fmt.Errorf("DecodeRows: row %d: %w", i, err)
		}
		rows[i] = s
	}
	return rows, nil
}
