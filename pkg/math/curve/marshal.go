package curve

import (
	"fmt"

	"github.com/cronokirby/saferith"

	"github.com/taurusgroup/allosaur/internal/params"
)

// MarshalBinary implements encoding.BinaryMarshaler.
//
// The encoding is 32 bytes, big-endian.
func (s *Scalar) MarshalBinary() ([]byte, error) {
	return s.s.MarshalBinary()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesScalar {
		return fmt.Errorf("curve.Scalar.Unmarshal: expected %d bytes, got %d: %w", params.BytesScalar, len(data), ErrDecode)
	}
	if _, _, lt := new(saferith.Nat).SetBytes(data).CmpMod(order); lt != 1 {
		return fmt.Errorf("curve.Scalar.Unmarshal: scalar was >= r: %w", ErrDecode)
	}
	if err := s.s.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("curve.Scalar.Unmarshal: %v: %w", err, ErrDecode)
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// The encoding is the 48 byte compressed form, the identity included.
func (g *G1) MarshalBinary() ([]byte, error) {
	return g.p.BytesCompressed(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
// Points not on the curve, or outside the prime order subgroup, are rejected.
func (g *G1) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesG1 {
		return fmt.Errorf("curve.G1.Unmarshal: expected %d bytes, got %d: %w", params.BytesG1, len(data), ErrDecode)
	}
	var p G1
	if err := p.p.SetBytes(data); err != nil {
		return fmt.Errorf("curve.G1.Unmarshal: %v: %w", err, ErrDecode)
	}
	if !p.p.IsOnG1() {
		return fmt.Errorf("curve.G1.Unmarshal: point not in G1: %w", ErrDecode)
	}
	g.p = p.p
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// The encoding is the 96 byte compressed form, the identity included.
func (g *G2) MarshalBinary() ([]byte, error) {
	return g.p.BytesCompressed(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
// Points not on the curve, or outside the prime order subgroup, are rejected.
func (g *G2) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesG2 {
		return fmt.Errorf("curve.G2.Unmarshal: expected %d bytes, got %d: %w", params.BytesG2, len(data), ErrDecode)
	}
	var p G2
	if err := p.p.SetBytes(data); err != nil {
		return fmt.Errorf("curve.G2.Unmarshal: %v: %w", err, ErrDecode)
	}
	if !p.p.IsOnG2() {
		return fmt.Errorf("curve.G2.Unmarshal: point not in G2: %w", ErrDecode)
	}
	g.p = p.p
	return nil
}
