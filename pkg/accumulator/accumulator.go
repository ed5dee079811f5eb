// Package accumulator implements a dynamic positive accumulator over BLS12-381,
// together with the membership witnesses it certifies and the deltas used to
// keep those witnesses up to date.
//
// With secret α, the accumulator of a set S is V = ∏_{y ∈ S}(y + α)⋅P₁, and the
// witness of y ∈ S is C = V/(y + α), verified by e(C, y⋅P₂ + α⋅P₂) = e(V, P₂).
package accumulator

import (
	"fmt"
	"io"

	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

// Accumulator is the constant size commitment to the member set.
type Accumulator struct {
	V *curve.G1
}

// Empty returns the accumulator of the empty set, P₁.
func Empty() *Accumulator {
	return &Accumulator{V: curve.G1Generator()}
}

// Construct returns the accumulator of members in one pass.
//
// The result is the same as calling Add for each member, in any order.
func Construct(sk *SecretKey, members []*Element) (*Accumulator, error) {
	set := NewMemberSet()
	product := curve.NewScalarUInt64(1)
	for _, y := range members {
		if !set.Add(y) {
			return nil, fmt.Errorf("accumulator.Construct: %w", ErrAlreadyMember)
		}
		f, err := sk.factor(y)
		if err != nil {
			return nil, fmt.Errorf("accumulator.Construct: %w", err)
		}
		product.Mul(f)
	}
	return &Accumulator{V: product.ActOnBase()}, nil
}

// Add returns the accumulator V' = (y + α)⋅V.
//
// Tracking membership is the caller's job, see MemberSet.
func (acc *Accumulator) Add(sk *SecretKey, y *Element) (*Accumulator, error) {
	f, err := sk.factor(y)
	if err != nil {
		return nil, fmt.Errorf("accumulator.Add: %w", err)
	}
	return &Accumulator{V: f.Act(acc.V)}, nil
}

// Delete returns the accumulator V' = V/(y + α).
//
// It fails with ErrNotMember if members does not contain y, since dividing
// out a factor which was never multiplied in would corrupt the accumulator.
func (acc *Accumulator) Delete(sk *SecretKey, members Members, y *Element) (*Accumulator, error) {
	if !members.Contains(y) {
		return nil, fmt.Errorf("accumulator.Delete: %w", ErrNotMember)
	}
	f, err := sk.factor(y)
	if err != nil {
		return nil, fmt.Errorf("accumulator.Delete: %w", err)
	}
	return &Accumulator{V: f.Invert().Act(acc.V)}, nil
}

// Clone returns a copy of acc.
func (acc *Accumulator) Clone() *Accumulator {
	return &Accumulator{V: acc.V.Clone()}
}

// Equal returns true if both accumulators have the same value.
func (acc *Accumulator) Equal(other *Accumulator) bool {
	return acc.V.Equal(other.V)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (acc *Accumulator) MarshalBinary() ([]byte, error) {
	return acc.V.MarshalBinary()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (acc *Accumulator) UnmarshalBinary(data []byte) error {
	v := new(curve.G1)
	if err := v.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("accumulator.Accumulator.Unmarshal: %w", err)
	}
	acc.V = v
	return nil
}

// WriteTo implements io.WriterTo.
func (acc *Accumulator) WriteTo(w io.Writer) (int64, error) {
	return acc.V.WriteTo(w)
}

// Domain implements hash.WriterToWithDomain.
func (*Accumulator) Domain() string {
	return "Accumulator"
}
