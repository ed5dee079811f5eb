package accumulator

import (
	"fmt"
	"io"

	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

// MembershipWitness proves that one identifier is accumulated in one accumulator value.
type MembershipWitness struct {
	C *curve.G1
}

// NewMembershipWitness computes C = V/(y + α). Only the authority can do this.
func NewMembershipWitness(sk *SecretKey, acc *Accumulator, members Members, y *Element) (*MembershipWitness, error) {
	if !members.Contains(y) {
		return nil, fmt.Errorf("accumulator.NewMembershipWitness: %w", ErrNotMember)
	}
	f, err := sk.factor(y)
	if err != nil {
		return nil, fmt.Errorf("accumulator.NewMembershipWitness: %w", err)
	}
	return &MembershipWitness{C: f.Invert().Act(acc.V)}, nil
}

// Verify checks e(C, y⋅P₂ + WitnessKey) = e(V, P₂).
func (w *MembershipWitness) Verify(pp *Params, pk *PublicKeys, acc *Accumulator, y *Element) bool {
	if w == nil || w.C == nil || acc == nil || acc.V == nil {
		return false
	}
	if w.C.IsIdentity() {
		return false
	}
	q := y.ActG2(pp.P2).Add(pk.WitnessKey)
	// e(C, q)⋅e(V, P₂)⁻¹ = 1
	check := curve.PairProduct(
		[]*curve.G1{w.C, acc.V},
		[]*curve.G2{q, pp.P2},
		[]*curve.Scalar{curve.NewScalarUInt64(1), curve.NewScalarUInt64(1).Negate()},
	)
	return check.IsIdentity()
}

// Clone returns a copy of w.
func (w *MembershipWitness) Clone() *MembershipWitness {
	return &MembershipWitness{C: w.C.Clone()}
}

// Equal returns true if both witnesses have the same value.
func (w *MembershipWitness) Equal(other *MembershipWitness) bool {
	return w.C.Equal(other.C)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (w *MembershipWitness) MarshalBinary() ([]byte, error) {
	return w.C.MarshalBinary()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (w *MembershipWitness) UnmarshalBinary(data []byte) error {
	c := new(curve.G1)
	if err := c.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("accumulator.MembershipWitness.Unmarshal: %w", err)
	}
	w.C = c
	return nil
}

// WriteTo implements io.WriterTo.
func (w *MembershipWitness) WriteTo(wr io.Writer) (int64, error) {
	return w.C.WriteTo(wr)
}

// Domain implements hash.WriterToWithDomain.
func (*MembershipWitness) Domain() string {
	return "MembershipWitness"
}
