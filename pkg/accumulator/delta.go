package accumulator

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/taurusgroup/allosaur/pkg/math/curve"
	"github.com/taurusgroup/allosaur/pkg/math/polynomial"
	"github.com/taurusgroup/allosaur/pkg/pool"
)

// Delta is the public record of the change made to the accumulator at one epoch,
// moving it from epoch Epoch to Epoch+1.
//
// For every identifier y still accumulated afterwards, its witness C becomes
//
//	C' = (dA(y)⋅C - Ω(y)) / dD(y),
//
// with dA(X) = ∏_{a ∈ Additions}(a - X), dD(X) = ∏_{d ∈ Deletions}(d - X),
// and Ω the polynomial in the exponent held in Omega.
type Delta struct {
	Epoch     uint64
	Additions []*Element
	Deletions []*Element
	Omega     *polynomial.Exponent
}

// NewAdditionDelta returns the delta of adding y to the accumulator before.
// In that case Ω = -V.
func NewAdditionDelta(epoch uint64, y *Element, before *Accumulator) *Delta {
	return &Delta{
		Epoch:     epoch,
		Additions: []*Element{y.Clone()},
		Omega:     new(polynomial.Exponent).SetCoefficients([]*curve.G1{before.V.Clone().Negate()}),
	}
}

// NewDeletionDelta returns the delta of deleting y, resulting in the accumulator after.
// In that case Ω = V'.
func NewDeletionDelta(epoch uint64, y *Element, after *Accumulator) *Delta {
	return &Delta{
		Epoch:     epoch,
		Deletions: []*Element{y.Clone()},
		Omega:     new(polynomial.Exponent).SetCoefficients([]*curve.G1{after.V.Clone()}),
	}
}

// BatchUpdate adds and deletes several identifiers in a single epoch.
//
// It returns the new accumulator, and the delta allowing every remaining member
// to update its witness in one step. The changes are applied as all additions
// followed by all deletions; the Ω coefficients are computed on the pool.
func BatchUpdate(pl *pool.Pool, sk *SecretKey, acc *Accumulator, members Members, epoch uint64, additions, deletions []*Element) (*Accumulator, *Delta, error) {
	seen := NewMemberSet()
	for _, a := range additions {
		if members.Contains(a) || !seen.Add(a) {
			return nil, nil, fmt.Errorf("accumulator.BatchUpdate: %w", ErrAlreadyMember)
		}
	}
	for _, d := range deletions {
		if !members.Contains(d) || !seen.Add(d) {
			return nil, nil, fmt.Errorf("accumulator.BatchUpdate: %w", ErrNotMember)
		}
	}

	// Every intermediate accumulator, and hence every Ωᵢ, is σᵢ⋅V for a scalar σᵢ.
	// Ω(X) = ∑ᵢ σᵢ⋅mᵢ(X)⋅V where
	//   mᵢ(X) = ∏_{later additions}(a - X) for an addition,
	//   mᵢ(X) = ∏_{earlier deletions}(d - X) for a deletion.
	sum := polynomial.NewPolynomial(nil, 0, nil)

	factors := make([]*curve.Scalar, len(additions))
	prefix := curve.NewScalarUInt64(1)
	for i, a := range additions {
		f, err := sk.factor(a)
		if err != nil {
			return nil, nil, fmt.Errorf("accumulator.BatchUpdate: %w", err)
		}
		factors[i] = f
	}
	prefixes := make([]*curve.Scalar, len(additions))
	for i := range additions {
		prefixes[i] = prefix.Clone()
		prefix.Mul(factors[i])
	}
	// additions, from last to first, so that mᵢ grows by one root each step.
	m := polynomial.NewPolynomialFromRoots()
	for i := len(additions) - 1; i >= 0; i-- {
		// Ωᵢ = -Vᵢ₋₁
		sum.AddScaled(m, prefixes[i].Clone().Negate())
		m.MulRoot(additions[i])
	}

	// prefix now holds the product of all addition factors.
	m = polynomial.NewPolynomialFromRoots()
	for _, d := range deletions {
		f, err := sk.factor(d)
		if err != nil {
			return nil, nil, fmt.Errorf("accumulator.BatchUpdate: %w", err)
		}
		prefix.Mul(f.Invert())
		// Ωᵢ = Vᵢ
		sum.AddScaled(m, prefix)
		m.MulRoot(d)
	}

	delta := &Delta{
		Epoch:     epoch,
		Additions: cloneElements(additions),
		Deletions: cloneElements(deletions),
		Omega:     polynomial.NewPolynomialExponent(pl, sum, acc.V),
	}
	return &Accumulator{V: prefix.Act(acc.V)}, delta, nil
}

func cloneElements(elements []*Element) []*Element {
	out := make([]*Element, len(elements))
	for i, e := range elements {
		out[i] = e.Clone()
	}
	return out
}

// step is a delta evaluated at one identifier, with Ω(y) = ∑ weightsₖ⋅pointsₖ kept
// unexpanded so that several epochs can be folded with a single multi scalar multiplication.
type step struct {
	numerator, denominator *curve.Scalar
	points                 []*curve.G1
	weights                []*curve.Scalar
}

// evaluate returns the step of d at y, failing with ErrRevoked if d deletes y.
func (d *Delta) evaluate(y *Element) (*step, error) {
	s := &step{
		numerator:   curve.NewScalarUInt64(1),
		denominator: curve.NewScalarUInt64(1),
	}
	for _, a := range d.Additions {
		s.numerator.Mul(a.Clone().Sub(y))
	}
	for _, e := range d.Deletions {
		s.denominator.Mul(e.Clone().Sub(y))
	}
	if s.denominator.IsZero() {
		return nil, ErrRevoked
	}
	if d.Omega == nil {
		return nil, errors.New("accumulator.Delta: missing Ω")
	}
	s.points = d.Omega.Coefficients()
	s.weights = make([]*curve.Scalar, len(s.points))
	power := curve.NewScalarUInt64(1)
	for k := range s.points {
		s.weights[k] = power.Clone()
		power.Mul(y)
	}
	return s, nil
}

type deltaMarshal struct {
	Epoch     uint64
	Additions []*curve.Scalar
	Deletions []*curve.Scalar
	Omega     []*curve.G1
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (d *Delta) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(&deltaMarshal{
		Epoch:     d.Epoch,
		Additions: d.Additions,
		Deletions: d.Deletions,
		Omega:     d.Omega.Coefficients(),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (d *Delta) UnmarshalBinary(data []byte) error {
	var dm deltaMarshal
	if err := cbor.Unmarshal(data, &dm); err != nil {
		return fmt.Errorf("accumulator.Delta.Unmarshal: %v: %w", err, curve.ErrDecode)
	}
	if len(dm.Omega) == 0 {
		return fmt.Errorf("accumulator.Delta.Unmarshal: missing Ω: %w", curve.ErrDecode)
	}
	for _, p := range dm.Omega {
		if p == nil {
			return fmt.Errorf("accumulator.Delta.Unmarshal: nil coefficient: %w", curve.ErrDecode)
		}
	}
	for _, e := range append(append([]*curve.Scalar{}, dm.Additions...), dm.Deletions...) {
		if e == nil {
			return fmt.Errorf("accumulator.Delta.Unmarshal: nil element: %w", curve.ErrDecode)
		}
	}
	*d = Delta{
		Epoch:     dm.Epoch,
		Additions: dm.Additions,
		Deletions: dm.Deletions,
		Omega:     new(polynomial.Exponent).SetCoefficients(dm.Omega),
	}
	return nil
}
