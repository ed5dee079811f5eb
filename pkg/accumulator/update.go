package accumulator

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

var (
	// ErrRevoked is returned when a delta deletes the identifier being updated.
	ErrRevoked = errors.New("accumulator: element was deleted")
	// ErrDeltaOrder is returned when deltas do not cover consecutive epochs in increasing order.
	ErrDeltaOrder = errors.New("accumulator: deltas are not consecutive")
)

// UpdateStep is the value of one epoch's delta at a single identifier y:
// Numerator = dA(y), Denominator = dD(y) and Omega = Ω(y).
//
// Holders obtain steps by reconstructing threshold shares, without ever
// revealing y to a single authority.
type UpdateStep struct {
	Numerator, Denominator *curve.Scalar
	Omega                  *curve.G1
}

// MultiBatchUpdate folds the deltas of consecutive epochs into w, where w is a
// witness for y valid at the epoch of deltas[0].
//
// The whole sequence costs a single inversion and one multi scalar multiplication,
// and the result is identical to updating one epoch at a time.
func (w *MembershipWitness) MultiBatchUpdate(y *Element, deltas []*Delta) (*MembershipWitness, error) {
	steps := make([]*step, len(deltas))
	for i, d := range deltas {
		if i > 0 && d.Epoch != deltas[i-1].Epoch+1 {
			return nil, fmt.Errorf("accumulator.MultiBatchUpdate: epoch %d follows %d: %w", d.Epoch, deltas[i-1].Epoch, ErrDeltaOrder)
		}
		s, err := d.evaluate(y)
		if err != nil {
			return nil, fmt.Errorf("accumulator.MultiBatchUpdate: epoch %d: %w", d.Epoch, err)
		}
		steps[i] = s
	}
	c, err := fold(w.C, steps)
	if err != nil {
		return nil, fmt.Errorf("accumulator.MultiBatchUpdate: %w", err)
	}
	return &MembershipWitness{C: c}, nil
}

// Update folds a single delta into w.
func (w *MembershipWitness) Update(y *Element, delta *Delta) (*MembershipWitness, error) {
	return w.MultiBatchUpdate(y, []*Delta{delta})
}

// ApplySteps folds already evaluated steps, in epoch order, into w.
func (w *MembershipWitness) ApplySteps(updates []UpdateStep) (*MembershipWitness, error) {
	steps := make([]*step, len(updates))
	for i, u := range updates {
		if u.Denominator.IsZero() {
			return nil, fmt.Errorf("accumulator.ApplySteps: step %d: %w", i, ErrRevoked)
		}
		steps[i] = &step{
			numerator:   u.Numerator,
			denominator: u.Denominator,
			points:      []*curve.G1{u.Omega},
			weights:     []*curve.Scalar{curve.NewScalarUInt64(1)},
		}
	}
	c, err := fold(w.C, steps)
	if err != nil {
		return nil, fmt.Errorf("accumulator.ApplySteps: %w", err)
	}
	return &MembershipWitness{C: c}, nil
}

// fold computes Cₙ from C₀ = c where Cᵢ = (Aᵢ⋅Cᵢ₋₁ - Ωᵢ)/Dᵢ, in closed form:
//
//	Cₙ = (A₁⋅⋅⋅Aₙ)/(D₁⋅⋅⋅Dₙ)⋅C₀ - ∑ᵢ (Aᵢ₊₁⋅⋅⋅Aₙ)⋅(D₁⋅⋅⋅Dᵢ₋₁)/(D₁⋅⋅⋅Dₙ)⋅Ωᵢ
func fold(c *curve.G1, steps []*step) (*curve.G1, error) {
	n := len(steps)
	if n == 0 {
		return c.Clone(), nil
	}

	// suffixA[i] = Aᵢ₊₁⋅⋅⋅Aₙ (0-indexed: product of steps after i)
	suffixA := make([]*curve.Scalar, n+1)
	suffixA[n] = curve.NewScalarUInt64(1)
	for i := n - 1; i >= 0; i-- {
		suffixA[i] = suffixA[i+1].Clone().Mul(steps[i].numerator)
	}
	// prefixD[i] = D₁⋅⋅⋅Dᵢ₋₁ (0-indexed: product of steps before i)
	prefixD := make([]*curve.Scalar, n+1)
	prefixD[0] = curve.NewScalarUInt64(1)
	for i := 0; i < n; i++ {
		prefixD[i+1] = prefixD[i].Clone().Mul(steps[i].denominator)
	}
	if prefixD[n].IsZero() {
		return nil, ErrRevoked
	}
	inverse := prefixD[n].Clone().Invert()

	scalars := []*curve.Scalar{suffixA[0].Clone().Mul(inverse)}
	points := []*curve.G1{c}
	for i, s := range steps {
		coefficient := suffixA[i+1].Clone().Mul(prefixD[i]).Mul(inverse).Negate()
		for k, p := range s.points {
			scalars = append(scalars, s.weights[k].Clone().Mul(coefficient))
			points = append(points, p)
		}
	}
	return curve.MultiAct(scalars, points), nil
}
