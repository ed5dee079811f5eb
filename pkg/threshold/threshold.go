// Package threshold splits scalars with Shamir's scheme and reconstructs scalars
// or points from shares, optionally cross-checking the result with one extra share.
//
// A threshold t means a polynomial of degree t-1: any t shares reconstruct,
// and t+1 shares allow the reconstruction to be verified.
package threshold

import (
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/allosaur/pkg/math/curve"
	"github.com/taurusgroup/allosaur/pkg/math/polynomial"
)

var (
	// ErrInsufficientShares is returned when fewer than threshold shares are available.
	ErrInsufficientShares = errors.New("threshold: insufficient shares")
	// ErrInvalidShare is returned for a zero or repeated x coordinate.
	ErrInvalidShare = errors.New("threshold: invalid share index")
	// ErrInconsistentShares is returned when the check reconstruction disagrees
	// with the primary one: at least one share is wrong.
	ErrInconsistentShares = errors.New("threshold: inconsistent shares")
)

// ScalarShare is the evaluation Y = f(X) of a sharing polynomial.
type ScalarShare struct {
	X, Y *curve.Scalar
}

// PointShare is a share of a point of G1, obtained by applying a linear map to
// a ScalarShare.
type PointShare struct {
	X *curve.Scalar
	Y *curve.G1
}

// Share splits secret into n shares, evaluated at x = 1, …, n, such that any
// threshold of them reconstruct it.
func Share(rand io.Reader, threshold, n int, secret *curve.Scalar) ([]ScalarShare, error) {
	if threshold < 1 || threshold > n {
		return nil, fmt.Errorf("threshold.Share: invalid threshold: %d for %d parties", threshold, n)
	}
	f := polynomial.NewPolynomial(rand, threshold-1, secret)
	shares := make([]ScalarShare, n)
	for i := range shares {
		x := curve.NewScalarUInt64(uint64(i + 1))
		shares[i] = ScalarShare{X: x, Y: f.Evaluate(x)}
	}
	return shares, nil
}

// Coefficients holds the Lagrange coefficients at 0 for threshold chosen indices,
// and possibly a second set replacing the first index with index threshold+1.
type Coefficients struct {
	xs []*curve.Scalar
	// one Lagrange coefficient per share, so len(primary) is the threshold
	primary []*curve.Scalar
	// check[0] applies to xs[threshold], check[i] to xs[i] for 0 < i < threshold.
	check []*curve.Scalar
}

// NewCoefficients computes the coefficients for the first threshold entries of xs.
//
// If xs has more than threshold entries, the check coefficients for
// {xs[threshold], xs[1], …, xs[threshold-1]} are derived from the primary ones
// in O(threshold).
func NewCoefficients(threshold int, xs []*curve.Scalar) (*Coefficients, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold.NewCoefficients: invalid threshold: %d", threshold)
	}
	if len(xs) < threshold {
		return nil, fmt.Errorf("threshold.NewCoefficients: got %d, need %d: %w", len(xs), threshold, ErrInsufficientShares)
	}
	used := xs[:threshold]
	if len(xs) > threshold {
		used = xs[:threshold+1]
	}
	seen := make(map[string]bool, len(used))
	for _, x := range used {
		data, _ := x.MarshalBinary()
		if x.IsZero() || seen[string(data)] {
			return nil, fmt.Errorf("threshold.NewCoefficients: %w", ErrInvalidShare)
		}
		seen[string(data)] = true
	}

	c := &Coefficients{
		xs:      used,
		primary: polynomial.Lagrange(xs[:threshold]),
	}
	if len(xs) == threshold {
		return c, nil
	}

	// For the set {xₜ, x₁, …, xₜ₋₁}:
	//   l'ᵢ = lᵢ ⋅ (xₜ/x₀) ⋅ (x₀ - xᵢ)/(xₜ - xᵢ)   for 0 < i < t
	//   l'ₜ = (x₁⋅⋅⋅xₜ₋₁) / ∏(xᵢ - xₜ)
	x0, xt := xs[0], xs[threshold]
	adjustment := x0.Clone().Invert().Mul(xt)
	// numerator / x₀ = x₁⋅⋅⋅xₜ₋₁
	checkT := polynomial.Numerator(xs[:threshold]).Mul(x0.Clone().Invert())
	denominator := curve.NewScalarUInt64(1)

	c.check = make([]*curve.Scalar, threshold)
	for i := 1; i < threshold; i++ {
		xi := xs[i]
		ratio := x0.Clone().Sub(xi).Mul(xt.Clone().Sub(xi).Invert())
		c.check[i] = c.primary[i].Clone().Mul(adjustment).Mul(ratio)
		denominator.Mul(xi.Clone().Sub(xt))
	}
	c.check[0] = checkT.Mul(denominator.Invert())
	return c, nil
}

// Checked returns true if a check set was derived.
func (c *Coefficients) Checked() bool {
	return c.check != nil
}

func (c *Coefficients) validate(xs []*curve.Scalar) error {
	if len(xs) < len(c.xs) {
		return fmt.Errorf("got %d, need %d: %w", len(xs), len(c.xs), ErrInsufficientShares)
	}
	for i, x := range c.xs {
		if !x.Equal(xs[i]) {
			return fmt.Errorf("share %d does not match the coefficients: %w", i, ErrInvalidShare)
		}
	}
	return nil
}

// RebuildScalar returns f(0) from the shares, which must be given in the
// same order as the indices used to compute c.
func (c *Coefficients) RebuildScalar(shares []ScalarShare) (*curve.Scalar, error) {
	xs := make([]*curve.Scalar, len(shares))
	for i, s := range shares {
		xs[i] = s.X
	}
	if err := c.validate(xs); err != nil {
		return nil, fmt.Errorf("threshold.RebuildScalar: %w", err)
	}

	result := curve.NewScalar()
	for i, l := range c.primary {
		result.Add(l.Clone().Mul(shares[i].Y))
	}
	if !c.Checked() {
		return result, nil
	}

	check := c.check[0].Clone().Mul(shares[len(c.primary)].Y)
	for i := 1; i < len(c.primary); i++ {
		check.Add(c.check[i].Clone().Mul(shares[i].Y))
	}
	if !check.Equal(result) {
		return nil, fmt.Errorf("threshold.RebuildScalar: %w", ErrInconsistentShares)
	}
	return result, nil
}

// RebuildPoint returns F(0) from point shares, with the same conventions as RebuildScalar.
func (c *Coefficients) RebuildPoint(shares []PointShare) (*curve.G1, error) {
	xs := make([]*curve.Scalar, len(shares))
	for i, s := range shares {
		xs[i] = s.X
	}
	if err := c.validate(xs); err != nil {
		return nil, fmt.Errorf("threshold.RebuildPoint: %w", err)
	}

	points := make([]*curve.G1, len(c.primary))
	for i := range points {
		points[i] = shares[i].Y
	}
	result := curve.MultiAct(c.primary, points)
	if !c.Checked() {
		return result, nil
	}

	checkPoints := append([]*curve.G1{shares[len(c.primary)].Y}, points[1:]...)
	check := curve.MultiAct(c.check, checkPoints)
	if !check.Equal(result) {
		return nil, fmt.Errorf("threshold.RebuildPoint: %w", ErrInconsistentShares)
	}
	return result, nil
}
