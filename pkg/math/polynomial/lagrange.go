package polynomial

import (
	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

// Lagrange returns the Lagrange coefficients at 0 for every point of the
// interpolation domain, in the same order.
//
// The domain must consist of distinct non-zero scalars.
func Lagrange(interpolationDomain []*curve.Scalar) []*curve.Scalar {
	// numerator = x₀ * … * xₖ
	numerator := Numerator(interpolationDomain)

	coefficients := make([]*curve.Scalar, len(interpolationDomain))
	for j := range interpolationDomain {
		coefficients[j] = lagrange(interpolationDomain, numerator, j)
	}
	return coefficients
}

// Numerator returns x₀ * … * xₖ.
func Numerator(interpolationDomain []*curve.Scalar) *curve.Scalar {
	numerator := curve.NewScalarUInt64(1)
	for _, x := range interpolationDomain {
		numerator.Mul(x)
	}
	return numerator
}

// lagrange returns the Lagrange coefficient lⱼ(0), for j in the interpolation domain.
// The numerator is provided beforehand for efficiency reasons.
//
// The following formulas are taken from
// https://en.wikipedia.org/wiki/Lagrange_polynomial
//
//	                         x₀ ⋅⋅⋅ xₖ
//	lⱼ(0) = --------------------------------------------------
//	        xⱼ⋅(x₀ - xⱼ)⋅⋅⋅(xⱼ₋₁ - xⱼ)⋅(xⱼ₊₁ - xⱼ)⋅⋅⋅(xₖ - xⱼ).
func lagrange(interpolationDomain []*curve.Scalar, numerator *curve.Scalar, j int) *curve.Scalar {
	xJ := interpolationDomain[j]

	denominator := curve.NewScalarUInt64(1)
	for i, xI := range interpolationDomain {
		if i == j {
			// lⱼ *= xⱼ
			denominator.Mul(xJ)
			continue
		}
		// lⱼ *= xᵢ - xⱼ
		denominator.Mul(xI.Clone().Sub(xJ))
	}

	// lⱼ = numerator/denominator
	return denominator.Invert().Mul(numerator)
}
