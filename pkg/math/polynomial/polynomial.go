package polynomial

import (
	"io"

	"github.com/taurusgroup/allosaur/pkg/math/curve"
	"github.com/taurusgroup/allosaur/pkg/math/sample"
)

// Polynomial represents f(X) = a₀ + a₁⋅X + … + aₜ⋅Xᵗ.
type Polynomial struct {
	coefficients []*curve.Scalar
}

// NewPolynomial generates a Polynomial f(X) = secret + a₁⋅X + … + aₜ⋅Xᵗ,
// with coefficients in ℤᵣ, and degree t.
func NewPolynomial(rand io.Reader, degree int, constant *curve.Scalar) *Polynomial {
	polynomial := &Polynomial{coefficients: make([]*curve.Scalar, degree+1)}

	// if the constant is nil, we interpret it as 0.
	if constant == nil {
		constant = curve.NewScalar()
	}
	polynomial.coefficients[0] = constant.Clone()

	for i := 1; i <= degree; i++ {
		polynomial.coefficients[i] = sample.Scalar(rand)
	}
	return polynomial
}

// NewPolynomialFromRoots returns f(X) = (r₀ - X)⋅⋅⋅(rₖ - X).
//
// With no roots, f(X) = 1.
func NewPolynomialFromRoots(roots ...*curve.Scalar) *Polynomial {
	p := &Polynomial{coefficients: []*curve.Scalar{curve.NewScalarUInt64(1)}}
	for _, r := range roots {
		p.MulRoot(r)
	}
	return p
}

// MulRoot sets f(X) = f(X)⋅(root - X), and returns f.
func (p *Polynomial) MulRoot(root *curve.Scalar) *Polynomial {
	n := len(p.coefficients)
	result := make([]*curve.Scalar, n+1)
	result[n] = curve.NewScalar()
	for i := 0; i <= n; i++ {
		if result[i] == nil {
			result[i] = curve.NewScalar()
		}
		// cᵢ = root⋅aᵢ - aᵢ₋₁
		if i < n {
			result[i].Add(root.Clone().Mul(p.coefficients[i]))
		}
		if i > 0 {
			result[i].Sub(p.coefficients[i-1])
		}
	}
	p.coefficients = result
	return p
}

// AddScaled sets f(X) = f(X) + s⋅g(X), and returns f.
//
// f is extended if g has a higher degree.
func (p *Polynomial) AddScaled(g *Polynomial, s *curve.Scalar) *Polynomial {
	for len(p.coefficients) < len(g.coefficients) {
		p.coefficients = append(p.coefficients, curve.NewScalar())
	}
	for i, c := range g.coefficients {
		p.coefficients[i].Add(c.Clone().Mul(s))
	}
	return p
}

// Evaluate evaluates a polynomial in a given variable index
// We use Horner's method: https://en.wikipedia.org/wiki/Horner%27s_method
func (p *Polynomial) Evaluate(index *curve.Scalar) *curve.Scalar {
	if index.IsZero() {
		panic("attempt to leak secret")
	}
	result := curve.NewScalar()
	// reverse order
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// bₙ₋₁ = bₙ * x + aₙ₋₁
		result.Mul(index).Add(p.coefficients[i])
	}
	return result
}

// Coefficients returns a.
func (p *Polynomial) Coefficients() []*curve.Scalar {
	return p.coefficients
}

// Constant returns a reference to the constant coefficient of the polynomial.
func (p *Polynomial) Constant() *curve.Scalar {
	return p.coefficients[0]
}

// Degree is the highest power of the Polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}
