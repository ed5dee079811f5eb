package polynomial

import (
	"encoding/binary"
	"io"

	"github.com/taurusgroup/allosaur/pkg/math/curve"
	"github.com/taurusgroup/allosaur/pkg/pool"
)

// Exponent represents a polynomial whose coefficients are points of G1,
// F(X) = A₀ + A₁⋅X + … + Aₜ⋅Xᵗ.
type Exponent struct {
	coefficients []*curve.G1
}

// NewPolynomialExponent returns F(X) = f(X)⋅B, for a base point B.
//
// The coefficients are computed on pl.
func NewPolynomialExponent(pl *pool.Pool, f *Polynomial, base *curve.G1) *Exponent {
	return &Exponent{coefficients: pool.Parallelize(pl, len(f.coefficients), func(i int) *curve.G1 {
		return f.coefficients[i].Act(base)
	})}
}

// Degree is the highest power of F.
func (p *Exponent) Degree() int {
	return len(p.coefficients) - 1
}

// Constant returns the constant coefficient of the polynomial 'in the exponent'
func (p *Exponent) Constant() *curve.G1 {
	return p.coefficients[0]
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *Exponent) WriteTo(w io.Writer) (int64, error) {
	// write the number of coefficients
	if err := binary.Write(w, binary.BigEndian, uint32(len(p.coefficients))); err != nil {
		return 0, err
	}
	nAll := int64(4)

	for _, c := range p.coefficients {
		n, err := c.WriteTo(w)
		nAll += n
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain.
func (*Exponent) Domain() string {
	return "Exponent"
}

func (p *Exponent) SetCoefficients(points []*curve.G1) *Exponent {
	p.coefficients = points
	return p
}

func (p *Exponent) Coefficients() []*curve.G1 {
	return p.coefficients
}
