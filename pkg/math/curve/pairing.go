package curve

import (
	"io"

	"github.com/cloudflare/circl/ecc/bls12381"
)

// GT is an element of the target group of the pairing.
type GT struct {
	g bls12381.Gt
}

// Pair returns e(p, q).
//
// circl normalizes its inputs in place, so it only ever sees copies.
func Pair(p *G1, q *G2) *GT {
	pc, qc := p.p, q.p
	return &GT{g: *bls12381.Pair(&pc, &qc)}
}

// PairProduct returns ∏ e(psᵢ, qsᵢ)^exponentsᵢ, computed with a single final
// exponentiation.
//
// The three slices must have the same length.
func PairProduct(ps []*G1, qs []*G2, exponents []*Scalar) *GT {
	if len(ps) != len(qs) || len(ps) != len(exponents) {
		panic("curve.PairProduct: length mismatch")
	}
	// the inputs are copied: ProdPair affinizes P in place with one shared
	// inversion, which breaks on a point given twice
	pc := make([]bls12381.G1, len(ps))
	qc := make([]bls12381.G2, len(qs))
	p := make([]*bls12381.G1, len(ps))
	q := make([]*bls12381.G2, len(qs))
	n := make([]*bls12381.Scalar, len(exponents))
	for i := range ps {
		pc[i], qc[i] = ps[i].p, qs[i].p
		p[i], q[i] = &pc[i], &qc[i]
		n[i] = &exponents[i].s
	}
	return &GT{g: *bls12381.ProdPair(p, q, n)}
}

// Mul sets z = z • x, and returns z.
func (z *GT) Mul(x *GT) *GT {
	var prod bls12381.Gt
	prod.Mul(&z.g, &x.g)
	z.g = prod
	return z
}

// Exp sets z = z^n, and returns z.
func (z *GT) Exp(n *Scalar) *GT {
	var r bls12381.Gt
	r.Exp(&z.g, &n.s)
	z.g = r
	return z
}

// Equal returns true if z and x are the same element.
func (z *GT) Equal(x *GT) bool {
	return z.g.IsEqual(&x.g)
}

// IsIdentity returns true if z = 1.
func (z *GT) IsIdentity() bool {
	return z.g.IsIdentity()
}

// WriteTo implements io.WriterTo.
func (z *GT) WriteTo(w io.Writer) (int64, error) {
	data, err := z.g.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*GT) Domain() string {
	return "BLS12381 GT"
}

// MultiAct returns ∑ scalarsᵢ⋅pointsᵢ in G1.
func MultiAct(scalars []*Scalar, points []*G1) *G1 {
	if len(scalars) != len(points) {
		panic("curve.MultiAct: length mismatch")
	}
	result := NewG1()
	for i := range scalars {
		if scalars[i].IsZero() {
			continue
		}
		result.Add(scalars[i].Act(points[i]))
	}
	return result
}
