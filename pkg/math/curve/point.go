package curve

import (
	"io"

	"github.com/cloudflare/circl/ecc/bls12381"
)

// G1 is a point in the first pairing group.
//
// Points must be obtained from NewG1, G1Generator, a Scalar action, or
// decoding; the zero value of the struct is not a valid point.
type G1 struct {
	p bls12381.G1
}

// NewG1 returns the identity of G1.
func NewG1() *G1 {
	var g G1
	g.p.SetIdentity()
	return &g
}

// G1Generator returns the standard generator P₁.
func G1Generator() *G1 {
	return &G1{p: *bls12381.G1Generator()}
}

// Set sets g = h, and returns g.
func (g *G1) Set(h *G1) *G1 {
	g.p = h.p
	return g
}

// Clone returns a copy of g.
func (g *G1) Clone() *G1 {
	return new(G1).Set(g)
}

// Add sets g = g + h, and returns g.
func (g *G1) Add(h *G1) *G1 {
	var sum bls12381.G1
	sum.Add(&g.p, &h.p)
	g.p = sum
	return g
}

// Sub sets g = g - h, and returns g.
func (g *G1) Sub(h *G1) *G1 {
	neg := h.p
	neg.Neg()
	var sum bls12381.G1
	sum.Add(&g.p, &neg)
	g.p = sum
	return g
}

// Negate sets g = -g, and returns g.
func (g *G1) Negate() *G1 {
	g.p.Neg()
	return g
}

// Equal returns true if g and h represent the same point.
func (g *G1) Equal(h *G1) bool {
	return g.p.IsEqual(&h.p)
}

// IsIdentity returns true if g is the point at infinity.
func (g *G1) IsIdentity() bool {
	return g.p.IsIdentity()
}

// WriteTo implements io.WriterTo, and writes the compressed encoding of g.
func (g *G1) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(g.p.BytesCompressed())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*G1) Domain() string {
	return "BLS12381 G1"
}

// G2 is a point in the second pairing group.
type G2 struct {
	p bls12381.G2
}

// NewG2 returns the identity of G2.
func NewG2() *G2 {
	var g G2
	g.p.SetIdentity()
	return &g
}

// G2Generator returns the standard generator P₂.
func G2Generator() *G2 {
	return &G2{p: *bls12381.G2Generator()}
}

// Set sets g = h, and returns g.
func (g *G2) Set(h *G2) *G2 {
	g.p = h.p
	return g
}

// Add sets g = g + h, and returns g.
func (g *G2) Add(h *G2) *G2 {
	var sum bls12381.G2
	sum.Add(&g.p, &h.p)
	g.p = sum
	return g
}

// Negate sets g = -g, and returns g.
func (g *G2) Negate() *G2 {
	g.p.Neg()
	return g
}

// Equal returns true if g and h represent the same point.
func (g *G2) Equal(h *G2) bool {
	return g.p.IsEqual(&h.p)
}

// IsIdentity returns true if g is the point at infinity.
func (g *G2) IsIdentity() bool {
	return g.p.IsIdentity()
}

// WriteTo implements io.WriterTo, and writes the compressed encoding of g.
func (g *G2) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(g.p.BytesCompressed())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*G2) Domain() string {
	return "BLS12381 G2"
}
