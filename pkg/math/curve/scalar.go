package curve

import (
	"encoding/hex"
	"io"

	"github.com/cloudflare/circl/ecc/bls12381"
)

// Scalar is an element of ℤᵣ. The zero value is 0.
type Scalar struct {
	s bls12381.Scalar
}

// NewScalar returns a new zero Scalar.
func NewScalar() *Scalar {
	return &Scalar{}
}

// NewScalarUInt64 returns a new Scalar equal to n.
func NewScalarUInt64(n uint64) *Scalar {
	return NewScalar().SetUInt64(n)
}

// SetUInt64 sets s = n, and returns s.
func (s *Scalar) SetUInt64(n uint64) *Scalar {
	s.s.SetUint64(n)
	return s
}

// Set sets s = t, and returns s.
func (s *Scalar) Set(t *Scalar) *Scalar {
	s.s.Set(&t.s)
	return s
}

// Clone returns a copy of s.
func (s *Scalar) Clone() *Scalar {
	return NewScalar().Set(s)
}

// Add sets s = s + t, and returns s.
func (s *Scalar) Add(t *Scalar) *Scalar {
	s.s.Add(&s.s, &t.s)
	return s
}

// Sub sets s = s - t, and returns s.
func (s *Scalar) Sub(t *Scalar) *Scalar {
	s.s.Sub(&s.s, &t.s)
	return s
}

// Mul sets s = s • t, and returns s.
func (s *Scalar) Mul(t *Scalar) *Scalar {
	s.s.Mul(&s.s, &t.s)
	return s
}

// Negate sets s = -s, and returns s.
func (s *Scalar) Negate() *Scalar {
	s.s.Neg()
	return s
}

// Invert sets s = 1/s, and returns s.
//
// The inverse of 0 is 0, callers are expected to check IsZero beforehand.
func (s *Scalar) Invert() *Scalar {
	var inv bls12381.Scalar
	inv.Inv(&s.s)
	s.s = inv
	return s
}

// Equal returns true if s and t represent the same value.
func (s *Scalar) Equal(t *Scalar) bool {
	return s.s.IsEqual(&t.s) == 1
}

// IsZero returns true if s = 0.
func (s *Scalar) IsZero() bool {
	return s.s.IsZero() == 1
}

// Act returns s⋅P in G1.
func (s *Scalar) Act(p *G1) *G1 {
	var q G1
	q.p.ScalarMult(&s.s, &p.p)
	return &q
}

// ActOnBase returns s⋅P₁, with P₁ the standard generator of G1.
func (s *Scalar) ActOnBase() *G1 {
	var q G1
	q.p.ScalarMult(&s.s, bls12381.G1Generator())
	return &q
}

// ActG2 returns s⋅Q in G2.
func (s *Scalar) ActG2(q *G2) *G2 {
	var r G2
	r.p.ScalarMult(&s.s, &q.p)
	return &r
}

// ActOnBaseG2 returns s⋅P₂, with P₂ the standard generator of G2.
func (s *Scalar) ActOnBaseG2() *G2 {
	var r G2
	r.p.ScalarMult(&s.s, bls12381.G2Generator())
	return &r
}

// WriteTo implements io.WriterTo, and writes the canonical encoding of s.
func (s *Scalar) WriteTo(w io.Writer) (int64, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*Scalar) Domain() string {
	return "BLS12381 Scalar"
}

func (s *Scalar) String() string {
	data, _ := s.MarshalBinary()
	return hex.EncodeToString(data)
}
