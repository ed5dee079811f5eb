// Package curve wraps the BLS12-381 pairing groups G1, G2 and GT, together with
// their shared scalar field ℤᵣ.
//
// All types follow the same convention: methods mutate and return the receiver,
// so that operations can be chained, e.g. s.Set(a).Mul(b).Add(c).
package curve

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/cloudflare/circl/ecc/bls12381"
	"github.com/cronokirby/saferith"
	"golang.org/x/crypto/sha3"

	"github.com/taurusgroup/allosaur/internal/params"
)

// ErrDecode is wrapped by every decoding failure of this package.
var ErrDecode = errors.New("curve: invalid encoding")

var order = saferith.ModulusFromBytes(bls12381.Order())

// Order returns r, the prime order shared by G1, G2 and GT.
func Order() *saferith.Modulus {
	return order
}

// ScalarFromWide reduces an arbitrary big-endian byte string modulo r.
//
// When used with params.BytesScalarWide uniform bytes, the result is
// statistically close to uniform in ℤᵣ.
func ScalarFromWide(data []byte) *Scalar {
	n := new(saferith.Nat).SetBytes(data)
	n.Mod(n, order)
	buf := make([]byte, params.BytesScalar)
	n.FillBytes(buf)

	var s Scalar
	s.s.SetBytes(buf)
	return &s
}

// HashToScalar derives a scalar from a domain string and a list of byte strings,
// using SHAKE256 with a wide output.
//
// Every piece of data is length prefixed, so that the boundaries between
// pieces cannot be shifted.
func HashToScalar(domain string, data ...[]byte) *Scalar {
	h := sha3.NewShake256()
	writeLengthPrefixed(h, []byte(domain))
	for _, d := range data {
		writeLengthPrefixed(h, d)
	}
	out := make([]byte, params.BytesScalarWide)
	if _, err := io.ReadFull(h, out); err != nil {
		panic("curve.HashToScalar: internal hash failure")
	}
	return ScalarFromWide(out)
}

func writeLengthPrefixed(w io.Writer, data []byte) {
	var prefix [8]byte
	binary.BigEndian.PutUint64(prefix[:], uint64(len(data)))
	_, _ = w.Write(prefix[:])
	_, _ = w.Write(data)
}

// HashToG1 maps msg to a point of G1 (hash_to_curve, SSWU, random oracle variant),
// with dst as domain separation tag.
func HashToG1(msg, dst []byte) *G1 {
	var g G1
	g.p.Hash(msg, dst)
	return &g
}

// HashToG2 maps msg to a point of G2, with dst as domain separation tag.
func HashToG2(msg, dst []byte) *G2 {
	var g G2
	g.p.Hash(msg, dst)
	return &g
}
