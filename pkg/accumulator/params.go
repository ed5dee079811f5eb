package accumulator

import (
	"bytes"
	"fmt"
	"io"

	"github.com/taurusgroup/allosaur/internal/params"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

const (
	dstG1 = "BLS12381G1_XMD:SHA-256_SSWU_RO_"
	dstG2 = "BLS12381G2_XMD:SHA-256_SSWU_RO_"

	dstSign = "ALLOSAUR-SIG-BLS12381G1_XMD:SHA-256_SSWU_RO_"
)

// Params holds the public generators shared by the authority, holders and verifiers.
//
// P1 and P2 are the standard generators of G1 and G2. The others are
// hash-to-curve outputs, so nobody knows their discrete logarithms
// with respect to each other.
type Params struct {
	P1 *curve.G1
	P2 *curve.G2
	// K0, K1 ∈ G1 and K2 ∈ G2 are reserved for signing, K2 being the base of SignKey.
	K0, K1 *curve.G1
	K2     *curve.G2
	// X1, Y1, Z1 are the commitment bases of the membership proof.
	X1, Y1, Z1 *curve.G1
}

// generatorMessage returns 0xFF…FF with its first byte replaced by tag.
func generatorMessage(tag byte) []byte {
	msg := bytes.Repeat([]byte{0xFF}, 32)
	msg[0] = tag
	return msg
}

// DefaultParams returns the fixed generators. The result does not depend on any
// randomness and is identical across implementations.
func DefaultParams() *Params {
	return &Params{
		P1: curve.G1Generator(),
		P2: curve.G2Generator(),
		K0: curve.HashToG1(generatorMessage(0xFF), []byte(dstG1)),
		K1: curve.HashToG1(generatorMessage(0xFE), []byte(dstG1)),
		K2: curve.HashToG2(generatorMessage(0xFD), []byte(dstG2)),
		X1: curve.HashToG1(generatorMessage(0xFC), []byte(dstG1)),
		Y1: curve.HashToG1(generatorMessage(0xFB), []byte(dstG1)),
		Z1: curve.HashToG1(generatorMessage(0xFA), []byte(dstG1)),
	}
}

// Equal returns true if both parameter sets have the same generators.
func (p *Params) Equal(q *Params) bool {
	return p.P1.Equal(q.P1) && p.P2.Equal(q.P2) &&
		p.K0.Equal(q.K0) && p.K1.Equal(q.K1) && p.K2.Equal(q.K2) &&
		p.X1.Equal(q.X1) && p.Y1.Equal(q.Y1) && p.Z1.Equal(q.Z1)
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// The layout is p1 ‖ p2 ‖ k0 ‖ k1 ‖ k2 ‖ x1 ‖ y1 ‖ z1, with compressed points.
func (p *Params) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(params.BytesParams)
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Params) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesParams {
		return fmt.Errorf("accumulator.Params.Unmarshal: expected %d bytes, got %d: %w", params.BytesParams, len(data), curve.ErrDecode)
	}
	var q Params
	q.P1, q.P2, q.K0, q.K1, q.K2 = new(curve.G1), new(curve.G2), new(curve.G1), new(curve.G1), new(curve.G2)
	q.X1, q.Y1, q.Z1 = new(curve.G1), new(curve.G1), new(curve.G1)

	r := bytes.NewReader(data)
	next := func(n int) []byte {
		b := make([]byte, n)
		_, _ = io.ReadFull(r, b)
		return b
	}
	fields := []struct {
		name string
		u    interface{ UnmarshalBinary([]byte) error }
		size int
	}{
		{"p1", q.P1, params.BytesG1},
		{"p2", q.P2, params.BytesG2},
		{"k0", q.K0, params.BytesG1},
		{"k1", q.K1, params.BytesG1},
		{"k2", q.K2, params.BytesG2},
		{"x1", q.X1, params.BytesG1},
		{"y1", q.Y1, params.BytesG1},
		{"z1", q.Z1, params.BytesG1},
	}
	for _, f := range fields {
		if err := f.u.UnmarshalBinary(next(f.size)); err != nil {
			return fmt.Errorf("accumulator.Params.Unmarshal: %s: %w", f.name, err)
		}
	}
	*p = q
	return nil
}

// WriteTo implements io.WriterTo, writing the same bytes as MarshalBinary.
func (p *Params) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, g := range []io.WriterTo{p.P1, p.P2, p.K0, p.K1, p.K2, p.X1, p.Y1, p.Z1} {
		n, err := g.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (*Params) Domain() string {
	return "Accumulator Params"
}
