package accumulator

import (
	"bytes"
	"fmt"
	"io"

	"github.com/taurusgroup/allosaur/internal/params"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
	"github.com/taurusgroup/allosaur/pkg/math/sample"
)

// SecretKey is the authority's trapdoor α.
type SecretKey struct {
	alpha *curve.Scalar
}

// NewSecretKey samples a fresh non-zero secret key.
func NewSecretKey(rand io.Reader) *SecretKey {
	return &SecretKey{alpha: sample.ScalarUnit(rand)}
}

// SecretKeyFromSeed deterministically derives a secret key from seed.
func SecretKeyFromSeed(seed []byte) *SecretKey {
	alpha := curve.HashToScalar("Accumulator SecretKey", seed)
	if alpha.IsZero() {
		panic("accumulator.SecretKeyFromSeed: derived key is 0")
	}
	return &SecretKey{alpha: alpha}
}

// factor returns y + α, failing if it is 0, in which case y would wipe the accumulator.
func (sk *SecretKey) factor(y *Element) (*curve.Scalar, error) {
	f := y.Clone().Add(sk.alpha)
	if f.IsZero() {
		return nil, ErrInvalidElement
	}
	return f, nil
}

// PublicKeys derives the public keys corresponding to sk.
func (sk *SecretKey) PublicKeys(pp *Params) *PublicKeys {
	return &PublicKeys{
		WitnessKey: sk.alpha.ActG2(pp.P2),
		SignKey:    sk.alpha.ActG2(pp.K2),
	}
}

// Sign returns the signature α⋅H(msg) ∈ G1, where H hashes to G1.
func (sk *SecretKey) Sign(msg []byte) *curve.G1 {
	return sk.alpha.Act(curve.HashToG1(msg, []byte(dstSign)))
}

// Equal returns true if both keys hold the same secret.
func (sk *SecretKey) Equal(other *SecretKey) bool {
	return sk.alpha.Equal(other.alpha)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	return sk.alpha.MarshalBinary()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	alpha := curve.NewScalar()
	if err := alpha.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("accumulator.SecretKey.Unmarshal: %w", err)
	}
	if alpha.IsZero() {
		return fmt.Errorf("accumulator.SecretKey.Unmarshal: key is 0: %w", curve.ErrDecode)
	}
	sk.alpha = alpha
	return nil
}

// PublicKeys are the public counterparts of a SecretKey α.
type PublicKeys struct {
	// WitnessKey = α⋅P₂ verifies witnesses and membership proofs.
	WitnessKey *curve.G2
	// SignKey = α⋅K₂ verifies accumulator checkpoints.
	SignKey *curve.G2
}

// VerifySignature checks e(sig, K₂) = e(H(msg), SignKey).
func (pk *PublicKeys) VerifySignature(pp *Params, msg []byte, sig *curve.G1) bool {
	if sig == nil || sig.IsIdentity() {
		return false
	}
	h := curve.HashToG1(msg, []byte(dstSign))
	check := curve.PairProduct(
		[]*curve.G1{sig, h},
		[]*curve.G2{pp.K2, pk.SignKey},
		[]*curve.Scalar{curve.NewScalarUInt64(1), curve.NewScalarUInt64(1).Negate()},
	)
	return check.IsIdentity()
}

// Equal returns true if both key sets are the same.
func (pk *PublicKeys) Equal(other *PublicKeys) bool {
	return pk.WitnessKey.Equal(other.WitnessKey) && pk.SignKey.Equal(other.SignKey)
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// The layout is WitnessKey ‖ SignKey.
func (pk *PublicKeys) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := pk.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (pk *PublicKeys) UnmarshalBinary(data []byte) error {
	if len(data) != 2*params.BytesG2 {
		return fmt.Errorf("accumulator.PublicKeys.Unmarshal: expected %d bytes, got %d: %w", 2*params.BytesG2, len(data), curve.ErrDecode)
	}
	w, s := new(curve.G2), new(curve.G2)
	if err := w.UnmarshalBinary(data[:params.BytesG2]); err != nil {
		return fmt.Errorf("accumulator.PublicKeys.Unmarshal: witness key: %w", err)
	}
	if err := s.UnmarshalBinary(data[params.BytesG2:]); err != nil {
		return fmt.Errorf("accumulator.PublicKeys.Unmarshal: sign key: %w", err)
	}
	pk.WitnessKey, pk.SignKey = w, s
	return nil
}

// WriteTo implements io.WriterTo.
func (pk *PublicKeys) WriteTo(w io.Writer) (int64, error) {
	n0, err := pk.WitnessKey.WriteTo(w)
	if err != nil {
		return n0, err
	}
	n1, err := pk.SignKey.WriteTo(w)
	return n0 + n1, err
}

// Domain implements hash.WriterToWithDomain.
func (*PublicKeys) Domain() string {
	return "Accumulator PublicKeys"
}
