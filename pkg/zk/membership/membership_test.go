package zkmembership

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taurusgroup/allosaur/internal/params"
	"github.com/taurusgroup/allosaur/pkg/accumulator"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

func setup(t *testing.T) (Public, Private) {
	pp := accumulator.DefaultParams()
	sk := accumulator.NewSecretKey(rand.Reader)
	members := make([]*accumulator.Element, 4)
	for i := range members {
		members[i] = accumulator.NewElement(rand.Reader)
	}
	acc, err := accumulator.Construct(sk, members)
	require.NoError(t, err)
	w, err := accumulator.NewMembershipWitness(sk, acc, accumulator.NewMemberSet(members...), members[1])
	require.NoError(t, err)
	public := Public{Params: pp, Keys: sk.PublicKeys(pp), Accumulator: acc}
	return public, Private{Witness: w, Y: members[1]}
}

func TestMembershipPass(t *testing.T) {
	public, private := setup(t)
	challenge := []byte("verifier nonce")

	proof := NewProof(rand.Reader, challenge, public, private)
	assert.True(t, proof.Verify(challenge, public))
	assert.True(t, proof.Verify(challenge, public), "verification is repeatable")
	assert.True(t, public.Params.Equal(accumulator.DefaultParams()), "params are left untouched")

	data, err := proof.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, params.BytesProof)
	var decoded Proof
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(t, decoded.Verify(challenge, public))

	other := NewProof(rand.Reader, challenge, public, private)
	assert.False(t, other.EC.Equal(proof.EC), "proofs must be randomized")
}

func TestMembershipFail(t *testing.T) {
	public, private := setup(t)
	challenge := make([]byte, params.BytesChallenge)
	proof := NewProof(rand.Reader, challenge, public, private)

	assert.False(t, proof.Verify([]byte("another challenge"), public), "wrong challenge")

	wrongAcc := public
	wrongAcc.Accumulator = accumulator.Empty()
	assert.False(t, proof.Verify(challenge, wrongAcc), "wrong accumulator")

	wrongKeys := public
	wrongKeys.Keys = accumulator.NewSecretKey(rand.Reader).PublicKeys(public.Params)
	assert.False(t, proof.Verify(challenge, wrongKeys), "wrong keys")

	// a valid witness for the wrong identifier
	forged := NewProof(rand.Reader, challenge, public, Private{Witness: private.Witness, Y: accumulator.NewElement(rand.Reader)})
	assert.False(t, forged.Verify(challenge, public), "wrong identifier")

	identity := *proof
	identity.Commitment = &Commitment{EC: curve.NewG1(), TSigma: proof.TSigma, TRho: proof.TRho}
	assert.False(t, identity.Verify(challenge, public))
	_, err := identity.MarshalBinary()
	assert.Error(t, err)

	tampered := *proof
	tampered.SY = proof.SY.Clone().Add(curve.NewScalarUInt64(1))
	assert.False(t, tampered.Verify(challenge, public))

	var empty Proof
	assert.False(t, empty.Verify(challenge, public))
}

func TestMembership_UnmarshalRejects(t *testing.T) {
	public, private := setup(t)
	data, err := NewProof(rand.Reader, nil, public, private).MarshalBinary()
	require.NoError(t, err)

	var p Proof
	assert.True(t, errors.Is(p.UnmarshalBinary(data[:len(data)-1]), curve.ErrDecode))

	// a scalar ≥ r
	bad := append([]byte(nil), data...)
	for i := 3 * params.BytesG1; i < 3*params.BytesG1+params.BytesScalar; i++ {
		bad[i] = 0xFF
	}
	assert.True(t, errors.Is(p.UnmarshalBinary(bad), curve.ErrDecode))
}
