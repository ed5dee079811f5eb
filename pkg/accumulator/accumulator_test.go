package accumulator

import (
	"crypto/rand"
	"errors"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taurusgroup/allosaur/internal/params"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

func randomElements(n int) []*Element {
	out := make([]*Element, n)
	for i := range out {
		out[i] = NewElement(rand.Reader)
	}
	return out
}

func TestDefaultParams(t *testing.T) {
	pp := DefaultParams()
	assert.True(t, pp.Equal(DefaultParams()), "params must be deterministic")

	g1 := []*curve.G1{pp.P1, pp.K0, pp.K1, pp.X1, pp.Y1, pp.Z1}
	for i := range g1 {
		assert.False(t, g1[i].IsIdentity())
		for j := i + 1; j < len(g1); j++ {
			assert.False(t, g1[i].Equal(g1[j]), "generators %d and %d collide", i, j)
		}
	}
	assert.False(t, pp.K2.Equal(pp.P2))

	data, err := pp.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, params.BytesParams)

	var pp2 Params
	require.NoError(t, pp2.UnmarshalBinary(data))
	assert.True(t, pp.Equal(&pp2))

	p1, _ := pp.P1.MarshalBinary()
	assert.Equal(t, p1, data[:params.BytesG1], "p1 comes first")
	z1, _ := pp.Z1.MarshalBinary()
	assert.Equal(t, z1, data[params.BytesParams-params.BytesG1:], "z1 comes last")
}

func TestParams_UnmarshalRejects(t *testing.T) {
	data, err := DefaultParams().MarshalBinary()
	require.NoError(t, err)

	var pp Params
	assert.True(t, errors.Is(pp.UnmarshalBinary(data[1:]), curve.ErrDecode))

	// flip the sign bit of k0
	data[params.BytesG1+params.BytesG2] ^= 0x20
	err = pp.UnmarshalBinary(data)
	if err == nil {
		assert.False(t, pp.Equal(DefaultParams()))
	} else {
		assert.True(t, errors.Is(err, curve.ErrDecode))
	}
}

func TestKeys_Marshal(t *testing.T) {
	pp := DefaultParams()
	sk := NewSecretKey(rand.Reader)
	pk := sk.PublicKeys(pp)

	data, err := pk.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 2*params.BytesG2)
	var pk2 PublicKeys
	require.NoError(t, pk2.UnmarshalBinary(data))
	assert.True(t, pk.Equal(&pk2))

	data, err = sk.MarshalBinary()
	require.NoError(t, err)
	var sk2 SecretKey
	require.NoError(t, sk2.UnmarshalBinary(data))
	assert.True(t, sk.Equal(&sk2))

	assert.Error(t, sk2.UnmarshalBinary(make([]byte, params.BytesScalar)), "zero key")
}

func TestSecretKeyFromSeed(t *testing.T) {
	a := SecretKeyFromSeed([]byte("seed"))
	assert.True(t, a.Equal(SecretKeyFromSeed([]byte("seed"))))
	assert.False(t, a.Equal(SecretKeyFromSeed([]byte("other seed"))))
}

func TestConstruct_OrderIndependent(t *testing.T) {
	sk := NewSecretKey(rand.Reader)
	members := randomElements(6)

	constructed, err := Construct(sk, members)
	require.NoError(t, err)

	for trial := 0; trial < 3; trial++ {
		perm := mrand.Perm(len(members))
		acc := Empty()
		for _, i := range perm {
			acc, err = acc.Add(sk, members[i])
			require.NoError(t, err)
		}
		assert.True(t, constructed.Equal(acc))
	}

	empty, err := Construct(sk, nil)
	require.NoError(t, err)
	assert.True(t, empty.Equal(Empty()))

	_, err = Construct(sk, append(members, members[0]))
	assert.True(t, errors.Is(err, ErrAlreadyMember))
}

func TestAccumulator_Delete(t *testing.T) {
	sk := NewSecretKey(rand.Reader)
	members := randomElements(4)
	set := NewMemberSet(members...)
	acc, err := Construct(sk, members)
	require.NoError(t, err)

	_, err = acc.Delete(sk, set, NewElement(rand.Reader))
	assert.True(t, errors.Is(err, ErrNotMember))

	deleted, err := acc.Delete(sk, set, members[2])
	require.NoError(t, err)
	expected, err := Construct(sk, []*Element{members[0], members[1], members[3]})
	require.NoError(t, err)
	assert.True(t, expected.Equal(deleted))
}

func TestAccumulator_Marshal(t *testing.T) {
	sk := NewSecretKey(rand.Reader)
	acc, err := Construct(sk, randomElements(2))
	require.NoError(t, err)

	for _, a := range []*Accumulator{acc, Empty(), {V: curve.NewG1()}} {
		data, err := a.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, params.BytesG1)
		var a2 Accumulator
		require.NoError(t, a2.UnmarshalBinary(data))
		assert.True(t, a.Equal(&a2))
	}
}

func TestMemberSet(t *testing.T) {
	elements := randomElements(3)
	s := NewMemberSet(elements...)
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.Add(elements[0].Clone()))
	assert.True(t, s.Contains(elements[1]))
	assert.True(t, s.Remove(elements[1]))
	assert.False(t, s.Remove(elements[1]))
	assert.False(t, s.Contains(elements[1]))

	c := s.Clone()
	c.Add(elements[1])
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, c.Len())
	assert.Len(t, c.Elements(), 3)
}

func TestHashElement(t *testing.T) {
	assert.True(t, HashElement([]byte("alice")).Equal(HashElement([]byte("alice"))))
	assert.False(t, HashElement([]byte("alice")).Equal(HashElement([]byte("bob"))))
}
