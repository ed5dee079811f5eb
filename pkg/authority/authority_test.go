package authority

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taurusgroup/allosaur/pkg/accumulator"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
	"github.com/taurusgroup/allosaur/pkg/pool"
)

func newAuthority(t *testing.T, cfg Config) (*Authority, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	if cfg.Params == nil {
		cfg.Params = accumulator.DefaultParams()
	}
	cfg.Logger = logger
	a, err := New(cfg)
	require.NoError(t, err)
	return a, hook
}

// consistent checks that replaying the member set gives the current accumulator.
func consistent(t *testing.T, a *Authority) {
	expected, err := accumulator.Construct(a.sk, a.members.Elements())
	require.NoError(t, err)
	assert.True(t, expected.Equal(a.Accumulator()))
}

// fold applies update shares computed with the plain identifier as query.
func fold(w *accumulator.MembershipWitness, shares []DeltaShare) (*accumulator.MembershipWitness, error) {
	steps := make([]accumulator.UpdateStep, 0, len(shares))
	for _, s := range shares {
		step, err := s.Kind.Step(s.Scalar, s.Point)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return w.ApplySteps(steps)
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
	_, err = New(Config{Params: accumulator.DefaultParams(), HistoryLimit: -1})
	assert.Error(t, err)

	a, hook := newAuthority(t, Config{Name: "a"})
	assert.Equal(t, uint64(0), a.Epoch())
	assert.True(t, a.Accumulator().Equal(accumulator.Empty()))
	assert.Equal(t, "a", a.Name())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "a", hook.LastEntry().Data["authority"])
}

func TestAuthority_AddDelete(t *testing.T) {
	a, hook := newAuthority(t, Config{})
	pp, pk := a.Params(), a.PublicKeys()

	y := accumulator.NewElement(rand.Reader)
	w, err := a.Add(y)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), a.Epoch())
	assert.True(t, w.Verify(pp, pk, a.Accumulator(), y))
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	consistent(t, a)

	before := a.Accumulator()
	_, err = a.Add(y)
	assert.True(t, errors.Is(err, accumulator.ErrAlreadyMember))
	assert.Equal(t, uint64(1), a.Epoch(), "failed add must not advance the epoch")
	assert.True(t, before.Equal(a.Accumulator()))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	_, err = a.Delete(accumulator.NewElement(rand.Reader))
	assert.True(t, errors.Is(err, accumulator.ErrNotMember))
	assert.Equal(t, uint64(1), a.Epoch(), "failed delete must not advance the epoch")
	deltas, err := a.Deltas(0)
	require.NoError(t, err)
	assert.Len(t, deltas, 1)

	acc, err := a.Delete(y)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), a.Epoch())
	assert.True(t, acc.Equal(accumulator.Empty()))
	assert.Equal(t, 0, a.Members())
	consistent(t, a)
}

func TestAuthority_Update(t *testing.T) {
	a, _ := newAuthority(t, Config{})
	pp, pk := a.Params(), a.PublicKeys()

	y := accumulator.NewElement(rand.Reader)
	w, err := a.Add(y)
	require.NoError(t, err)
	from := a.Epoch()

	others := make([]*accumulator.Element, 4)
	for i := range others {
		others[i] = accumulator.NewElement(rand.Reader)
		_, err = a.Add(others[i])
		require.NoError(t, err)
	}
	_, err = a.Delete(others[1])
	require.NoError(t, err)
	_, err = a.Delete(others[3])
	require.NoError(t, err)
	assert.False(t, w.Verify(pp, pk, a.Accumulator(), y))

	shares, err := a.Update(from, y)
	require.NoError(t, err)
	require.Len(t, shares, 6)
	for i, s := range shares {
		assert.Equal(t, from+uint64(i), s.Epoch)
	}
	assert.Equal(t, KindAddition, shares[0].Kind)
	assert.Equal(t, KindDeletion, shares[5].Kind)

	updated, err := fold(w, shares)
	require.NoError(t, err)
	assert.True(t, updated.Verify(pp, pk, a.Accumulator(), y))

	// the public deltas give the same witness
	deltas, err := a.Deltas(from)
	require.NoError(t, err)
	public, err := w.MultiBatchUpdate(y, deltas)
	require.NoError(t, err)
	assert.True(t, public.Equal(updated))

	empty, err := a.Update(a.Epoch(), y)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = a.Update(a.Epoch()+1, y)
	assert.True(t, errors.Is(err, ErrEpochInFuture))

	// a deleted member cannot fold its own deletion
	shares, err = a.Update(2, others[1])
	require.NoError(t, err)
	_, err = fold(w, shares)
	assert.True(t, errors.Is(err, accumulator.ErrRevoked))
}

func TestAuthority_HistoryLimit(t *testing.T) {
	a, _ := newAuthority(t, Config{HistoryLimit: 2})
	for i := 0; i < 5; i++ {
		_, err := a.Add(accumulator.NewElement(rand.Reader))
		require.NoError(t, err)
	}
	_, err := a.Update(2, curve.NewScalar())
	assert.True(t, errors.Is(err, ErrEpochForgotten))
	_, err = a.Deltas(0)
	assert.True(t, errors.Is(err, ErrEpochForgotten))

	shares, err := a.Update(3, curve.NewScalar())
	require.NoError(t, err)
	assert.Len(t, shares, 2)
}

func TestAuthority_Witnesses(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()
	a, _ := newAuthority(t, Config{Pool: pl})
	pp, pk := a.Params(), a.PublicKeys()

	ys := make([]*accumulator.Element, 5)
	for i := range ys {
		ys[i] = accumulator.NewElement(rand.Reader)
		_, err := a.Add(ys[i])
		require.NoError(t, err)
	}
	ws, err := a.Witnesses(ys)
	require.NoError(t, err)
	acc := a.Accumulator()
	for i, w := range ws {
		assert.True(t, w.Verify(pp, pk, acc, ys[i]))
	}

	w, err := a.Witness(ys[2])
	require.NoError(t, err)
	assert.True(t, w.Equal(ws[2]))

	_, err = a.Witnesses(append(ys, accumulator.NewElement(rand.Reader)))
	assert.True(t, errors.Is(err, accumulator.ErrNotMember))
	_, err = a.Witness(accumulator.NewElement(rand.Reader))
	assert.True(t, errors.Is(err, accumulator.ErrNotMember))
}

func TestAuthority_Checkpoint(t *testing.T) {
	a, _ := newAuthority(t, Config{})
	_, err := a.Add(accumulator.NewElement(rand.Reader))
	require.NoError(t, err)

	c := a.Checkpoint()
	assert.Equal(t, uint64(1), c.Epoch)
	assert.True(t, c.Verify(a.Params(), a.PublicKeys()))

	c.Epoch++
	assert.False(t, c.Verify(a.Params(), a.PublicKeys()))
	c.Epoch--
	other, _ := newAuthority(t, Config{})
	assert.False(t, c.Verify(a.Params(), other.PublicKeys()))
}

func TestAuthority_Marshal(t *testing.T) {
	a, _ := newAuthority(t, Config{})
	ys := make([]*accumulator.Element, 3)
	for i := range ys {
		ys[i] = accumulator.NewElement(rand.Reader)
		_, err := a.Add(ys[i])
		require.NoError(t, err)
	}
	_, err := a.Delete(ys[0])
	require.NoError(t, err)

	data, err := a.MarshalBinary()
	require.NoError(t, err)

	b, _ := newAuthority(t, Config{})
	require.NoError(t, b.UnmarshalBinary(data))
	assert.Equal(t, a.Epoch(), b.Epoch())
	assert.True(t, a.Accumulator().Equal(b.Accumulator()))
	assert.True(t, a.PublicKeys().Equal(b.PublicKeys()))
	consistent(t, b)

	sa, err := a.Update(1, ys[1])
	require.NoError(t, err)
	sb, err := b.Update(1, ys[1])
	require.NoError(t, err)
	require.Len(t, sb, len(sa))
	for i := range sa {
		assert.True(t, sa[i].Scalar.Equal(sb[i].Scalar))
		assert.True(t, sa[i].Point.Equal(sb[i].Point))
	}

	c, err := a.Clone("replica")
	require.NoError(t, err)
	assert.Equal(t, "replica", c.Name())
	_, err = c.Add(accumulator.NewElement(rand.Reader))
	require.NoError(t, err)
	assert.Equal(t, a.Epoch()+1, c.Epoch(), "replicas evolve independently")

	assert.Error(t, b.UnmarshalBinary(data[:len(data)-3]))
	assert.Equal(t, a.Epoch(), b.Epoch(), "failed restore keeps the state")
}

func TestAuthority_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, _ := newAuthority(t, Config{Name: "m", Registerer: reg})

	y := accumulator.NewElement(rand.Reader)
	_, err := a.Add(y)
	require.NoError(t, err)
	_, err = a.Add(y)
	require.Error(t, err)
	_, err = a.Update(0, y)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.ops.WithLabelValues(opAdd, "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.ops.WithLabelValues(opAdd, "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.ops.WithLabelValues(opUpdate, "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.epoch))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 3)

	// a second authority with the same name collides
	_, err = New(Config{Name: "m", Params: a.Params(), Registerer: reg, Logger: logrus.New()})
	assert.Error(t, err)
}

func TestGroup(t *testing.T) {
	a, _ := newAuthority(t, Config{Name: "g"})
	_, err := NewGroup(a, 0)
	assert.Error(t, err)

	g, err := NewGroup(a, 3)
	require.NoError(t, err)
	require.Len(t, g.Replicas(), 3)
	assert.Equal(t, "g-2", g.Replicas()[2].Name())

	y := accumulator.NewElement(rand.Reader)
	w, epoch, err := g.Admit(y)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), epoch)
	assert.True(t, w.Verify(g.Params(), g.PublicKeys(), g.Accumulator(), y))
	for _, r := range g.Replicas() {
		assert.Equal(t, uint64(1), r.Epoch())
		assert.True(t, r.Accumulator().Equal(g.Accumulator()))
	}

	_, _, err = g.Admit(y)
	assert.True(t, errors.Is(err, accumulator.ErrAlreadyMember))
	for _, r := range g.Replicas() {
		assert.Equal(t, uint64(1), r.Epoch(), "a failed mutation leaves every replica untouched")
	}

	acc, err := g.Delete(y)
	require.NoError(t, err)
	assert.True(t, acc.Equal(accumulator.Empty()))
	assert.Equal(t, uint64(2), g.Epoch())
}
