package polynomial

import (
	"crypto/rand"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taurusgroup/allosaur/pkg/math/curve"
	"github.com/taurusgroup/allosaur/pkg/math/sample"
	"github.com/taurusgroup/allosaur/pkg/pool"
)

func TestPolynomial_Constant(t *testing.T) {
	deg := 10
	secret := sample.Scalar(rand.Reader)
	poly := NewPolynomial(rand.Reader, deg, secret)
	require.True(t, poly.Constant().Equal(secret))
	require.Equal(t, deg, poly.Degree())
}

func TestPolynomial_Evaluate(t *testing.T) {
	// f(X) = 1 + X²
	polynomial := &Polynomial{[]*curve.Scalar{
		curve.NewScalarUInt64(1),
		curve.NewScalar(),
		curve.NewScalarUInt64(1),
	}}

	for index := 0; index < 100; index++ {
		x := uint64(mrand.Uint32())
		computedResult := polynomial.Evaluate(curve.NewScalarUInt64(x))
		expectedResult := curve.NewScalarUInt64(x * x).Add(curve.NewScalarUInt64(1))
		assert.True(t, expectedResult.Equal(computedResult))
	}

	assert.Panics(t, func() { polynomial.Evaluate(curve.NewScalar()) })
}

func TestPolynomial_FromRoots(t *testing.T) {
	roots := []*curve.Scalar{sample.Scalar(rand.Reader), sample.Scalar(rand.Reader), sample.Scalar(rand.Reader)}
	f := NewPolynomialFromRoots(roots...)
	require.Equal(t, len(roots), f.Degree())

	for _, r := range roots {
		assert.True(t, f.Evaluate(r).IsZero())
	}

	x := sample.Scalar(rand.Reader)
	expected := curve.NewScalarUInt64(1)
	for _, r := range roots {
		expected.Mul(r.Clone().Sub(x))
	}
	assert.True(t, expected.Equal(f.Evaluate(x)))

	assert.True(t, NewPolynomialFromRoots().Evaluate(x).Equal(curve.NewScalarUInt64(1)))
}

func TestPolynomial_AddScaled(t *testing.T) {
	f := NewPolynomial(rand.Reader, 1, nil)
	g := NewPolynomial(rand.Reader, 3, nil)
	a, b := sample.Scalar(rand.Reader), sample.Scalar(rand.Reader)

	x := sample.Scalar(rand.Reader)
	expected := f.Evaluate(x).Mul(a).Add(g.Evaluate(x).Mul(b))
	sum := NewPolynomial(rand.Reader, 0, nil).AddScaled(f, a).AddScaled(g, b)
	require.Equal(t, 3, sum.Degree())
	assert.True(t, expected.Equal(sum.Evaluate(x)))
}

func TestNewPolynomialExponent(t *testing.T) {
	pl := pool.NewPool(2)
	defer pl.TearDown()

	f := NewPolynomial(rand.Reader, 5, sample.Scalar(rand.Reader))
	base := sample.Scalar(rand.Reader).ActOnBase()
	for _, p := range []*pool.Pool{nil, pl} {
		F := NewPolynomialExponent(p, f, base)
		require.Equal(t, f.Degree(), F.Degree())
		assert.True(t, f.Constant().Act(base).Equal(F.Constant()))
		for i, c := range F.Coefficients() {
			assert.True(t, f.Coefficients()[i].Act(base).Equal(c))
		}
	}
}

func TestLagrange(t *testing.T) {
	N := 10
	domain := make([]*curve.Scalar, N)
	for i := range domain {
		domain[i] = curve.NewScalarUInt64(uint64(i + 1))
	}
	for _, d := range [][]*curve.Scalar{domain, domain[:N-1]} {
		sum := curve.NewScalar()
		for _, c := range Lagrange(d) {
			sum.Add(c)
		}
		assert.True(t, sum.Equal(curve.NewScalarUInt64(1)))
	}
}

func TestLagrange_Interpolate(t *testing.T) {
	secret := sample.Scalar(rand.Reader)
	poly := NewPolynomial(rand.Reader, 4, secret)
	domain := []*curve.Scalar{
		curve.NewScalarUInt64(2), curve.NewScalarUInt64(3), curve.NewScalarUInt64(5),
		curve.NewScalarUInt64(7), curve.NewScalarUInt64(11),
	}
	result := curve.NewScalar()
	for i, c := range Lagrange(domain) {
		result.Add(c.Mul(poly.Evaluate(domain[i])))
	}
	assert.True(t, result.Equal(secret))
}
