package sample

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalar(t *testing.T) {
	a, b := Scalar(rand.Reader), Scalar(rand.Reader)
	assert.False(t, a.Equal(b))
}

func TestScalar_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0xAB}, 64)
	a := Scalar(bytes.NewReader(seed))
	b := Scalar(bytes.NewReader(seed))
	assert.True(t, a.Equal(b))
}

func TestScalarUnit(t *testing.T) {
	zeros := bytes.NewReader(make([]byte, 64*3))
	require.Panics(t, func() { ScalarUnit(zeros) })
	assert.False(t, ScalarUnit(rand.Reader).IsZero())
}

var resultScalar interface{}

func BenchmarkScalar(b *testing.B) {
	for i := 0; i < b.N; i++ {
		resultScalar = Scalar(rand.Reader)
	}
}
