package sample

import (
	"fmt"
	"io"

	"github.com/taurusgroup/allosaur/internal/params"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// Scalar returns a new *curve.Scalar by reading bytes from rand.
//
// params.BytesScalarWide bytes are reduced modulo r, which keeps the bias
// negligible.
func Scalar(rand io.Reader) *curve.Scalar {
	buf := make([]byte, params.BytesScalarWide)
	mustReadBits(rand, buf)
	return curve.ScalarFromWide(buf)
}

// ScalarUnit returns a new non-zero *curve.Scalar by reading bytes from rand.
func ScalarUnit(rand io.Reader) *curve.Scalar {
	for i := 0; i < maxIterations; i++ {
		s := Scalar(rand)
		if !s.IsZero() {
			return s
		}
	}
	panic(ErrMaxIterations)
}
