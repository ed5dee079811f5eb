package types

import (
	"encoding/binary"
	"io"
)

// EpochWrapper wraps an epoch counter and enables writing with domain.
type EpochWrapper uint64

// WriteTo implements io.WriterTo interface.
func (e EpochWrapper) WriteTo(w io.Writer) (int64, error) {
	intBuffer := make([]byte, 8)
	binary.BigEndian.PutUint64(intBuffer, uint64(e))
	n, err := w.Write(intBuffer)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (EpochWrapper) Domain() string { return "Epoch" }
