// Package wire packs pairs of byte payloads into a single buffer, for
// boundaries that can only return one.
//
// The layout is uint32le(len(a)) ‖ uint32le(len(b)) ‖ a ‖ b.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const prefixSize = 8

var (
	// ErrShortBuffer is returned when a buffer is shorter than its length prefixes announce.
	ErrShortBuffer = errors.New("wire: short buffer")
	// ErrTrailingData is returned when a buffer is longer than its length prefixes announce.
	ErrTrailingData = errors.New("wire: trailing data")
)

// PackDual returns the concatenation of a and b, preceded by their lengths.
func PackDual(a, b []byte) ([]byte, error) {
	if uint64(len(a)) > math.MaxUint32 || uint64(len(b)) > math.MaxUint32 {
		return nil, errors.New("wire.PackDual: payload too large")
	}
	out := make([]byte, prefixSize, prefixSize+len(a)+len(b))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(a)))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(b)))
	out = append(out, a...)
	return append(out, b...), nil
}

// UnpackDual splits a buffer produced by PackDual. The returned slices alias data.
func UnpackDual(data []byte) (a, b []byte, err error) {
	if len(data) < prefixSize {
		return nil, nil, fmt.Errorf("wire.UnpackDual: %d bytes: %w", len(data), ErrShortBuffer)
	}
	lenA := uint64(binary.LittleEndian.Uint32(data[0:4]))
	lenB := uint64(binary.LittleEndian.Uint32(data[4:8]))
	rest := data[prefixSize:]
	switch total := lenA + lenB; {
	case uint64(len(rest)) < total:
		return nil, nil, fmt.Errorf("wire.UnpackDual: expected %d bytes, got %d: %w", total, len(rest), ErrShortBuffer)
	case uint64(len(rest)) > total:
		return nil, nil, fmt.Errorf("wire.UnpackDual: expected %d bytes, got %d: %w", total, len(rest), ErrTrailingData)
	}
	return rest[:lenA:lenA], rest[lenA:], nil
}
