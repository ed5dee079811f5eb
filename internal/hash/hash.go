package hash

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"github.com/taurusgroup/allosaur/internal/params"
)

// DigestLengthBytes is the output size of Sum, enough for a uniform scalar reduction.
const DigestLengthBytes = params.BytesScalarWide

// Hash is a domain separated transcript over blake3, used for proof challenges
// and checkpoint messages.
//
// Every value is written along with its domain and length, so that two
// different sequences of values never produce the same transcript.
type Hash struct {
	h *blake3.Hasher
}

// New returns a transcript bound to domain.
func New(domain string) *Hash {
	hash := &Hash{h: blake3.New()}
	_ = hash.writeLabeled("Hash", []byte(domain))
	return hash
}

func (hash *Hash) writeLabeled(label string, data []byte) error {
	return writeWithDomain(hash.h, BytesWithDomain{TheDomain: label, Bytes: data})
}

// Digest finalizes the transcript into a stream of output bytes.
//
// Further writes are still possible and do not affect a returned reader.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns the first DigestLengthBytes of Digest.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny appends values to the transcript. Supported types are []byte,
// string, uint64 and WriterToWithDomain, anything else panics.
//
// Raw bytes, strings and integers get a domain of their own, a
// WriterToWithDomain is written under the domain it reports.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var err error
		switch t := d.(type) {
		case []byte:
			err = hash.writeLabeled("[]byte", t)
		case string:
			err = hash.writeLabeled("string", []byte(t))
		case uint64:
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], t)
			err = hash.writeLabeled("uint64", buf[:])
		case WriterToWithDomain:
			err = writeWithDomain(hash.h, t)
		default:
			panic(fmt.Sprintf("hash.WriteAny: unsupported type %T", d))
		}
		if err != nil {
			return fmt.Errorf("hash.WriteAny: %T: %w", d, err)
		}
	}
	return nil
}
