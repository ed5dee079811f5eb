package authority

import (
	"github.com/taurusgroup/allosaur/internal/hash"
	"github.com/taurusgroup/allosaur/internal/types"
	"github.com/taurusgroup/allosaur/pkg/accumulator"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

// Checkpoint is an accumulator value signed by the authority for a given epoch,
// letting verifiers check they were handed the authentic accumulator.
type Checkpoint struct {
	Epoch       uint64
	Accumulator *accumulator.Accumulator
	Signature   *curve.G1
}

func checkpointMessage(epoch uint64, acc *accumulator.Accumulator) []byte {
	h := hash.New("Accumulator Checkpoint")
	_ = h.WriteAny(types.EpochWrapper(epoch), acc)
	return h.Sum()
}

// Checkpoint signs the current epoch and accumulator.
func (a *Authority) Checkpoint() *Checkpoint {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return &Checkpoint{
		Epoch:       a.epoch,
		Accumulator: a.acc.Clone(),
		Signature:   a.sk.Sign(checkpointMessage(a.epoch, a.acc)),
	}
}

// Verify checks the signature against the authority's SignKey.
func (c *Checkpoint) Verify(pp *accumulator.Params, pk *accumulator.PublicKeys) bool {
	if c == nil || c.Accumulator == nil || c.Accumulator.V == nil {
		return false
	}
	return pk.VerifySignature(pp, checkpointMessage(c.Epoch, c.Accumulator), c.Signature)
}
