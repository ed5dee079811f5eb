package authority

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/taurusgroup/allosaur/pkg/accumulator"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

type authorityMarshal struct {
	SecretKey   *accumulator.SecretKey
	Accumulator *accumulator.Accumulator
	Members     []*curve.Scalar
	Epoch       uint64
	History     []cbor.RawMessage
}

// MarshalBinary returns a snapshot of the full state, secret key included.
//
// The snapshot does not contain the Config's runtime dependencies, so it must be
// restored into an Authority created with New, using the same Params.
func (a *Authority) MarshalBinary() ([]byte, error) {
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	history := make([]cbor.RawMessage, 0, len(a.history))
	for _, d := range a.history {
		data, err := d.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("authority.Marshal: epoch %d: %w", d.Epoch, err)
		}
		history = append(history, data)
	}
	return cbor.Marshal(&authorityMarshal{
		SecretKey:   a.sk,
		Accumulator: a.acc,
		Members:     a.members.Elements(),
		Epoch:       a.epoch,
		History:     history,
	})
}

// UnmarshalBinary replaces the state of a with a snapshot.
//
// The snapshot is checked for consistency: the accumulator must be the one of
// its member set, and the history must end at its epoch.
func (a *Authority) UnmarshalBinary(data []byte) error {
	var am authorityMarshal
	if err := cbor.Unmarshal(data, &am); err != nil {
		return fmt.Errorf("authority.Unmarshal: %v: %w", err, curve.ErrDecode)
	}
	if am.SecretKey == nil || am.Accumulator == nil {
		return fmt.Errorf("authority.Unmarshal: missing field: %w", curve.ErrDecode)
	}

	members := accumulator.NewMemberSet()
	for _, y := range am.Members {
		if y == nil || !members.Add(y) {
			return errors.New("authority.Unmarshal: invalid member set")
		}
	}
	expected, err := accumulator.Construct(am.SecretKey, am.Members)
	if err != nil {
		return fmt.Errorf("authority.Unmarshal: %w", err)
	}
	if !expected.Equal(am.Accumulator) {
		return errors.New("authority.Unmarshal: accumulator does not match the member set")
	}

	if uint64(len(am.History)) > am.Epoch {
		return fmt.Errorf("authority.Unmarshal: %d deltas for epoch %d", len(am.History), am.Epoch)
	}
	first := am.Epoch - uint64(len(am.History))
	history := make([]*accumulator.Delta, len(am.History))
	for i, raw := range am.History {
		d := new(accumulator.Delta)
		if err = d.UnmarshalBinary(raw); err != nil {
			return fmt.Errorf("authority.Unmarshal: %w", err)
		}
		if d.Epoch != first+uint64(i) {
			return fmt.Errorf("authority.Unmarshal: delta %d has epoch %d: %w", i, d.Epoch, accumulator.ErrDeltaOrder)
		}
		history[i] = d
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.sk = am.SecretKey
	a.pk = am.SecretKey.PublicKeys(a.params)
	a.acc = am.Accumulator
	a.members = members
	a.epoch = am.Epoch
	a.history = history
	if a.historyLimit > 0 && len(a.history) > a.historyLimit {
		a.history = a.history[len(a.history)-a.historyLimit:]
	}
	a.metrics.epoch.Set(float64(a.epoch))
	return nil
}

// Clone returns an identical replica of a, sharing its logger and pool.
// Its metrics are not registered.
func (a *Authority) Clone(name string) (*Authority, error) {
	data, err := a.MarshalBinary()
	if err != nil {
		return nil, err
	}
	a.mtx.RLock()
	cfg := Config{
		Name:         name,
		Params:       a.params,
		SecretKey:    a.sk,
		HistoryLimit: a.historyLimit,
		Logger:       a.log,
		Pool:         a.pool,
	}
	a.mtx.RUnlock()

	c, err := New(cfg)
	if err != nil {
		return nil, fmt.Errorf("authority.Clone: %w", err)
	}
	if err = c.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("authority.Clone: %w", err)
	}
	return c, nil
}
