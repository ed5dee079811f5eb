package authority

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/taurusgroup/allosaur/pkg/accumulator"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
)

// Kind tells whether an epoch added or deleted an identifier.
type Kind uint8

const (
	KindAddition Kind = iota + 1
	KindDeletion
)

func (k Kind) String() string {
	switch k {
	case KindAddition:
		return "addition"
	case KindDeletion:
		return "deletion"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// DeltaShare is one authority's answer for one epoch to a query q, which is a
// share of the holder's identifier y.
//
// Scalar = e - q, where e is the identifier added or deleted at Epoch, is a
// share of e - y. Point is the Ω of the epoch. Reconstructing both across a
// threshold of authorities yields the accumulator.UpdateStep of that epoch at y,
// while each authority only ever sees its share of y.
type DeltaShare struct {
	Epoch  uint64
	Kind   Kind
	Scalar *curve.Scalar
	Point  *curve.G1
}

// Update returns one DeltaShare per epoch in [from, epoch), in epoch order.
//
// It fails with ErrEpochInFuture if from is after the current epoch, and with
// ErrEpochForgotten if the history no longer covers from.
func (a *Authority) Update(from uint64, query *curve.Scalar) (shares []DeltaShare, err error) {
	defer a.metrics.observe(opUpdate, time.Now(), &err)
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	deltas, err := a.window(from)
	if err != nil {
		a.log.WithFields(logrus.Fields{"op": opUpdate, "from": from, "epoch": a.epoch}).WithError(err).Warn("update refused")
		return nil, fmt.Errorf("authority.Update: %w", err)
	}
	shares = make([]DeltaShare, len(deltas))
	for i, d := range deltas {
		share, err := shareOf(d, query)
		if err != nil {
			return nil, fmt.Errorf("authority.Update: epoch %d: %w", d.Epoch, err)
		}
		shares[i] = share
	}
	a.log.WithFields(logrus.Fields{"op": opUpdate, "from": from, "epoch": a.epoch}).Debug("update served")
	return shares, nil
}

// shareOf evaluates a single-identifier delta at the query share.
func shareOf(d *accumulator.Delta, query *curve.Scalar) (DeltaShare, error) {
	var (
		kind Kind
		e    *curve.Scalar
	)
	switch {
	case len(d.Additions) == 1 && len(d.Deletions) == 0:
		kind, e = KindAddition, d.Additions[0]
	case len(d.Deletions) == 1 && len(d.Additions) == 0:
		kind, e = KindDeletion, d.Deletions[0]
	default:
		return DeltaShare{}, errors.New("delta changes more than one identifier")
	}
	if d.Omega.Degree() != 0 {
		return DeltaShare{}, errors.New("delta Ω is not constant")
	}
	return DeltaShare{
		Epoch:  d.Epoch,
		Kind:   kind,
		Scalar: e.Clone().Sub(query),
		Point:  d.Omega.Constant().Clone(),
	}, nil
}

// Step converts a reconstructed scalar s = e - y into the step folded by the
// witness engine: an addition multiplies by s, a deletion divides by it.
func (k Kind) Step(s *curve.Scalar, omega *curve.G1) (accumulator.UpdateStep, error) {
	one := curve.NewScalarUInt64(1)
	switch k {
	case KindAddition:
		return accumulator.UpdateStep{Numerator: s, Denominator: one, Omega: omega}, nil
	case KindDeletion:
		if s.IsZero() {
			return accumulator.UpdateStep{}, accumulator.ErrRevoked
		}
		return accumulator.UpdateStep{Numerator: one, Denominator: s, Omega: omega}, nil
	default:
		return accumulator.UpdateStep{}, fmt.Errorf("authority.Kind.Step: unknown kind %v", k)
	}
}
