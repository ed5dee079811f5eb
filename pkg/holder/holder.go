// Package holder implements the member side: it keeps an identifier and its
// witness, brings the witness up to date, and proves membership.
package holder

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/taurusgroup/allosaur/pkg/accumulator"
	"github.com/taurusgroup/allosaur/pkg/authority"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
	"github.com/taurusgroup/allosaur/pkg/threshold"
	zkmembership "github.com/taurusgroup/allosaur/pkg/zk/membership"
)

var (
	// ErrNoWitness is returned by operations that need a witness before CreateWitness.
	ErrNoWitness = errors.New("holder: no witness")
	// ErrEpochMismatch is returned when authorities answer for different epochs.
	ErrEpochMismatch = errors.New("holder: authorities disagree on epochs")
)

// Directory is the authority a holder joins.
type Directory interface {
	Params() *accumulator.Params
	PublicKeys() *accumulator.PublicKeys
	Admit(y *accumulator.Element) (*accumulator.MembershipWitness, uint64, error)
}

// Updater answers update queries, see authority.(*Authority).Update.
type Updater interface {
	Update(from uint64, query *curve.Scalar) ([]authority.DeltaShare, error)
}

// DeltaSource serves public deltas, see authority.(*Authority).Deltas.
type DeltaSource interface {
	Deltas(from uint64) ([]*accumulator.Delta, error)
}

// Holder is a member of the accumulated set.
//
// A Holder is not safe for concurrent use.
type Holder struct {
	rand      io.Reader
	directory Directory
	params    *accumulator.Params
	keys      *accumulator.PublicKeys

	y       *accumulator.Element
	witness *accumulator.MembershipWitness
	// epoch at which witness is valid
	epoch uint64

	Log logrus.FieldLogger
}

// New returns a Holder with a fresh random identifier, for the given directory.
func New(rand io.Reader, directory Directory) *Holder {
	return &Holder{
		rand:      rand,
		directory: directory,
		params:    directory.Params(),
		keys:      directory.PublicKeys(),
		y:         accumulator.NewElement(rand),
		Log:       logrus.StandardLogger(),
	}
}

// ID returns the holder's identifier.
func (h *Holder) ID() *accumulator.Element {
	return h.y
}

// Epoch returns the epoch at which the current witness is valid.
func (h *Holder) Epoch() uint64 {
	return h.epoch
}

// Witness returns the current witness, or nil before CreateWitness.
func (h *Holder) Witness() *accumulator.MembershipWitness {
	return h.witness
}

// CreateWitness asks the directory to admit the holder's identifier.
func (h *Holder) CreateWitness() error {
	w, epoch, err := h.directory.Admit(h.y)
	if err != nil {
		return fmt.Errorf("holder.CreateWitness: %w", err)
	}
	h.witness, h.epoch = w, epoch
	return nil
}

// CheckWitness verifies the current witness against acc.
func (h *Holder) CheckWitness(acc *accumulator.Accumulator) bool {
	if h.witness == nil {
		return false
	}
	return h.witness.Verify(h.params, h.keys, acc, h.y)
}

// UpdateFromDeltas folds the public deltas since the holder's epoch.
//
// The source learns which epoch the holder is at, but nothing about its identifier.
func (h *Holder) UpdateFromDeltas(source DeltaSource) error {
	if h.witness == nil {
		return ErrNoWitness
	}
	deltas, err := source.Deltas(h.epoch)
	if err != nil {
		return fmt.Errorf("holder.UpdateFromDeltas: %w", err)
	}
	w, err := h.witness.MultiBatchUpdate(h.y, deltas)
	if err != nil {
		return fmt.Errorf("holder.UpdateFromDeltas: %w", err)
	}
	h.witness = w
	h.epoch += uint64(len(deltas))
	return nil
}

// Update brings the witness up to date by querying authorities that replicate
// the same accumulator, of which fewer than t are assumed to collude.
//
// The identifier is split with a degree t-1 polynomial and authority i only
// receives the share at x = i+1. The answers are reconstructed into the update
// steps of each epoch. If more than t authorities are given, t+1 answers are
// required and cross-checked, so a single wrong answer makes the update fail
// instead of corrupting the witness. With t = 1 the share is the identifier itself.
//
// Authorities are queried in parallel and Update returns once every query has
// answered. A done ctx fails the update and skips queries not yet sent.
// On failure the holder is unchanged.
func (h *Holder) Update(ctx context.Context, authorities []Updater, t int) error {
	if h.witness == nil {
		return ErrNoWitness
	}
	n := len(authorities)
	shares, err := threshold.Share(h.rand, t, n, h.y)
	if err != nil {
		return fmt.Errorf("holder.Update: %w", err)
	}

	from := h.epoch
	answers := make([][]authority.DeltaShare, n)
	failures := make([]error, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := range authorities {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			answers[i], failures[i] = authorities[i].Update(from, shares[i].Y)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("holder.Update: %w", err)
	}

	need := t
	if n > t {
		need = t + 1
	}
	var (
		xs   []*curve.Scalar
		used [][]authority.DeltaShare
	)
	epochs := -1
	for i := range authorities {
		if failures[i] != nil {
			h.Log.WithField("authority", i).WithError(failures[i]).Warn("update query failed")
			continue
		}
		if len(used) == need {
			break
		}
		xs = append(xs, shares[i].X)
		used = append(used, answers[i])
		if epochs < 0 || len(answers[i]) < epochs {
			epochs = len(answers[i])
		}
	}
	if len(used) < need {
		return fmt.Errorf("holder.Update: %d answers, need %d: %w", len(used), need, threshold.ErrInsufficientShares)
	}

	c, err := threshold.NewCoefficients(t, xs)
	if err != nil {
		return fmt.Errorf("holder.Update: %w", err)
	}
	steps, err := rebuildSteps(c, xs, used, epochs, from)
	if err != nil {
		h.Log.WithError(err).Warn("update reconstruction failed")
		return fmt.Errorf("holder.Update: %w", err)
	}
	w, err := h.witness.ApplySteps(steps)
	if err != nil {
		return fmt.Errorf("holder.Update: %w", err)
	}
	h.witness = w
	h.epoch = from + uint64(epochs)
	h.Log.WithFields(logrus.Fields{"epoch": h.epoch, "authorities": len(used)}).Debug("witness updated")
	return nil
}

// rebuildSteps reconstructs the update step of each of the first epochs answers.
func rebuildSteps(c *threshold.Coefficients, xs []*curve.Scalar, answers [][]authority.DeltaShare, epochs int, from uint64) ([]accumulator.UpdateStep, error) {
	steps := make([]accumulator.UpdateStep, epochs)
	scalars := make([]threshold.ScalarShare, len(answers))
	points := make([]threshold.PointShare, len(answers))
	for k := range steps {
		kind := answers[0][k].Kind
		for j, a := range answers {
			share := a[k]
			if share.Epoch != from+uint64(k) || share.Kind != kind {
				return nil, fmt.Errorf("epoch %d: %w", from+uint64(k), ErrEpochMismatch)
			}
			if share.Scalar == nil || share.Point == nil {
				return nil, fmt.Errorf("epoch %d: %w", from+uint64(k), threshold.ErrInvalidShare)
			}
			scalars[j] = threshold.ScalarShare{X: xs[j], Y: share.Scalar}
			points[j] = threshold.PointShare{X: xs[j], Y: share.Point}
		}
		s, err := c.RebuildScalar(scalars)
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", from+uint64(k), err)
		}
		omega, err := c.RebuildPoint(points)
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", from+uint64(k), err)
		}
		step, err := kind.Step(s, omega)
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", from+uint64(k), err)
		}
		steps[k] = step
	}
	return steps, nil
}

// MakeMembershipProof proves that the holder's witness is valid for acc, bound to challenge.
func (h *Holder) MakeMembershipProof(acc *accumulator.Accumulator, challenge []byte) (*zkmembership.Proof, error) {
	if h.witness == nil {
		return nil, ErrNoWitness
	}
	public := zkmembership.Public{Params: h.params, Keys: h.keys, Accumulator: acc}
	private := zkmembership.Private{Witness: h.witness, Y: h.y}
	return zkmembership.NewProof(h.rand, challenge, public, private), nil
}

// CheckMembershipProof is the verifier side of MakeMembershipProof.
func CheckMembershipProof(proof *zkmembership.Proof, pp *accumulator.Params, keys *accumulator.PublicKeys, acc *accumulator.Accumulator, challenge []byte) bool {
	return proof.Verify(challenge, zkmembership.Public{Params: pp, Keys: keys, Accumulator: acc})
}
