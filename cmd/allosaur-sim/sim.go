package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/taurusgroup/allosaur/internal/params"
	"github.com/taurusgroup/allosaur/pkg/accumulator"
	"github.com/taurusgroup/allosaur/pkg/authority"
	"github.com/taurusgroup/allosaur/pkg/holder"
	"github.com/taurusgroup/allosaur/pkg/pool"
	"github.com/taurusgroup/allosaur/pkg/wire"
	zkmembership "github.com/taurusgroup/allosaur/pkg/zk/membership"
)

func NewGroup(config *Config, reg prometheus.Registerer, log logrus.FieldLogger, pl *pool.Pool) (*authority.Group, error) {
	a, err := authority.New(authority.Config{
		Name:         "authority",
		Params:       accumulator.DefaultParams(),
		HistoryLimit: config.HistoryLimit,
		Logger:       log,
		Registerer:   reg,
		Pool:         pl,
	})
	if err != nil {
		return nil, err
	}
	return authority.NewGroup(a, config.Authorities)
}

func Join(g *authority.Group, log logrus.FieldLogger) (*holder.Holder, error) {
	h := holder.New(rand.Reader, g)
	if err := h.CreateWitness(); err != nil {
		return nil, err
	}
	h.Log = log.WithField("holder", h.ID().String()[:8])
	h.Log.WithField("epoch", h.Epoch()).Info("joined")
	return h, nil
}

func Updaters(g *authority.Group) []holder.Updater {
	replicas := g.Replicas()
	us := make([]holder.Updater, len(replicas))
	for i, r := range replicas {
		us[i] = r
	}
	return us
}

// UpdateAll brings every holder up to date in parallel.
func UpdateAll(ctx context.Context, g *authority.Group, holders []*holder.Holder, threshold int) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, h := range holders {
		h := h
		eg.Go(func() error {
			if err := h.Update(ctx, Updaters(g), threshold); err != nil {
				return err
			}
			if !h.CheckWitness(g.Accumulator()) {
				return errors.New("updated witness does not verify")
			}
			return nil
		})
	}
	return eg.Wait()
}

// Prove runs one presentation: the holder answers a fresh challenge with a
// proof packed together with the accumulator it was made for, and the verifier
// checks it against the authority's signed checkpoint.
func Prove(h *holder.Holder, cp *authority.Checkpoint, pp *accumulator.Params, keys *accumulator.PublicKeys) error {
	if !cp.Verify(pp, keys) {
		return errors.New("invalid checkpoint signature")
	}

	challenge := make([]byte, params.BytesChallenge)
	if _, err := rand.Read(challenge); err != nil {
		return err
	}
	proof, err := h.MakeMembershipProof(cp.Accumulator, challenge)
	if err != nil {
		return err
	}
	proofData, err := proof.MarshalBinary()
	if err != nil {
		return err
	}
	accData, err := cp.Accumulator.MarshalBinary()
	if err != nil {
		return err
	}
	presentation, err := wire.PackDual(proofData, accData)
	if err != nil {
		return err
	}

	proofData, accData, err = wire.UnpackDual(presentation)
	if err != nil {
		return err
	}
	var (
		received zkmembership.Proof
		acc      accumulator.Accumulator
	)
	if err = received.UnmarshalBinary(proofData); err != nil {
		return err
	}
	if err = acc.UnmarshalBinary(accData); err != nil {
		return err
	}
	if !acc.Equal(cp.Accumulator) {
		return fmt.Errorf("proof made for another accumulator than epoch %d", cp.Epoch)
	}
	if !holder.CheckMembershipProof(&received, pp, keys, &acc, challenge) {
		return errors.New("membership proof rejected")
	}
	return nil
}

// Round revokes the oldest holder, admits a new one, updates the others and
// has every remaining holder prove membership.
func Round(ctx context.Context, config *Config, g *authority.Group, holders []*holder.Holder, log logrus.FieldLogger) ([]*holder.Holder, error) {
	revoked := holders[0]
	if _, err := g.Delete(revoked.ID()); err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	newcomer, err := Join(g, log)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, config.timeout)
	defer cancel()
	live := holders[1:]
	if err = UpdateAll(ctx, g, live, config.Threshold); err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	live = append(live, newcomer)

	err = revoked.Update(ctx, Updaters(g), config.Threshold)
	if !errors.Is(err, accumulator.ErrRevoked) {
		return nil, fmt.Errorf("revoked holder: expected %v, got %v", accumulator.ErrRevoked, err)
	}
	revoked.Log.Info("revoked")

	cp := g.Replicas()[0].Checkpoint()
	for _, h := range live {
		if err = Prove(h, cp, g.Params(), g.PublicKeys()); err != nil {
			return nil, fmt.Errorf("prove: %w", err)
		}
	}
	log.WithFields(logrus.Fields{"epoch": cp.Epoch, "holders": len(live)}).Info("round complete")
	return live, nil
}

// Audit compares the holders' witnesses with freshly issued ones.
func Audit(g *authority.Group, holders []*holder.Holder) error {
	ids := make([]*accumulator.Element, len(holders))
	for i, h := range holders {
		ids[i] = h.ID()
	}
	fresh, err := g.Replicas()[0].Witnesses(ids)
	if err != nil {
		return err
	}
	for i, h := range holders {
		if !fresh[i].Equal(h.Witness()) {
			return fmt.Errorf("holder %d: witness differs from a fresh one", i)
		}
	}
	return nil
}

func Simulate(ctx context.Context, config *Config, g *authority.Group, log logrus.FieldLogger) error {
	holders := make([]*holder.Holder, 0, config.Holders)
	for i := 0; i < config.Holders; i++ {
		h, err := Join(g, log)
		if err != nil {
			return fmt.Errorf("join: %w", err)
		}
		holders = append(holders, h)
	}
	if err := UpdateAll(ctx, g, holders, config.Threshold); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	var err error
	for round := 0; round < config.Rounds; round++ {
		if holders, err = Round(ctx, config, g, holders, log.WithField("round", round)); err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
	}
	return Audit(g, holders)
}
