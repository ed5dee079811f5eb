package authority

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/allosaur/pkg/accumulator"
)

// Group is a set of identical replicas of one authority, mutated together,
// and queried independently by holders during threshold updates.
//
// Since replicas hold the same state, a mutation fails on the first replica or
// on none of them.
type Group struct {
	replicas []*Authority
}

// NewGroup clones primary into n replicas, primary being the first of them.
func NewGroup(primary *Authority, n int) (*Group, error) {
	if n < 1 {
		return nil, fmt.Errorf("authority.NewGroup: invalid size %d", n)
	}
	g := &Group{replicas: []*Authority{primary}}
	for i := 1; i < n; i++ {
		r, err := primary.Clone(fmt.Sprintf("%s-%d", primary.Name(), i))
		if err != nil {
			return nil, fmt.Errorf("authority.NewGroup: %w", err)
		}
		g.replicas = append(g.replicas, r)
	}
	return g, nil
}

// Replicas returns the members of the group.
func (g *Group) Replicas() []*Authority {
	return g.replicas
}

// Admit adds y to every replica.
func (g *Group) Admit(y *accumulator.Element) (*accumulator.MembershipWitness, uint64, error) {
	var (
		first *accumulator.MembershipWitness
		epoch uint64
	)
	for i, r := range g.replicas {
		w, e, err := r.Admit(y)
		if err != nil {
			return nil, 0, fmt.Errorf("authority.Group: replica %d: %w", i, err)
		}
		if i == 0 {
			first, epoch = w, e
		} else if e != epoch || !w.Equal(first) {
			return nil, 0, errors.New("authority.Group: replicas diverged")
		}
	}
	return first, epoch, nil
}

// Delete removes y from every replica.
func (g *Group) Delete(y *accumulator.Element) (*accumulator.Accumulator, error) {
	var first *accumulator.Accumulator
	for i, r := range g.replicas {
		acc, err := r.Delete(y)
		if err != nil {
			return nil, fmt.Errorf("authority.Group: replica %d: %w", i, err)
		}
		if i == 0 {
			first = acc
		} else if !acc.Equal(first) {
			return nil, errors.New("authority.Group: replicas diverged")
		}
	}
	return first, nil
}

// Params returns the shared generators.
func (g *Group) Params() *accumulator.Params {
	return g.replicas[0].Params()
}

// PublicKeys returns the shared public keys.
func (g *Group) PublicKeys() *accumulator.PublicKeys {
	return g.replicas[0].PublicKeys()
}

// Accumulator returns the current accumulator of the group.
func (g *Group) Accumulator() *accumulator.Accumulator {
	return g.replicas[0].Accumulator()
}

// Epoch returns the current epoch of the group.
func (g *Group) Epoch() uint64 {
	return g.replicas[0].Epoch()
}
