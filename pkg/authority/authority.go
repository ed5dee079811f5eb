// Package authority implements the accumulator manager: it holds the secret key,
// the current accumulator and member set, and the history of deltas that lets
// holders bring their witnesses up to date.
package authority

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/taurusgroup/allosaur/pkg/accumulator"
	"github.com/taurusgroup/allosaur/pkg/pool"
)

var (
	// ErrEpochForgotten is returned when a request reaches before the retained history.
	ErrEpochForgotten = errors.New("authority: epoch is no longer in the history")
	// ErrEpochInFuture is returned when a request starts after the current epoch.
	ErrEpochInFuture = errors.New("authority: epoch is in the future")
)

// Config holds what is needed to create an Authority. Only Params is required.
type Config struct {
	// Name identifies the authority in logs and metrics.
	Name string
	// Params are the public generators, shared with holders and verifiers.
	Params *accumulator.Params
	// SecretKey is sampled from Rand if nil.
	SecretKey *accumulator.SecretKey
	// Rand defaults to crypto/rand.Reader.
	Rand io.Reader
	// HistoryLimit is the number of deltas kept. 0 keeps all of them.
	HistoryLimit int
	// Logger defaults to a logrus logger writing to stderr at Info level.
	Logger logrus.FieldLogger
	// Registerer receives the authority's metrics when set.
	Registerer prometheus.Registerer
	// Pool is used for bulk witness issuance, nil runs on the calling goroutine.
	Pool *pool.Pool
}

// Authority manages one accumulator.
//
// Every successful Add or Delete moves the accumulator to the next epoch and
// records the corresponding delta. Failed mutations leave the state untouched.
// All methods are safe for concurrent use.
type Authority struct {
	mtx sync.RWMutex

	name    string
	params  *accumulator.Params
	sk      *accumulator.SecretKey
	pk      *accumulator.PublicKeys
	acc     *accumulator.Accumulator
	members *accumulator.MemberSet
	epoch   uint64
	// history[i] is the delta of epoch (epoch - len(history) + i)
	history      []*accumulator.Delta
	historyLimit int

	log     logrus.FieldLogger
	metrics *metrics
	pool    *pool.Pool
}

// New creates an Authority at epoch 0, whose accumulator is the empty set.
func New(cfg Config) (*Authority, error) {
	if cfg.Params == nil {
		return nil, errors.New("authority.New: missing params")
	}
	if cfg.HistoryLimit < 0 {
		return nil, fmt.Errorf("authority.New: invalid history limit %d", cfg.HistoryLimit)
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}
	if cfg.SecretKey == nil {
		cfg.SecretKey = accumulator.NewSecretKey(cfg.Rand)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	m, err := newMetrics(cfg.Name, cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("authority.New: %w", err)
	}

	a := &Authority{
		name:         cfg.Name,
		params:       cfg.Params,
		sk:           cfg.SecretKey,
		pk:           cfg.SecretKey.PublicKeys(cfg.Params),
		acc:          accumulator.Empty(),
		members:      accumulator.NewMemberSet(),
		historyLimit: cfg.HistoryLimit,
		log:          cfg.Logger.WithField("authority", cfg.Name),
		metrics:      m,
		pool:         cfg.Pool,
	}
	a.log.Info("created")
	return a, nil
}

// Add accumulates y and returns its witness, valid at the new epoch.
//
// The witness of a freshly inserted identifier is the accumulator before the insertion.
func (a *Authority) Add(y *accumulator.Element) (*accumulator.MembershipWitness, error) {
	w, _, err := a.Admit(y)
	return w, err
}

// Admit is Add, also returning the epoch at which the witness is valid.
func (a *Authority) Admit(y *accumulator.Element) (w *accumulator.MembershipWitness, epoch uint64, err error) {
	defer a.metrics.observe(opAdd, time.Now(), &err)
	a.mtx.Lock()
	defer a.mtx.Unlock()

	if a.members.Contains(y) {
		a.log.WithField("epoch", a.epoch).Warn("add: already a member")
		return nil, 0, fmt.Errorf("authority.Add: %w", accumulator.ErrAlreadyMember)
	}
	next, err := a.acc.Add(a.sk, y)
	if err != nil {
		a.log.WithField("epoch", a.epoch).WithError(err).Warn("add failed")
		return nil, 0, fmt.Errorf("authority.Add: %w", err)
	}
	w = &accumulator.MembershipWitness{C: a.acc.V.Clone()}
	a.commit(accumulator.NewAdditionDelta(a.epoch, y, a.acc), next)
	a.members.Add(y)
	a.log.WithFields(logrus.Fields{"op": opAdd, "epoch": a.epoch}).Debug("member added")
	return w, a.epoch, nil
}

// Delete removes y and returns the new accumulator.
//
// It fails with accumulator.ErrNotMember if y is not currently accumulated.
func (a *Authority) Delete(y *accumulator.Element) (acc *accumulator.Accumulator, err error) {
	defer a.metrics.observe(opDelete, time.Now(), &err)
	a.mtx.Lock()
	defer a.mtx.Unlock()

	next, err := a.acc.Delete(a.sk, a.members, y)
	if err != nil {
		a.log.WithField("epoch", a.epoch).WithError(err).Warn("delete failed")
		return nil, fmt.Errorf("authority.Delete: %w", err)
	}
	a.commit(accumulator.NewDeletionDelta(a.epoch, y, next), next)
	a.members.Remove(y)
	a.log.WithFields(logrus.Fields{"op": opDelete, "epoch": a.epoch}).Debug("member deleted")
	return next.Clone(), nil
}

// commit records delta and moves to the next epoch. a.mtx must be held.
func (a *Authority) commit(delta *accumulator.Delta, next *accumulator.Accumulator) {
	a.history = append(a.history, delta)
	if a.historyLimit > 0 && len(a.history) > a.historyLimit {
		drop := len(a.history) - a.historyLimit
		a.history = append([]*accumulator.Delta(nil), a.history[drop:]...)
	}
	a.acc = next
	a.epoch++
	a.metrics.epoch.Set(float64(a.epoch))
}

// firstEpoch is the earliest epoch an update can start from. a.mtx must be held.
func (a *Authority) firstEpoch() uint64 {
	return a.epoch - uint64(len(a.history))
}

// window returns the deltas of epochs [from, epoch). a.mtx must be held.
func (a *Authority) window(from uint64) ([]*accumulator.Delta, error) {
	if from > a.epoch {
		return nil, fmt.Errorf("requested %d, current %d: %w", from, a.epoch, ErrEpochInFuture)
	}
	if first := a.firstEpoch(); from < first {
		return nil, fmt.Errorf("requested %d, oldest %d: %w", from, first, ErrEpochForgotten)
	}
	return a.history[from-a.firstEpoch():], nil
}

// Deltas returns the public deltas of epochs [from, epoch), in order.
func (a *Authority) Deltas(from uint64) ([]*accumulator.Delta, error) {
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	deltas, err := a.window(from)
	if err != nil {
		return nil, fmt.Errorf("authority.Deltas: %w", err)
	}
	return append([]*accumulator.Delta(nil), deltas...), nil
}

// Witness issues a fresh witness for a current member.
func (a *Authority) Witness(y *accumulator.Element) (w *accumulator.MembershipWitness, err error) {
	defer a.metrics.observe(opWitness, time.Now(), &err)
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	w, err = accumulator.NewMembershipWitness(a.sk, a.acc, a.members, y)
	if err != nil {
		return nil, fmt.Errorf("authority.Witness: %w", err)
	}
	return w, nil
}

// Witnesses issues witnesses for several members at once, using the pool.
// It fails if any of them is not a member.
func (a *Authority) Witnesses(ys []*accumulator.Element) (ws []*accumulator.MembershipWitness, err error) {
	defer a.metrics.observe(opWitness, time.Now(), &err)
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	for _, y := range ys {
		if !a.members.Contains(y) {
			return nil, fmt.Errorf("authority.Witnesses: %w", accumulator.ErrNotMember)
		}
	}
	type result struct {
		w   *accumulator.MembershipWitness
		err error
	}
	results := pool.Parallelize(a.pool, len(ys), func(i int) result {
		w, err := accumulator.NewMembershipWitness(a.sk, a.acc, a.members, ys[i])
		return result{w, err}
	})
	ws = make([]*accumulator.MembershipWitness, len(ys))
	for i, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("authority.Witnesses: %w", r.err)
		}
		ws[i] = r.w
	}
	return ws, nil
}

// Name returns the name given in the Config.
func (a *Authority) Name() string {
	return a.name
}

// Epoch returns the current epoch.
func (a *Authority) Epoch() uint64 {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return a.epoch
}

// Accumulator returns a copy of the current accumulator.
func (a *Authority) Accumulator() *accumulator.Accumulator {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return a.acc.Clone()
}

// PublicKeys returns the authority's public keys.
func (a *Authority) PublicKeys() *accumulator.PublicKeys {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return a.pk
}

// Params returns the public generators.
func (a *Authority) Params() *accumulator.Params {
	return a.params
}

// Members returns the number of accumulated identifiers.
func (a *Authority) Members() int {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return a.members.Len()
}
