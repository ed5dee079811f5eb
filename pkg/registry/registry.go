// Package registry maps opaque handles to long lived instances, such as
// authorities, for hosts that cannot hold Go pointers.
//
// The registry is owned by the host application: instances are created and
// destroyed explicitly, and each one is used by a single caller at a time.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrUnknownHandle is returned for handles that were never issued or were destroyed.
var ErrUnknownHandle = errors.New("registry: unknown handle")

// Handle identifies an instance in a Registry. Handles are never reused.
type Handle uint64

type entry[T any] struct {
	mtx       sync.Mutex
	value     T
	destroyed bool
}

// Registry holds instances of T behind handles.
type Registry[T any] struct {
	mtx     sync.Mutex
	next    Handle
	entries map[Handle]*entry[T]

	log logrus.FieldLogger
}

// New returns an empty Registry. A nil logger discards logs.
func New[T any](log logrus.FieldLogger) *Registry[T] {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Registry[T]{
		next:    1,
		entries: make(map[Handle]*entry[T]),
		log:     log,
	}
}

// Create stores the result of create, unless it fails.
func (r *Registry[T]) Create(create func() (T, error)) (Handle, error) {
	value, err := create()
	if err != nil {
		return 0, fmt.Errorf("registry.Create: %w", err)
	}
	return r.Insert(value), nil
}

// Insert stores value and returns its handle.
func (r *Registry[T]) Insert(value T) Handle {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	h := r.next
	r.next++
	r.entries[h] = &entry[T]{value: value}
	r.log.WithField("handle", h).Debug("registered")
	return h
}

func (r *Registry[T]) get(h Handle) (*entry[T], error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	e, ok := r.entries[h]
	if !ok {
		return nil, fmt.Errorf("handle %d: %w", h, ErrUnknownHandle)
	}
	return e, nil
}

// With calls f with exclusive access to the instance behind h.
func (r *Registry[T]) With(h Handle, f func(T) error) error {
	e, err := r.get(h)
	if err != nil {
		return fmt.Errorf("registry.With: %w", err)
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if e.destroyed {
		return fmt.Errorf("registry.With: handle %d: %w", h, ErrUnknownHandle)
	}
	return f(e.value)
}

// Destroy removes h, waiting for a concurrent With to return.
func (r *Registry[T]) Destroy(h Handle) error {
	r.mtx.Lock()
	e, ok := r.entries[h]
	delete(r.entries, h)
	r.mtx.Unlock()
	if !ok {
		return fmt.Errorf("registry.Destroy: handle %d: %w", h, ErrUnknownHandle)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.destroyed = true
	var zero T
	e.value = zero
	r.log.WithField("handle", h).Debug("destroyed")
	return nil
}

// Len returns the number of live instances.
func (r *Registry[T]) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.entries)
}
