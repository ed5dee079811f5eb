package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taurusgroup/allosaur/pkg/accumulator"
	"github.com/taurusgroup/allosaur/pkg/authority"
)

func TestRegistry_Lifecycle(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	r := New[*authority.Authority](logger)

	h, err := r.Create(func() (*authority.Authority, error) {
		return authority.New(authority.Config{Params: accumulator.DefaultParams(), Logger: logger})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, Handle(1), hook.LastEntry().Data["handle"])

	var epoch uint64
	err = r.With(h, func(a *authority.Authority) error {
		_, err := a.Add(accumulator.HashElement([]byte("member")))
		epoch = a.Epoch()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), epoch)

	failure := errors.New("callback failure")
	assert.Equal(t, failure, r.With(h, func(*authority.Authority) error { return failure }))

	require.NoError(t, r.Destroy(h))
	assert.Equal(t, 0, r.Len())
	assert.True(t, errors.Is(r.Destroy(h), ErrUnknownHandle))
	assert.True(t, errors.Is(r.With(h, func(*authority.Authority) error { return nil }), ErrUnknownHandle))

	_, err = r.Create(func() (*authority.Authority, error) {
		return authority.New(authority.Config{})
	})
	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Exclusive(t *testing.T) {
	r := New[*int](nil)
	counter := 0
	h := r.Insert(&counter)
	h2 := r.Insert(new(int))
	assert.NotEqual(t, h, h2)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.With(h, func(c *int) error {
				*c++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
