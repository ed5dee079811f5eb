package pool

import (
	"runtime"
	"sync"
)

// command is used to trigger our latent workers to do something.
type command struct {
	// This is the index we evaluate our function at
	i  int
	f  func(int)
	wg *sync.WaitGroup
}

// worker starts up a new worker, listening to commands.
func worker(commands <-chan command) {
	for c := range commands {
		c.f(c.i)
		c.wg.Done()
	}
}

// Pool represents a pool of workers, used for parallelizing functions.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current thread instead.
//
// By creating a pool, you avoid the overhead of spinning up goroutines for
// each new operation.
type Pool struct {
	// The common channel used to send commands to the workers.
	//
	// This effectively makes a work stealing pool.
	commands chan command
	// This holds the number of workers we've created
	workerCount int
	once        sync.Once
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}

	p := &Pool{
		commands:    make(chan command),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go worker(p.commands)
	}
	return p
}

// TearDown cleanly tears down a pool, closing channels, etc.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	p.once.Do(func() { close(p.commands) })
}

// Workers returns the number of workers, 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workerCount
}

// Parallelize calls f count times, passing in indices from 0..count-1.
//
// The result will be a slice containing [f(0), f(1), ..., f(count - 1)].
func Parallelize[T any](p *Pool, count int, f func(int) T) []T {
	results := make([]T, count)
	if p == nil {
		for i := range results {
			results[i] = f(i)
		}
		return results
	}

	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		p.commands <- command{
			i:  i,
			f:  func(i int) { results[i] = f(i) },
			wg: &wg,
		}
	}
	wg.Wait()
	return results
}
