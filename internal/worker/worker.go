package worker

import (
	"context"
	"errors"
	"sync"
)

// Task is one unit of work run on a pool goroutine.
type Task func()

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("worker pool stopped")

// Pool bounds how many CPU-heavy tasks (password hashing) run at once.
type Pool interface {
	// Submit blocks until a worker accepts t or ctx is done.
	Submit(ctx context.Context, t Task) error
	Stop()
}

// NewPool creates a pool with n workers. n<=0 defaults to 1.
func NewPool(n int) Pool {
	if n <= 0 {
		n = 1
	}
	p := &pool{jobs: make(chan Task), done: make(chan struct{})}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.jobs:
					if job != nil {
						job()
					}
				case <-p.done:
					return
				}
			}
		}()
	}
	return p
}

type pool struct {
	jobs chan Task
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func (p *pool) Submit(ctx context.Context, t Task) error {
	select {
	case <-p.done:
		return ErrStopped
	default:
	}
	select {
	case p.jobs <- t:
		return nil
	case <-p.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop waits for running tasks to finish. Safe to call more than once.
func (p *pool) Stop() {
	p.once.Do(func() { close(p.done) })
	p.wg.Wait()
}
