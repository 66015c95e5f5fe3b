// Package parallel runs batches of independent jobs on a work-stealing
// goroutine pool.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines. Each worker has its own queue
// and steals from the other queues when its own is empty, which balances
// batches whose jobs differ widely in cost (shader builds, for example).
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool of the given size. Zero or negative means
// GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)
	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case job := <-own:
			job()
			continue
		default:
		}
		if job := p.steal(id); job != nil {
			job()
			continue
		}
		select {
		case <-p.done:
			drain(own)
			return
		case job := <-own:
			job()
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case job := <-q:
			job()
		default:
			return
		}
	}
}

// steal takes one job from another worker's queue, or returns nil.
func (p *Pool) steal(id int) func() {
	for i := 1; i < p.workers; i++ {
		select {
		case job := <-p.queues[(id+i)%p.workers]:
			return job
		default:
		}
	}
	return nil
}

// Run distributes jobs round-robin and waits until every started job has
// returned. Once ctx is done, jobs that have not started are dropped and
// Run returns ctx.Err(). A closed pool runs nothing. Run must not race
// with Close.
func (p *Pool) Run(ctx context.Context, jobs []func()) error {
	if len(jobs) == 0 || !p.running.Load() {
		return ctx.Err()
	}
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		wrapped := func() {
			defer wg.Done()
			if ctx.Err() == nil {
				job()
			}
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-ctx.Done():
			wg.Done()
		case <-p.done:
			wg.Done()
		}
	}
	wg.Wait()
	return ctx.Err()
}

// Close stops the workers after the queued jobs have run. It is safe to
// call more than once.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }
