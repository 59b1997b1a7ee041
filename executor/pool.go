package executor

import (
	"sync"
	"time"

	"github.com/gowirek/deferred/deferred"
)

// Pool is an Executor backed by a single worker-token pool that reports
// one nominal QoS class; submissions are not separated by QoS. A single
// dispatcher goroutine reads submissions off an internal channel and runs
// each one on its own goroutine, bounded (for a fixed pool) by the
// availability of a worker token.
type Pool struct {
	cfg   config
	tasks chan func()
	pool  tokenPool

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// New creates a Pool executor. With no options it behaves as a dynamic
// pool: unbounded concurrency, a fresh goroutine per submission, with only
// the concurrency tokens recycled via sync.Pool. WithFixedWorkers bounds
// concurrency instead.
func New(opts ...Option) *Pool {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("executor: nil Option")
		}
		opt(&cfg)
	}

	var wp tokenPool
	if cfg.MaxWorkers > 0 {
		wp = newFixedPool(cfg.MaxWorkers)
	} else {
		wp = newDynamicPool()
	}

	p := &Pool{
		cfg:   cfg,
		tasks: make(chan func(), cfg.QueueCapacity),
		pool:  wp,
		done:  make(chan struct{}),
	}
	p.wg.Add(1)
	go p.dispatch()
	return p
}

// dispatch runs the dispatch loop and returns when Close is called.
func (p *Pool) dispatch() {
	defer p.wg.Done()
	var inflight sync.WaitGroup
	for {
		select {
		case <-p.done:
			inflight.Wait()
			return
		case f := <-p.tasks:
			tok := p.pool.Get()
			inflight.Add(1)
			go func(f func(), tok any) {
				defer inflight.Done()
				defer p.pool.Put(tok)
				runRecovered(f)
			}(f, tok)
		}
	}
}

// Submit enqueues f to run asynchronously.
func (p *Pool) Submit(f func()) {
	p.tasks <- f
}

// SubmitAfter enqueues f to run asynchronously, not before deadline.
func (p *Pool) SubmitAfter(deadline time.Time, f func()) {
	d := time.Until(deadline)
	if d <= 0 {
		p.Submit(f)
		return
	}
	time.AfterFunc(d, func() { p.Submit(f) })
}

// SubmitQoS enqueues f to run asynchronously. The Pool's workers are not
// partitioned by QoS; the hint is accepted for interface conformance and
// otherwise ignored, the same way a single shared goroutine pool has no
// way to honor a caller's QoS override without per-class queues.
func (p *Pool) SubmitQoS(_ deferred.QoS, f func()) {
	p.Submit(f)
}

// QoS returns the Pool's nominal QoS class.
func (p *Pool) QoS() deferred.QoS { return p.cfg.QoS }

// Close stops accepting new work from the dispatcher's perspective and
// waits for in-flight submissions to finish. Submitting after Close may
// block forever; callers must stop submitting before closing.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

var _ deferred.Executor = (*Pool)(nil)
