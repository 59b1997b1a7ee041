package executor

import "sync"

// tokenPool recycles opaque concurrency tokens between Get and Put. It is
// kept as an unexported detail since a Pool executor only needs tokens to
// bound concurrency, never to carry typed results.
type tokenPool interface {
	Get() any
	Put(any)
}

// fixedToken is the only kind of value a fixedPool or dynamicPool ever
// hands out; its identity is irrelevant; only its presence in, or absence
// from, the pool matters.
type fixedToken struct{}

// fixedPool bounds concurrency to a fixed capacity: it is a buffered
// channel pre-loaded with capacity tokens, so Get blocks once every token
// is checked out, waiting for some other goroutine's Put, and that
// blocking is the whole mechanism by which concurrency gets bounded. This
// must actually block — a pool that only recycles tokens without ever
// making Get wait (as a plain free-list with an overflow buffer would)
// bounds nothing.
type fixedPool struct {
	tokens chan any
}

func newFixedPool(capacity uint) *fixedPool {
	p := &fixedPool{tokens: make(chan any, capacity)}
	for i := uint(0); i < capacity; i++ {
		p.tokens <- fixedToken{}
	}
	return p
}

func (p *fixedPool) Get() any {
	return <-p.tokens
}

func (p *fixedPool) Put(el any) {
	p.tokens <- el
}

// dynamicPool is an unbounded, sync.Pool-backed token source.
type dynamicPool struct {
	p sync.Pool
}

func newDynamicPool() *dynamicPool {
	return &dynamicPool{p: sync.Pool{New: func() any { return fixedToken{} }}}
}

func (d *dynamicPool) Get() any   { return d.p.Get() }
func (d *dynamicPool) Put(el any) { d.p.Put(el) }
