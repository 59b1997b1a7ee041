package deferred

import (
	"sync"
	"sync/atomic"
)

// Combine resolves with the collected values, in input order, once every
// input in ds has succeeded; it fails with the first (by completion time)
// failure encountered among ds and does not wait for the rest. An empty ds
// resolves immediately with an empty slice.
func Combine[V any](exec Executor, ds []*Deferred[V]) *Deferred[[]V] {
	if len(ds) == 0 {
		return ResolvedValue[[]V](exec, []V{})
	}
	d, r := newCombinatorDeferred[[]V](exec)
	values := make([]V, len(ds))
	var remaining atomic.Int64
	remaining.Store(int64(len(ds)))
	var failed atomic.Bool

	for i, src := range ds {
		i, src := i, src
		src.Observe(func(res Result[V]) {
			if failed.Load() {
				return
			}
			v, ok := res.Value()
			if !ok {
				if failed.CompareAndSwap(false, true) {
					r.Resolve(Failure[[]V](res.Error()))
				}
				return
			}
			values[i] = v
			if remaining.Add(-1) == 0 && !failed.Load() {
				r.Resolve(Success(append([]V(nil), values...)))
			}
		})
	}
	r.RetainSource(ds)
	return d
}

// Reduce left-folds f over xs in input order, starting from initial. Each
// input only contributes once every earlier one has resolved
// successfully, implemented as a chain of FlatMap/TryMap; the first
// failure — from f itself or from one of the inputs — terminates the
// chain and propagates.
func Reduce[U, V any](exec Executor, xs []*Deferred[V], initial U, f func(U, V) (U, error)) *Deferred[U] {
	acc := ResolvedValue[U](exec, initial)
	for _, x := range xs {
		x := x
		acc = FlatMap(acc, func(u U) *Deferred[U] {
			return TryMap(x, func(v V) (U, error) {
				return f(u, v)
			})
		})
	}
	return acc
}

// FirstValue resolves with the first successful value among xs. If every
// input fails, it resolves with the last-observed failure. An empty xs
// resolves with CanceledError{"empty"}. If cancelOthers, every input is
// canceled once FirstValue itself resolves.
func FirstValue[V any](exec Executor, xs []*Deferred[V], cancelOthers bool) *Deferred[V] {
	if len(xs) == 0 {
		return Failed[V](exec, CanceledError{Reason: "empty"})
	}
	d, r := newCombinatorDeferred[V](exec)
	var remaining atomic.Int64
	remaining.Store(int64(len(xs)))
	var mu sync.Mutex
	var lastErr error

	cancelRest := func() {
		if !cancelOthers {
			return
		}
		for _, x := range xs {
			x.Cancel("first_value resolved")
		}
	}

	for _, x := range xs {
		x.Observe(func(res Result[V]) {
			if v, ok := res.Value(); ok {
				if r.Resolve(Success(v)) {
					cancelRest()
				}
				return
			}
			mu.Lock()
			lastErr = res.Error()
			mu.Unlock()
			if remaining.Add(-1) == 0 {
				mu.Lock()
				err := lastErr
				mu.Unlock()
				if r.Resolve(Failure[V](err)) {
					cancelRest()
				}
			}
		})
	}
	r.RetainSource(xs)
	return d
}

// FirstResolved resolves with whichever input in xs resolves first,
// success or failure. An empty xs resolves with CanceledError{"empty"}.
// If cancelOthers, every input is canceled once FirstResolved itself
// resolves.
func FirstResolved[V any](exec Executor, xs []*Deferred[V], cancelOthers bool) *Deferred[V] {
	if len(xs) == 0 {
		return Failed[V](exec, CanceledError{Reason: "empty"})
	}
	d, r := newCombinatorDeferred[V](exec)
	for _, x := range xs {
		x.Observe(func(res Result[V]) {
			if r.Resolve(res) && cancelOthers {
				for _, other := range xs {
					other.Cancel("first_resolved resolved")
				}
			}
		})
	}
	r.RetainSource(xs)
	return d
}

// InParallel produces n Deferreds, each running the infallible f(i) on
// exec.
func InParallel[V any](exec Executor, n int, f func(int) V) []*Deferred[V] {
	out := make([]*Deferred[V], n)
	for i := range out {
		i := i
		out[i] = NewWithProducer[V](exec, func(r Resolver[V]) {
			r.ResolveValue(f(i))
		})
	}
	return out
}
