package deferred

import (
	"fmt"
	"weak"
)

// newCombinatorDeferred builds the Deferred/Resolver pair every combinator
// returns: a fresh Deferred on the chosen executor, already in the
// Executing state because work (observing the source) is starting
// immediately.
func newCombinatorDeferred[V2 any](exec Executor) (*Deferred[V2], Resolver[V2]) {
	d := newDeferred[V2](exec)
	d.state.Store(stateExecuting)
	return d, Resolver[V2]{ref: weak.Make(d), qos: exec.QoS()}
}

func recoverToError(errp *error) {
	if p := recover(); p != nil {
		*errp = fmt.Errorf("deferred: recovered panic: %v", p)
	}
}

// Map transforms a Deferred's success value with f, leaving a failure
// untouched and the error channel unchanged.
func Map[V, V2 any](src *Deferred[V], f func(V) V2) *Deferred[V2] {
	d, r := newCombinatorDeferred[V2](src.exec)
	src.Observe(func(res Result[V]) {
		r.Resolve(MapResult(res, f))
	})
	r.RetainSource(src)
	return d
}

// TryMap is Map for a transform that may fail: if f returns a non-nil
// error, or panics, the downstream Deferred fails with that error.
func TryMap[V, V2 any](src *Deferred[V], f func(V) (V2, error)) *Deferred[V2] {
	d, r := newCombinatorDeferred[V2](src.exec)
	src.Observe(func(res Result[V]) {
		v, ok := res.Value()
		if !ok {
			r.Resolve(Failure[V2](res.Error()))
			return
		}
		out, err := callTryMap(f, v)
		if err != nil {
			r.Resolve(Failure[V2](err))
			return
		}
		r.Resolve(Success(out))
	})
	r.RetainSource(src)
	return d
}

func callTryMap[V, V2 any](f func(V) (V2, error), v V) (out V2, err error) {
	defer recoverToError(&err)
	return f(v)
}

// MapErr transforms only the failure payload of a Deferred, leaving a
// success value untouched.
func (d *Deferred[V]) MapErr(f func(error) error) *Deferred[V] {
	out, r := newCombinatorDeferred[V](d.exec)
	d.Observe(func(res Result[V]) {
		r.Resolve(MapResultErr(res, f))
	})
	r.RetainSource(d)
	return out
}

// FlatMap chains a function producing a further Deferred onto a success
// value: on source failure the error is forwarded unchanged (FlatMap does
// not change the error channel); on source success f(v) is called to
// obtain an inner Deferred whose resolution is forwarded to the result.
func FlatMap[V, V2 any](src *Deferred[V], f func(V) *Deferred[V2]) *Deferred[V2] {
	d, r := newCombinatorDeferred[V2](src.exec)
	src.Observe(func(res Result[V]) {
		v, ok := res.Value()
		if !ok {
			r.Resolve(Failure[V2](res.Error()))
			return
		}
		inner := f(v)
		r.RetainSource(inner)
		inner.Observe(func(res2 Result[V2]) {
			r.Resolve(res2)
		})
	})
	r.RetainSource(src)
	return d
}

// TryFlatMap is FlatMap for an f that may fail before it can even produce
// an inner Deferred.
func TryFlatMap[V, V2 any](src *Deferred[V], f func(V) (*Deferred[V2], error)) *Deferred[V2] {
	d, r := newCombinatorDeferred[V2](src.exec)
	src.Observe(func(res Result[V]) {
		v, ok := res.Value()
		if !ok {
			r.Resolve(Failure[V2](res.Error()))
			return
		}
		inner, err := callTryFlatMap(f, v)
		if err != nil {
			r.Resolve(Failure[V2](err))
			return
		}
		r.RetainSource(inner)
		inner.Observe(func(res2 Result[V2]) {
			r.Resolve(res2)
		})
	})
	r.RetainSource(src)
	return d
}

func callTryFlatMap[V, V2 any](f func(V) (*Deferred[V2], error), v V) (out *Deferred[V2], err error) {
	defer recoverToError(&err)
	return f(v)
}

// Recover invokes f on a source failure to obtain a replacement Deferred,
// forwarding its resolution; a source success is forwarded unchanged.
func (d *Deferred[V]) Recover(f func(error) *Deferred[V]) *Deferred[V] {
	out, r := newCombinatorDeferred[V](d.exec)
	d.Observe(func(res Result[V]) {
		if v, ok := res.Value(); ok {
			r.Resolve(Success(v))
			return
		}
		inner := f(res.Error())
		r.RetainSource(inner)
		inner.Observe(func(res2 Result[V]) {
			r.Resolve(res2)
		})
	})
	r.RetainSource(d)
	return out
}

// Apply waits for both src and transform, applying transform's function
// value to src's value once both have succeeded. A failure from src
// short-circuits without waiting for transform to resolve.
func Apply[V, V2 any](src *Deferred[V], transform *Deferred[func(V) V2]) *Deferred[V2] {
	d, r := newCombinatorDeferred[V2](src.exec)
	src.Observe(func(res Result[V]) {
		v, ok := res.Value()
		if !ok {
			r.Resolve(Failure[V2](res.Error()))
			return
		}
		transform.Observe(func(tRes Result[func(V) V2]) {
			f, ok := tRes.Value()
			if !ok {
				r.Resolve(Failure[V2](tRes.Error()))
				return
			}
			r.Resolve(Success(f(v)))
		})
	})
	r.RetainSource([2]any{src, transform})
	return d
}

// Validate is TryMap with a boolean predicate: it fails with an
// InvalidError carrying message when predicate(v) is false.
func (d *Deferred[V]) Validate(predicate func(V) bool, message string) *Deferred[V] {
	return TryMap(d, func(v V) (V, error) {
		if !predicate(v) {
			return v, InvalidError{Message: message}
		}
		return v, nil
	})
}

// EnqueuingOn returns a Deferred that resolves identically to d but
// dispatches its own observers on exec instead of d's executor.
func (d *Deferred[V]) EnqueuingOn(exec Executor) *Deferred[V] {
	out, r := newCombinatorDeferred[V](exec)
	d.Observe(func(res Result[V]) {
		r.Resolve(res)
	})
	r.RetainSource(d)
	return out
}

// EnqueuingAt is EnqueuingOn's QoS-only counterpart: it keeps d's
// executor but changes the nominal QoS new observers are dispatched at.
func (d *Deferred[V]) EnqueuingAt(qos QoS) *Deferred[V] {
	out, r := newCombinatorDeferred[V](qosOverride{Executor: d.exec, qos: qos})
	d.Observe(func(res Result[V]) {
		r.Resolve(res)
	})
	r.RetainSource(d)
	return out
}

// qosOverride wraps an Executor, replacing only its nominal QoS.
type qosOverride struct {
	Executor
	qos QoS
}

func (q qosOverride) QoS() QoS { return q.qos }
