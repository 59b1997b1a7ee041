package deferred

import (
	"sync/atomic"
	"weak"
)

// internal state-word values. Resolving is a transient value: it is
// visible only for the brief interval between the CAS that wins the
// right to resolve and the store that finally publishes Resolved. State
// collapses Resolving to Executing for external observers.
const (
	stateWaiting uint32 = iota
	stateExecuting
	stateResolving
	stateResolved
)

// State is the externally observable lifecycle stage of a Deferred.
type State int

const (
	Waiting State = iota
	Executing
	Resolved
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Executing:
		return "executing"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Deferred is a handle to a future single-assignment result: the resolved
// value or error is computed once, becomes visible to every past and
// future observer exactly once, and never changes afterward.
//
// The zero Deferred is not usable; obtain one from ResolvedValue, Failed,
// NewWithProducer or a combinator.
type Deferred[V any] struct {
	state   atomic.Uint32
	waiters atomic.Pointer[waiterNode[V]]
	closed  *waiterNode[V]
	result  Result[V]
	exec    Executor

	// sourceRetain holds a strong reference to an upstream Deferred (or
	// other source object) that must outlive this one, as required by
	// combinators. It is released once this Deferred resolves,
	// so it never forms a retain cycle. Most combinators touch this only
	// once, at construction; flat_map-shaped combinators touch it a second
	// time, when the inner Deferred becomes known, which is why this is an
	// atomic slot (a boxed pointer, since atomic.Value cannot tolerate
	// storing two different concrete types across those two touches)
	// rather than a plain field guarded only by construction-then-resolution
	// ordering.
	sourceRetain atomic.Pointer[retainBox]
}

// retainBox exists only so sourceRetain can be an atomic.Pointer: a plain
// atomic.Value rejects a second Store of a different concrete type, which
// flat_map relies on (it retains the source first, then the inner Deferred).
type retainBox struct{ v any }

func newDeferred[V any](exec Executor) *Deferred[V] {
	d := &Deferred[V]{exec: exec}
	d.closed = newClosedMarker[V]()
	return d
}

// ResolvedValue returns an already-resolved Deferred carrying a successful
// value. (Named ResolvedValue, not Resolved, because Resolved already
// names a [State] value in this package.)
func ResolvedValue[V any](exec Executor, v V) *Deferred[V] {
	return newResolved(exec, Success(v))
}

// Failed returns an already-resolved Deferred carrying a failure error.
func Failed[V any](exec Executor, err error) *Deferred[V] {
	return newResolved(exec, Failure[V](err))
}

func newResolved[V any](exec Executor, r Result[V]) *Deferred[V] {
	d := newDeferred[V](exec)
	d.result = r
	d.state.Store(stateResolved)
	d.waiters.Store(d.closed)
	return d
}

// NewWithProducer creates an unresolved Deferred, already in the Executing
// state, and submits producer(resolver) to exec. producer is expected to
// eventually call a Resolve* method on the Resolver it is handed; if it
// never does, the Deferred stays unresolved until it is no longer referenced, at which point the normal
// garbage-collector-driven "last observer dropped" path (see
// [Resolver.NeedsResolution]) is the only way the producer finds out.
func NewWithProducer[V any](exec Executor, producer func(Resolver[V])) *Deferred[V] {
	d := newDeferred[V](exec)
	resolver := Resolver[V]{ref: weak.Make(d), qos: exec.QoS()}
	d.state.Store(stateExecuting)
	exec.Submit(func() {
		producer(resolver)
	})
	return d
}

// State returns the Deferred's current lifecycle stage.
func (d *Deferred[V]) State() State {
	switch d.state.Load() {
	case stateWaiting:
		return Waiting
	case stateResolved:
		return Resolved
	default: // executing or resolving
		return Executing
	}
}

// Execute is a hint for producers that poll State: if the Deferred is
// still Waiting, this moves it to Executing. It has no effect once the
// Deferred is executing, resolving or resolved.
func (d *Deferred[V]) Execute() *Deferred[V] {
	d.state.CompareAndSwap(stateWaiting, stateExecuting)
	return d
}

// Peek returns the final Result and true if the Deferred has resolved, or
// the zero Result and false otherwise. It never blocks.
func (d *Deferred[V]) Peek() (Result[V], bool) {
	if d.waiters.Load() == d.closed {
		return d.result, true
	}
	return Result[V]{}, false
}

// Observe registers handler to be called, on this Deferred's executor,
// with the final Result. If the Deferred is already resolved, handler is
// submitted immediately; otherwise it is queued and submitted, in
// registration order along with every other queued observer, exactly once
// at resolution. Observe never calls handler synchronously.
func (d *Deferred[V]) Observe(handler func(Result[V])) {
	d.observeQoS(nil, handler)
}

// ObserveQoS is Observe with a per-observer QoS override for this one
// handler's dispatch.
func (d *Deferred[V]) ObserveQoS(qos QoS, handler func(Result[V])) {
	d.observeQoS(&qos, handler)
}

func (d *Deferred[V]) observeQoS(qos *QoS, handler func(Result[V])) {
	node := &waiterNode[V]{handler: handler, qos: qos}
	for {
		head := d.waiters.Load()
		if head == d.closed {
			d.dispatch(node)
			return
		}
		node.next = head
		if d.waiters.CompareAndSwap(head, node) {
			return
		}
	}
}

// OnValue registers a handler that runs only when the Deferred resolves
// successfully; it is silent on failure.
func (d *Deferred[V]) OnValue(handler func(V)) {
	d.Observe(func(r Result[V]) {
		if v, ok := r.Value(); ok {
			handler(v)
		}
	})
}

// OnError registers a handler that runs only when the Deferred resolves
// with a failure; it is silent on success.
func (d *Deferred[V]) OnError(handler func(error)) {
	d.Observe(func(r Result[V]) {
		if err := r.Error(); err != nil {
			handler(err)
		}
	})
}

func (d *Deferred[V]) dispatch(n *waiterNode[V]) {
	result := d.result
	qos := d.exec.QoS()
	if n.qos != nil {
		qos = *n.qos
	}
	handler := n.handler
	d.exec.SubmitQoS(qos, func() { handler(result) })
}

// resolve attempts the Waiting|Executing -> Resolving -> Resolved
// transition. It returns true iff this call performed the transition.
func (d *Deferred[V]) resolve(r Result[V]) bool {
	for {
		s := d.state.Load()
		if s == stateResolving || s == stateResolved {
			return false
		}
		if d.state.CompareAndSwap(s, stateResolving) {
			break
		}
	}

	// This write happens-before the swap below publishes CLOSED, and every
	// acquire-load of waiters that observes CLOSED is therefore guaranteed
	// to see this write, per Go's memory model for atomic values.
	d.result = r

	head := d.waiters.Swap(d.closed)
	d.state.Store(stateResolved)

	// The stack accumulates observers most-recently-registered-first;
	// reverse it so handlers fire in registration (FIFO) order.
	var fifo *waiterNode[V]
	for head != nil {
		next := head.next
		head.next = fifo
		fifo = head
		head = next
	}
	for fifo != nil {
		next := fifo.next
		fifo.next = nil
		d.dispatch(fifo)
		fifo = next
	}

	// Release the retained upstream, if any: this is the only place a
	// combinator's hold on its source is dropped, so cancellation can
	// propagate upstream once nothing else retains it.
	d.sourceRetain.Store(nil)
	return true
}

// Cancel resolves the Deferred with a CanceledError carrying reason. It
// returns true iff this call performed the resolution; it returns false if
// the Deferred was already resolved.
func (d *Deferred[V]) Cancel(reason string) bool {
	return d.resolve(Failure[V](CanceledError{Reason: reason}))
}

// Get blocks until the Deferred resolves and returns its Result.
//
// Do not call Get from a handler running on the same serial executor that
// is responsible for resolving this Deferred: that would deadlock, since
// the executor thread would be blocked waiting for itself to run the
// resolution. This is a caller responsibility, not something the core can
// detect.
func (d *Deferred[V]) Get() Result[V] {
	if r, ok := d.Peek(); ok {
		return r
	}
	done := make(chan Result[V], 1)
	d.Observe(func(r Result[V]) { done <- r })
	return <-done
}

// Value blocks until the Deferred resolves and returns the success value
// and true, or the zero value and false if it resolved with a failure.
func (d *Deferred[V]) Value() (V, bool) {
	return d.Get().Value()
}

// Err blocks until the Deferred resolves and returns the failure error, or
// nil if it resolved successfully.
func (d *Deferred[V]) Err() error {
	return d.Get().Error()
}
