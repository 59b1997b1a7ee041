package deferred

import "weak"

// Resolver is the producer-side write capability for one Deferred. It is
// the only way to resolve a Deferred from outside this package.
//
// A Resolver holds only a weak reference to its Deferred: a producer that
// checks [Resolver.NeedsResolution] can detect that every strong reference
// to the Deferred — and hence every consumer that could ever observe a
// resolution — has gone away, and bail out of its work instead of running
// to completion for nobody.
type Resolver[V any] struct {
	ref weak.Pointer[Deferred[V]]
	qos QoS
}

// Resolve resolves the underlying Deferred with r. It returns true iff
// this call performed the resolution: false means the Deferred was
// already resolved, or has been garbage collected because nothing holds a
// strong reference to it anymore.
func (res Resolver[V]) Resolve(r Result[V]) bool {
	d := res.ref.Value()
	if d == nil {
		return false
	}
	return d.resolve(r)
}

// ResolveValue resolves the underlying Deferred with a successful value.
func (res Resolver[V]) ResolveValue(v V) bool {
	return res.Resolve(Success(v))
}

// ResolveError resolves the underlying Deferred with a failure error.
func (res Resolver[V]) ResolveError(err error) bool {
	return res.Resolve(Failure[V](err))
}

// Cancel resolves the underlying Deferred with a CanceledError.
func (res Resolver[V]) Cancel(reason string) bool {
	return res.Resolve(Failure[V](CanceledError{Reason: reason}))
}

// NeedsResolution returns true iff the underlying Deferred is neither
// resolved nor garbage collected. A producer performing a long poll loop
// can check this periodically to notice that every consumer has lost
// interest and abandon the work early.
func (res Resolver[V]) NeedsResolution() bool {
	d := res.ref.Value()
	if d == nil {
		return false
	}
	return d.State() != Resolved
}

// QoS returns the QoS hint this resolver's Deferred was created with.
func (res Resolver[V]) QoS() QoS {
	return res.qos
}

// RetainSource stores a strong reference to x, keeping it alive until the
// underlying Deferred resolves, at which point the reference is released.
// Combinators use this to keep an upstream Deferred (or other source
// object) alive for as long as there might still be something waiting on
// this downstream Deferred. Calling RetainSource again before resolution
// replaces the previous retained value; flat_map-shaped combinators rely
// on this to retain the source first and then the inner Deferred once it
// becomes known.
func (res Resolver[V]) RetainSource(x any) {
	d := res.ref.Value()
	if d == nil {
		return
	}
	d.sourceRetain.Store(&retainBox{v: x})
	// A combinator may retain its source after the Deferred has already
	// resolved; resolve has then already cleared the slot, so clear it again.
	if d.State() == Resolved {
		d.sourceRetain.Store(nil)
	}
}
