package deferred

import "time"

// Delay returns a Deferred that resolves with the same Result as d, but
// not before dur has elapsed. A failure propagates immediately, bypassing
// the delay.
func (d *Deferred[V]) Delay(dur time.Duration) *Deferred[V] {
	return d.DelayUntil(time.Now().Add(dur))
}

// DelayUntil is Delay with an absolute deadline. A deadline already in the
// past makes this equivalent to the identity transform.
func (d *Deferred[V]) DelayUntil(deadline time.Time) *Deferred[V] {
	out, r := newCombinatorDeferred[V](d.exec)
	d.Observe(func(res Result[V]) {
		if res.IsFailure() || !time.Now().Before(deadline) {
			r.Resolve(res)
			return
		}
		out.exec.SubmitAfter(deadline, func() {
			r.Resolve(res)
		})
	})
	r.RetainSource(d)
	return out
}

// Timeout returns a Deferred that resolves identically to d if d resolves
// before dur elapses, or with a TimedOutError carrying reason otherwise —
// in which case d is also canceled.
func (d *Deferred[V]) Timeout(dur time.Duration, reason string) *Deferred[V] {
	out, r := newCombinatorDeferred[V](d.exec)
	d.Observe(func(res Result[V]) {
		r.Resolve(res)
	})
	out.exec.SubmitAfter(time.Now().Add(dur), func() {
		if r.Resolve(Failure[V](TimedOutError{Reason: reason})) {
			// We won the race against d's own resolution: the deadline
			// elapsed first, so the source is no longer wanted.
			d.Cancel(reason)
		}
	})
	r.RetainSource(d)
	return out
}
