package deferred

// waiterNode is one observer record on a Deferred's pending-notification
// list: a handler closure, an optional per-observer QoS override, and the
// intrusive "next" link of a lock-free Treiber stack.
//
// A node is allocated by observe, transferred into the list (or dispatched
// directly if the list was already closed), and then either drained by
// resolve or freed immediately — never both, and always by whichever
// goroutine actually claimed it, so there is no ABA hazard on reuse.
type waiterNode[V any] struct {
	handler func(Result[V])
	qos     *QoS
	next    *waiterNode[V]
}

// newClosedMarker returns a waiterNode value that is never enqueued and
// exists only so its address can serve as the CLOSED sentinel for one
// Deferred's waiter list: a pointer value distinguishable from nil and
// from any real waiterNode.
func newClosedMarker[V any]() *waiterNode[V] {
	return &waiterNode[V]{}
}
