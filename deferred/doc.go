// Package deferred provides a composable, lock-free future/promise type
// called Deferred, representing a computation whose result becomes
// available at some future time.
//
// A Deferred moves through the states Waiting, Executing and Resolved.
// Observers registered before resolution are queued on a lock-free,
// intrusive waiter stack and dispatched, in registration order, exactly
// once after resolution; observers registered after resolution are
// dispatched immediately. No handler ever runs synchronously on the
// caller of Observe or the producer that resolves the Deferred — every
// handler is submitted through an Executor.
//
// Construction
//
//   - ResolvedValue / Failed build an already-resolved Deferred from a
//     literal value or error.
//   - NewWithProducer starts a producer closure on an Executor, handing it
//     a Resolver it is expected to eventually call.
//
// Composition
//
// Type-preserving combinators (MapErr, Recover, Validate, Delay, Timeout,
// EnqueuingOn, EnqueuingAt) are methods on *Deferred[V]. Combinators that
// change the value type (Map, TryMap, FlatMap, TryFlatMap, Apply) are
// package-level generic functions, since Go methods cannot introduce
// their own type parameters.
//
// Aggregation over finite sequences of Deferreds is provided by Combine,
// Reduce, FirstValue, FirstResolved and InParallel. Retrying is provided
// by Retrying.
package deferred
