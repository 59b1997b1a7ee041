// Package executor provides concrete implementations of
// github.com/gowirek/deferred/deferred.Executor: the "submit a closure to run
// later, optionally after a delay, optionally at a QoS hint" contract a
// Deferred needs from its host concurrency substrate.
//
// Immediate runs every submission on its own goroutine. Pool bounds (or
// dynamically sizes) concurrency using a worker-token pool, adapted to
// submit arbitrary closures rather than typed tasks with result/error
// channels, since that is all a Deferred ever needs from its executor.
package executor
