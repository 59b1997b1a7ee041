package deferred

import "time"

// QoS is an advisory priority class carried on executor submissions. The
// core never interprets a QoS value itself; it only forwards the value a
// Deferred (or a waiter's override) carries to the Executor responsible
// for running the corresponding handler.
type QoS int

const (
	// QoSDefault is used when neither the Deferred nor the observer
	// requested a specific QoS.
	QoSDefault QoS = iota
	QoSBackground
	QoSUtility
	QoSUserInitiated
	QoSUserInteractive
)

// Executor is the host concurrency substrate the core requires: something
// that can run a closure asynchronously, optionally after a delay and
// optionally at a given QoS hint. This package never spawns goroutines or
// schedules timers on its own behalf; every handler runs through an
// Executor value supplied by the caller. See package executor for
// concrete implementations.
type Executor interface {
	// Submit runs f asynchronously, as soon as the executor can.
	Submit(f func())
	// SubmitAfter runs f asynchronously, not before deadline.
	SubmitAfter(deadline time.Time, f func())
	// SubmitQoS runs f asynchronously at the given QoS hint, overriding
	// the executor's own nominal QoS for this one submission.
	SubmitQoS(qos QoS, f func())
	// QoS returns the executor's nominal QoS class.
	QoS() QoS
}
