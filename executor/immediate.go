package executor

import (
	"time"

	"github.com/gowirek/deferred/deferred"
)

// Immediate runs every submission on its own goroutine: no pooling, no
// bound on concurrency. It recovers from a panicking handler so a single
// bad handler cannot take down the process.
type Immediate struct {
	qos deferred.QoS
}

// NewImmediate returns an Immediate executor reporting qos from QoS().
func NewImmediate(qos deferred.QoS) *Immediate {
	return &Immediate{qos: qos}
}

func (e *Immediate) Submit(f func()) {
	go runRecovered(f)
}

func (e *Immediate) SubmitAfter(deadline time.Time, f func()) {
	d := time.Until(deadline)
	if d <= 0 {
		e.Submit(f)
		return
	}
	time.AfterFunc(d, func() { runRecovered(f) })
}

func (e *Immediate) SubmitQoS(_ deferred.QoS, f func()) {
	e.Submit(f)
}

func (e *Immediate) QoS() deferred.QoS { return e.qos }

func runRecovered(f func()) {
	defer func() { recover() }()
	f()
}

var _ deferred.Executor = (*Immediate)(nil)
