package executor

import "github.com/gowirek/deferred/deferred"

// config holds Pool configuration: a private struct with its defaults
// centralized in one function, set only through functional Options.
type config struct {
	// MaxWorkers bounds concurrent submissions in flight. Zero (the
	// default) means a dynamically-sized pool: a fresh goroutine per
	// submission, with only the concurrency tokens recycled via sync.Pool.
	MaxWorkers uint

	// QueueCapacity sizes the buffered channel submissions wait on before
	// a dispatcher goroutine hands them to a worker token.
	QueueCapacity uint

	// QoS is the nominal QoS class this executor reports from QoS().
	QoS deferred.QoS
}

func defaultConfig() config {
	return config{
		MaxWorkers:    0,
		QueueCapacity: 1024,
		QoS:           deferred.QoSDefault,
	}
}
