package executor

import "github.com/gowirek/deferred/deferred"

// Option configures a Pool. Use New(opts...) to construct one.
type Option func(*config)

// WithFixedWorkers selects a fixed-size worker pool with the given
// capacity (must be > 0): at most n submissions run concurrently.
func WithFixedWorkers(n uint) Option {
	return func(c *config) {
		if n == 0 {
			panic("executor: WithFixedWorkers requires n > 0")
		}
		c.MaxWorkers = n
	}
}

// WithDynamicWorkers selects a dynamically-sized worker pool (the default
// if no worker-count option is given).
func WithDynamicWorkers() Option {
	return func(c *config) { c.MaxWorkers = 0 }
}

// WithQueueCapacity sets the size of the internal submission buffer.
func WithQueueCapacity(n uint) Option {
	return func(c *config) { c.QueueCapacity = n }
}

// WithQoS sets the nominal QoS class the Pool reports from QoS().
func WithQoS(qos deferred.QoS) Option {
	return func(c *config) { c.QoS = qos }
}
