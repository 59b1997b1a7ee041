package deferred

// Retrying runs task() and, on failure, runs it again, up to n total
// attempts, resolving with the first success or the last failure. A call
// with n < 1 resolves immediately with InvalidError.
func Retrying[V any](exec Executor, n int, task func() *Deferred[V]) *Deferred[V] {
	if n < 1 {
		return Failed[V](exec, InvalidError{Message: "attempts must be ≥ 1"})
	}
	attempt := task()
	for i := 1; i < n; i++ {
		attempt = attempt.Recover(func(error) *Deferred[V] {
			return task()
		})
	}
	return attempt
}
