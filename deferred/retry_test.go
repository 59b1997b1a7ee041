package deferred_test

import (
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gowirek/deferred/deferred"
)

func TestRetrying_SucceedsOnThirdAttempt(t *testing.T) {
	exec := testExecutor()
	var attempts int32
	task := func() *deferred.Deferred[string] {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return deferred.Failed[string](exec, deferred.InvalidError{Message: "not yet"})
		}
		return deferred.ResolvedValue(exec, "ok")
	}

	out := deferred.Retrying(exec, 3, task)
	res := out.Get()
	if diff := cmp.Diff("ok", res.TryGet()); diff != "" {
		t.Error("wrong retry result\n" + diff)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d; want 3", attempts)
	}
}

func TestRetrying_ExhaustsAttemptsAndReturnsLastFailure(t *testing.T) {
	exec := testExecutor()
	var attempts int32
	task := func() *deferred.Deferred[string] {
		atomic.AddInt32(&attempts, 1)
		return deferred.Failed[string](exec, deferred.InvalidError{Message: "always fails"})
	}

	out := deferred.Retrying(exec, 3, task)
	res := out.Get()
	if !res.IsFailure() {
		t.Fatalf("expected failure after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d; want 3", attempts)
	}
}

func TestRetrying_RejectsNonPositiveAttempts(t *testing.T) {
	exec := testExecutor()
	out := deferred.Retrying(exec, 0, func() *deferred.Deferred[int] {
		t.Fatalf("task should not run when n < 1")
		return nil
	})
	res := out.Get()
	if _, ok := res.Error().(deferred.InvalidError); !ok {
		t.Fatalf("wrong error type %T; want InvalidError", res.Error())
	}
}
