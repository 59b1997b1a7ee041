package deferred_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gowirek/deferred/deferred"
	"github.com/gowirek/deferred/executor"
)

func testExecutor() deferred.Executor {
	return executor.NewImmediate(deferred.QoSDefault)
}

func TestResolvedValue_Peek(t *testing.T) {
	d := deferred.ResolvedValue(testExecutor(), 42)
	res, ok := d.Peek()
	if !ok {
		t.Fatalf("expected already-resolved Deferred to peek non-empty")
	}
	if diff := cmp.Diff(42, res.TryGet()); diff != "" {
		t.Error("wrong value\n" + diff)
	}
	if d.State() != deferred.Resolved {
		t.Errorf("state = %s; want resolved", d.State())
	}
}

func TestMap_Simple(t *testing.T) {
	d := deferred.ResolvedValue(testExecutor(), 42)
	out := deferred.Map(d, func(v int) int { return v + 1 })
	res := out.Get()
	if res.IsFailure() {
		t.Fatalf("unexpected failure: %s", res.Error())
	}
	if diff := cmp.Diff(43, res.TryGet()); diff != "" {
		t.Error("wrong value\n" + diff)
	}
}

func TestObserve_PreAndPostResolutionOrdering(t *testing.T) {
	exec := testExecutor()
	r, d := newRequest[float64](exec)

	var mu sync.Mutex
	var preOrder []int
	var wg sync.WaitGroup
	wg.Add(5)

	for i := 0; i < 3; i++ {
		i := i
		d.Observe(func(res deferred.Result[float64]) {
			mu.Lock()
			preOrder = append(preOrder, i)
			mu.Unlock()
			wg.Done()
		})
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		r.ResolveValue(1.0)
	}()

	res := d.Get()
	if diff := cmp.Diff(1.0, res.TryGet()); diff != "" {
		t.Error("wrong value\n" + diff)
	}

	for i := 3; i < 5; i++ {
		d.Observe(func(res deferred.Result[float64]) {
			if diff := cmp.Diff(1.0, res.TryGet()); diff != "" {
				t.Error("wrong post-resolution value\n" + diff)
			}
			wg.Done()
		})
	}

	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]int{0, 1, 2}, preOrder); diff != "" {
		t.Error("pre-resolution observers did not fire in registration order\n" + diff)
	}
}

// newRequest is a small test helper built on a NewRequest(worker)-style
// two-value constructor: it hands back the Resolver captured by the
// producer, synchronized through a channel so there is no data race on
// the captured value.
func newRequest[V any](exec deferred.Executor) (deferred.Resolver[V], *deferred.Deferred[V]) {
	resolverCh := make(chan deferred.Resolver[V], 1)
	d := deferred.NewWithProducer[V](exec, func(r deferred.Resolver[V]) {
		resolverCh <- r
	})
	return <-resolverCh, d
}

func TestAtMostOnceResolution(t *testing.T) {
	exec := testExecutor()
	var winners int32
	producerDone := make(chan struct{})
	var d *deferred.Deferred[int]
	d = deferred.NewWithProducer[int](exec, func(r deferred.Resolver[int]) {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				if r.ResolveValue(i) {
					atomic.AddInt32(&winners, 1)
				}
			}()
		}
		wg.Wait()
		close(producerDone)
	})

	res := d.Get()
	// The winner counts itself only after ResolveValue returns, which can
	// be after Get has already returned; wait for every resolver goroutine.
	<-producerDone
	if n := atomic.LoadInt32(&winners); n != 1 {
		t.Fatalf("winners = %d; want 1", n)
	}
	res2, ok := d.Peek()
	if !ok {
		t.Fatalf("expected resolved Deferred to peek non-empty")
	}
	if diff := cmp.Diff(res.TryGet(), res2.TryGet()); diff != "" {
		t.Error("peek result changed after resolution\n" + diff)
	}
}

func TestCancel_IsFinal(t *testing.T) {
	exec := testExecutor()
	d := deferred.NewWithProducer[int](exec, func(r deferred.Resolver[int]) {
		// never resolves on its own
	})
	if !d.Cancel("x") {
		t.Fatalf("first Cancel call should succeed")
	}
	if d.Cancel("y") {
		t.Fatalf("second Cancel call should fail")
	}
	res, ok := d.Peek()
	if !ok {
		t.Fatalf("expected canceled Deferred to peek non-empty")
	}
	wantErr := deferred.CanceledError{Reason: "x"}
	if diff := cmp.Diff(wantErr, res.Error()); diff != "" {
		t.Error("wrong cancellation error\n" + diff)
	}
}

func TestTimeout_ElapsesWhenSourceNeverResolves(t *testing.T) {
	exec := testExecutor()
	d := deferred.NewWithProducer[int](exec, func(r deferred.Resolver[int]) {
		// never resolves
	})
	start := time.Now()
	out := d.Timeout(100*time.Millisecond, "slow")
	res := out.Get()
	elapsed := time.Since(start)

	if !res.IsFailure() {
		t.Fatalf("expected timeout failure, got success")
	}
	if _, ok := res.Error().(deferred.TimedOutError); !ok {
		t.Fatalf("wrong error type %T; want TimedOutError", res.Error())
	}
	if elapsed < 100*time.Millisecond {
		t.Fatalf("elapsed = %s; want >= 100ms", elapsed)
	}
}

func TestDelay_BypassedOnFailure(t *testing.T) {
	exec := testExecutor()
	d := deferred.Failed[int](exec, deferred.CanceledError{Reason: "boom"})
	start := time.Now()
	out := d.Delay(200 * time.Millisecond)
	res := out.Get()
	if time.Since(start) > 50*time.Millisecond {
		t.Fatalf("delay was not bypassed on failure")
	}
	if !res.IsFailure() {
		t.Fatalf("expected failure to propagate")
	}
}

func TestObserve_AfterResolution(t *testing.T) {
	d := deferred.ResolvedValue(testExecutor(), "done")
	done := make(chan deferred.Result[string], 1)
	d.Observe(func(r deferred.Result[string]) { done <- r })
	res := <-done
	if diff := cmp.Diff("done", res.TryGet()); diff != "" {
		t.Error("wrong value\n" + diff)
	}
}

func TestLongMapChain(t *testing.T) {
	d := deferred.ResolvedValue(testExecutor(), 1)
	for i := 0; i < 1000; i++ {
		d = deferred.Map(d, func(v int) int { return v + 1 })
	}
	res := d.Get()
	if diff := cmp.Diff(1001, res.TryGet()); diff != "" {
		t.Error("wrong value\n" + diff)
	}
}
