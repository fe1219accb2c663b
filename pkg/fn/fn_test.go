package fn

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func TestResult(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("Ok result misreported")
	}
	if v, err := r.Unwrap(); v != 42 || err != nil {
		t.Fatalf("Unwrap = %v, %v", v, err)
	}
	if r.Must() != 42 {
		t.Fatal("Must should return the value")
	}

	sentinel := errors.New("boom")
	e := Err[int](sentinel)
	if e.IsOk() || !e.IsErr() {
		t.Fatal("Err result misreported")
	}
	if _, err := e.Unwrap(); !errors.Is(err, sentinel) {
		t.Fatalf("Unwrap err = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Must on Err should panic")
		}
	}()
	e.Must()
}

func TestFromPair(t *testing.T) {
	if r := FromPair(7, nil); !r.IsOk() || r.Must() != 7 {
		t.Fatal("FromPair with nil error")
	}
	if r := FromPair(0, errors.New("x")); !r.IsErr() {
		t.Fatal("FromPair with error")
	}
}

func TestCollect(t *testing.T) {
	vals, err := Collect([]Result[int]{Ok(1), Ok(2), Ok(3)}).Unwrap()
	if err != nil || len(vals) != 3 || vals[2] != 3 {
		t.Fatalf("Collect = %v, %v", vals, err)
	}

	sentinel := errors.New("bad")
	if _, err := Collect([]Result[int]{Ok(1), Err[int](sentinel)}).Unwrap(); !errors.Is(err, sentinel) {
		t.Fatalf("Collect should surface the first error, got %v", err)
	}
}

func TestMapFilterUnique(t *testing.T) {
	got := Map([]int{1, 2, 3}, strconv.Itoa)
	if len(got) != 3 || got[1] != "2" {
		t.Fatalf("Map = %v", got)
	}

	evens := Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	if len(evens) != 2 || evens[0] != 2 || evens[1] != 4 {
		t.Fatalf("Filter = %v", evens)
	}

	uniq := Unique([]int{3, 1, 3, 2, 1})
	if len(uniq) != 3 || uniq[0] != 3 || uniq[1] != 1 || uniq[2] != 2 {
		t.Fatalf("Unique = %v", uniq)
	}
}

func TestGroupBy(t *testing.T) {
	groups := GroupBy([]int{1, 2, 3, 4, 5}, func(v int) int { return v % 2 })
	if len(groups[0]) != 2 || len(groups[1]) != 3 {
		t.Fatalf("GroupBy = %v", groups)
	}
}

func TestSplitN(t *testing.T) {
	tests := []struct {
		n     int
		items int
		sizes []int
	}{
		{2, 5, []int{3, 2}},
		{3, 6, []int{2, 2, 2}},
		{4, 2, []int{1, 1, 0, 0}},
		{1, 3, []int{3}},
	}
	for _, tt := range tests {
		parts := SplitN(make([]int, tt.items), tt.n)
		if len(parts) != tt.n {
			t.Fatalf("SplitN(%d items, %d) has %d parts", tt.items, tt.n, len(parts))
		}
		for i, want := range tt.sizes {
			if len(parts[i]) != want {
				t.Fatalf("SplitN(%d items, %d) part %d has %d, want %d",
					tt.items, tt.n, i, len(parts[i]), want)
			}
		}
	}
	if SplitN([]int{1}, 0) != nil {
		t.Fatal("SplitN with n <= 0 must return nil")
	}
}

func TestParMapOrderAndBound(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	out := ParMap(items, 4, func(v int) int {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		return v * 2
	})

	for i, v := range out {
		if v != i*2 {
			t.Fatalf("out[%d] = %d, order not preserved", i, v)
		}
	}
	if peak.Load() > 4 {
		t.Fatalf("concurrency peaked at %d, bound was 4", peak.Load())
	}
}

func TestParMapResultErrors(t *testing.T) {
	sentinel := errors.New("odd")
	results := ParMapResult([]int{1, 2, 3}, 2, func(v int) Result[int] {
		if v%2 == 1 {
			return Err[int](sentinel)
		}
		return Ok(v)
	})
	if results[0].IsOk() || !results[1].IsOk() || results[2].IsOk() {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestThenShortCircuits(t *testing.T) {
	sentinel := errors.New("first failed")
	first := func(_ context.Context, v int) Result[int] {
		return Err[int](sentinel)
	}
	secondCalled := false
	second := func(_ context.Context, v int) Result[string] {
		secondCalled = true
		return Ok(strconv.Itoa(v))
	}

	_, err := Then(first, second)(context.Background(), 1).Unwrap()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if secondCalled {
		t.Fatal("second stage must not run after failure")
	}
}

func TestThenComposes(t *testing.T) {
	double := MapStage(func(v int) int { return v * 2 })
	str := MapStage(strconv.Itoa)
	got := Then(double, str)(context.Background(), 21).Must()
	if got != "42" {
		t.Fatalf("got %q", got)
	}
}

func TestTapStagePassesThrough(t *testing.T) {
	var seen int
	tap := TapStage(func(_ context.Context, v int) { seen = v })
	if got := tap(context.Background(), 9).Must(); got != 9 || seen != 9 {
		t.Fatalf("tap returned %d, saw %d", got, seen)
	}
}

func TestTracedStagePreservesResult(t *testing.T) {
	stage := TracedStage("test", MapStage(func(v int) int { return v + 1 }))
	if got := stage(context.Background(), 1).Must(); got != 2 {
		t.Fatalf("got %d", got)
	}

	sentinel := errors.New("traced failure")
	failing := TracedStage("fail", func(_ context.Context, _ int) Result[int] {
		return Err[int](sentinel)
	})
	if _, err := failing(context.Background(), 1).Unwrap(); !errors.Is(err, sentinel) {
		t.Fatalf("got %v", err)
	}
}

func TestRetry(t *testing.T) {
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond}

	attempts := 0
	r := Retry(context.Background(), opts, func(_ context.Context) Result[int] {
		attempts++
		if attempts < 3 {
			return Errf[int]("attempt %d", attempts)
		}
		return Ok(attempts)
	})
	if r.Must() != 3 || attempts != 3 {
		t.Fatalf("retry result %v after %d attempts", r, attempts)
	}

	attempts = 0
	r = Retry(context.Background(), opts, func(_ context.Context) Result[int] {
		attempts++
		return Errf[int]("always")
	})
	if r.IsOk() || attempts != 3 {
		t.Fatalf("expected 3 failed attempts, got %d", attempts)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Retry(ctx, RetryOpts{MaxAttempts: 5, InitialWait: time.Minute}, func(_ context.Context) Result[int] {
		return Errf[int]("fail")
	})
	if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
