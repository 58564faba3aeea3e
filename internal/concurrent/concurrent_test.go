package concurrent

import (
	"context"
	"errors"
	"testing"
)

func TestPublishAndFold(t *testing.T) {
	ctx := context.Background()
	pub := Publish(ctx, []int{1, 2, 3, 4})

	sum, err := Fold(ctx, pub, 0, func(acc, v int) int { return acc + v })
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	if sum != 10 {
		t.Errorf("Fold() = %d, want 10", sum)
	}
}

func TestFirst(t *testing.T) {
	ctx := context.Background()
	pub := Publish(ctx, []string{"a", "b", "c"})

	first, err := First(ctx, pub)
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if first != "a" {
		t.Errorf("First() = %q, want %q", first, "a")
	}
}

func TestFirstOnEmptyPublisher(t *testing.T) {
	ctx := context.Background()
	pub := Publish[int](ctx, nil)

	_, err := First(ctx, pub)
	if err == nil {
		t.Fatal("First() on empty publisher: want error, got nil")
	}
}

func TestMapPreservesOrder(t *testing.T) {
	ctx := context.Background()
	pub := Publish(ctx, []int{1, 2, 3})

	mapped := Map(ctx, pub, func(v int) (int, error) { return v * v, nil })
	got, err := Fold(ctx, mapped, nil, func(acc []int, v int) []int { return append(acc, v) })
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	want := []int{1, 4, 9}
	if len(got) != len(want) {
		t.Fatalf("Map() produced %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Map()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMapPropagatesStageError(t *testing.T) {
	ctx := context.Background()
	pub := Publish(ctx, []int{1, 2, 3})
	boom := errors.New("boom")

	mapped := Map(ctx, pub, func(v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	_, err := Fold(ctx, mapped, 0, func(acc, v int) int { return acc + v })
	if !errors.Is(err, boom) {
		t.Fatalf("Fold() error = %v, want %v", err, boom)
	}
}

func TestAllocatorReuse(t *testing.T) {
	a := NewAllocator(64)
	buf := a.Get()
	if cap(buf) < 64 {
		t.Fatalf("Get() cap = %d, want >= 64", cap(buf))
	}
	buf = append(buf, 1, 2, 3)
	a.Put(buf)

	again := a.Get()
	if len(again) != 0 {
		t.Errorf("Get() after Put len = %d, want 0", len(again))
	}
}

func TestExecutionContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ec := NewExecutionContext(ctx, 128)
	cancel()

	select {
	case <-ec.Done():
	default:
		t.Fatal("ExecutionContext did not observe parent cancellation")
	}
}
