// Package concurrent provides TRAC's small set of publisher combinators
// (spec.md §4.H: hub/first/fold/map/publish) and the ExecutionContext each
// pipeline and DAL call runs within. It is a thin Go-native instantiation —
// goroutines and channels, not a reactive framework — per spec.md §9's
// explicit guidance to avoid introducing one.
package concurrent

import (
	"context"
	"sync"
)

// Publisher emits a sequence of T values on Values, closing it when done;
// Err is set (if non-nil) once Values closes and should only be read after
// a receive from Values returns !ok.
type Publisher[T any] struct {
	Values <-chan T
	errMu  sync.Mutex
	err    error
}

func (p *Publisher[T]) setErr(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

// Err returns the terminal error, if any, after Values has closed.
func (p *Publisher[T]) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Hub is a single-producer publisher: exactly one goroutine feeds Values
// from fn, cancellable via ctx, matching spec.md's "one pipeline = one
// owning loop" rule (§9). Values is one unbuffered channel with no fan-out:
// several receivers each get a share of the values, not every value.
func Hub[T any](ctx context.Context, fn func(ctx context.Context, out chan<- T) error) *Publisher[T] {
	out := make(chan T)
	pub := &Publisher[T]{Values: out}

	go func() {
		defer close(out)
		if err := fn(ctx, out); err != nil {
			pub.setErr(err)
		}
	}()
	return pub
}

// Publish turns a pre-materialized slice into a Publisher, the combinator
// spec.md names `publish(iterable)`.
func Publish[T any](ctx context.Context, items []T) *Publisher[T] {
	return Hub(ctx, func(ctx context.Context, out chan<- T) error {
		for _, item := range items {
			select {
			case out <- item:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
}

// First returns a future of the first element pub emits, or ctx.Err()/pub's
// terminal error if it completes with no elements.
func First[T any](ctx context.Context, pub *Publisher[T]) (T, error) {
	var zero T
	select {
	case v, ok := <-pub.Values:
		if !ok {
			if err := pub.Err(); err != nil {
				return zero, err
			}
			return zero, errEmpty{}
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

type errEmpty struct{}

func (errEmpty) Error() string { return "concurrent: publisher completed with no elements" }

// Fold drains pub, combining each value into acc via reduce, and returns
// the final accumulator once Values closes.
func Fold[T, A any](ctx context.Context, pub *Publisher[T], init A, reduce func(A, T) A) (A, error) {
	acc := init
	for {
		select {
		case v, ok := <-pub.Values:
			if !ok {
				return acc, pub.Err()
			}
			acc = reduce(acc, v)
		case <-ctx.Done():
			return acc, ctx.Err()
		}
	}
}

// Map returns a new Publisher whose values are fn applied to each value pub
// emits, preserving order and propagating pub's terminal error.
func Map[T, U any](ctx context.Context, pub *Publisher[T], fn func(T) (U, error)) *Publisher[U] {
	return Hub(ctx, func(ctx context.Context, out chan<- U) error {
		for {
			select {
			case v, ok := <-pub.Values:
				if !ok {
					return pub.Err()
				}
				mapped, err := fn(v)
				if err != nil {
					return err
				}
				select {
				case out <- mapped:
				case <-ctx.Done():
					return ctx.Err()
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
}

// Allocator hands out reusable byte buffers with the capacity given to
// NewAllocator, so pipeline
// stages avoid per-batch allocation churn on the hot path.
type Allocator struct {
	pool sync.Pool
}

// NewAllocator builds an Allocator whose buffers start at size bytes.
func NewAllocator(size int) *Allocator {
	return &Allocator{pool: sync.Pool{New: func() any { return make([]byte, 0, size) }}}
}

// Get returns a buffer with at least the pool's configured capacity.
func (a *Allocator) Get() []byte {
	return a.pool.Get().([]byte)[:0]
}

// Put returns buf to the pool for reuse.
func (a *Allocator) Put(buf []byte) {
	a.pool.Put(buf) //nolint:staticcheck // intentional: slice header only
}

// ExecutionContext is the resource bundle every pipeline, DAL call and
// storage operation runs within (spec.md §4.H / §5): a cancellable scope
// plus the buffer allocator backing its I/O. Unlike spec.md's event-loop
// wording, this Go port carries the Go-native cancellation/resource
// primitives a goroutine-based pipeline actually needs: a context and an
// allocator, not a loop handle.
type ExecutionContext struct {
	context.Context
	Allocator *Allocator
}

// NewExecutionContext builds an ExecutionContext over ctx with its own
// buffer allocator.
func NewExecutionContext(ctx context.Context, bufferSize int) *ExecutionContext {
	return &ExecutionContext{Context: ctx, Allocator: NewAllocator(bufferSize)}
}
