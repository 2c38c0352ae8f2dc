package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Success is a completed operation.
type Success[T, R any] struct {
	Index  int
	Input  T
	Result R
}

// Failure is a failed operation. Err is the operation's error, unwrapped.
type Failure[T any] struct {
	Index int
	Input T
	Err   error
}

// Outcome partitions the inputs of a Run.
// Entries appear in completion order.
type Outcome[T, R any] struct {
	Successes []Success[T, R]
	Failures  []Failure[T]
}

// Len returns the number of inputs accounted for.
func (o Outcome[T, R]) Len() int {
	return len(o.Successes) + len(o.Failures)
}

// Err joins every failure, or returns nil when all operations succeeded.
func (o Outcome[T, R]) Err() error {
	if len(o.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(o.Failures))
	for i, f := range o.Failures {
		errs[i] = fmt.Errorf("input %d: %w", f.Index, f.Err)
	}
	return errors.Join(errs...)
}

// Run calls op once per input with at most limit calls in flight.
//
// Every input ends up in exactly one of Successes or Failures. A failing
// operation does not stop the others. When ctx is done, inputs not yet
// started are recorded as failures with ctx.Err() instead of being run.
//
// Parameters:
//   - ctx: Passed to every op call
//   - inputs: Work items; Index in the outcome refers to this slice
//   - limit: Maximum concurrent calls; values below 1 mean no bound
//   - op: The operation
func Run[T, R any](ctx context.Context, inputs []T, limit int, op func(context.Context, T) (R, error)) Outcome[T, R] {
	var (
		mu  sync.Mutex
		out Outcome[T, R]
		g   errgroup.Group
	)
	if limit > 0 {
		g.SetLimit(limit)
	}

	fail := func(i int, in T, err error) {
		mu.Lock()
		out.Failures = append(out.Failures, Failure[T]{Index: i, Input: in, Err: err})
		mu.Unlock()
	}

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			fail(i, in, err)
			continue
		}
		g.Go(func() error {
			res, err := op(ctx, in)
			if err != nil {
				fail(i, in, err)
				return nil
			}
			mu.Lock()
			out.Successes = append(out.Successes, Success[T, R]{Index: i, Input: in, Result: res})
			mu.Unlock()
			return nil
		})
	}

	// Operations report through the outcome, never through the group.
	_ = g.Wait()
	return out
}
