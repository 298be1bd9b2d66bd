package scopes

import (
	"context"
	"errors"

	"github.com/casualjim/hookstack/pkg/stdx"
)

var (
	// ErrAlreadyEntered is returned when Enter is called on a scope that is
	// already past its setup phase.
	ErrAlreadyEntered = errors.New("scope already entered")

	// ErrNotEntered is returned when Exit is called on a scope that was never
	// entered, or has already been exited.
	ErrNotEntered = errors.New("scope not entered")

	// ErrNeverYielded is returned by Enter when a yield-shaped scope function
	// returns without yielding a value.
	ErrNeverYielded = errors.New("scope function returned without yielding")

	// ErrMultipleYields is returned by Exit when a yield-shaped scope function
	// yields more than once.
	ErrMultipleYields = errors.New("scope function yielded more than once")

	// ErrScopePanicked wraps a panic raised inside a yield-shaped scope
	// function; it surfaces as a regular error from Enter or Exit so sibling
	// scopes still unwind.
	ErrScopePanicked = errors.New("scope function panicked")
)

// Scope is one independently scoped resource: Enter produces its value,
// Exit releases it.
//
// Exit receives the error in flight when the surrounding scope ends, or nil
// when it ended cleanly. The return values encode what happens to that error:
//
//   - (true, nil): the error is handled, nothing propagates further out
//   - (false, nil): the in-flight error, if any, continues outward unchanged
//   - (_, err): err replaces the in-flight error for the scopes further out
type Scope[R any] interface {
	Enter(ctx context.Context) (R, error)
	Exit(ctx context.Context, cause error) (suppressed bool, err error)
}

// Funcs adapts an enter/exit function pair into a Scope. A nil OnEnter
// yields the zero value, a nil OnExit lets every error continue outward.
type Funcs[R any] struct {
	OnEnter func(ctx context.Context) (R, error)
	OnExit  func(ctx context.Context, cause error) (bool, error)
}

func (f Funcs[R]) Enter(ctx context.Context) (R, error) {
	if f.OnEnter == nil {
		return stdx.Zero[R](), nil
	}
	return f.OnEnter(ctx)
}

func (f Funcs[R]) Exit(ctx context.Context, cause error) (bool, error) {
	if f.OnExit == nil {
		return false, nil
	}
	return f.OnExit(ctx, cause)
}

// Stack is a set of entered scopes awaiting exit, together with the values
// their entries produced. It is created by Enter, is not safe for concurrent
// use, and must be exited exactly once via Exit or Close.
type Stack[R any] struct {
	values  []R
	entered []Scope[R]
}

// Enter enters every scope in slice order and returns the open stack.
//
// If entering scope k fails, scopes k-1..0 are exited in reverse order and
// the entry error is returned; exits run with the entry error as cause so
// they can observe the failure, but they cannot suppress it. Errors raised
// by those exits are joined onto the entry error.
func Enter[R any](ctx context.Context, scs []Scope[R]) (*Stack[R], error) {
	st := &Stack[R]{
		values:  make([]R, 0, len(scs)),
		entered: make([]Scope[R], 0, len(scs)),
	}
	for _, sc := range scs {
		v, err := sc.Enter(ctx)
		if err != nil {
			return nil, st.abort(ctx, err)
		}
		st.values = append(st.values, v)
		st.entered = append(st.entered, sc)
	}
	return st, nil
}

// Values returns the entered values in entry order. The slice is shared
// with the stack; callers must not mutate it while the stack is open.
func (st *Stack[R]) Values() []R {
	return st.values
}

// Len returns the number of scopes still open on the stack.
func (st *Stack[R]) Len() int {
	return len(st.entered)
}

// Exit pops and exits every open scope, last-opened-first, threading cause
// through each exit. An exit may suppress the error (nothing propagates
// further out), let it continue, or replace it; a replacement is joined with
// the error it replaces so neither is lost. Exit returns whatever error is
// still outstanding after the outermost scope has exited, and leaves the
// stack empty in every case.
func (st *Stack[R]) Exit(ctx context.Context, cause error) error {
	current := cause
	for len(st.entered) > 0 {
		sc := st.pop()
		suppressed, err := sc.Exit(ctx, current)
		switch {
		case err != nil:
			if current != nil && !errors.Is(err, current) {
				err = errors.Join(err, current)
			}
			current = err
		case suppressed:
			current = nil
		}
	}
	return current
}

// Close exits the stack with no error in flight.
func (st *Stack[R]) Close(ctx context.Context) error {
	return st.Exit(ctx, nil)
}

// abort unwinds after a failed entry. The entry error always propagates:
// suppression by an exit is ignored, and exit failures are joined onto it.
func (st *Stack[R]) abort(ctx context.Context, cause error) error {
	final := cause
	for len(st.entered) > 0 {
		sc := st.pop()
		if _, err := sc.Exit(ctx, cause); err != nil && !errors.Is(err, cause) {
			final = errors.Join(final, err)
		}
	}
	return final
}

func (st *Stack[R]) pop() Scope[R] {
	sc := st.entered[len(st.entered)-1]
	st.entered = st.entered[:len(st.entered)-1]
	return sc
}
