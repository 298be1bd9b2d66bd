package scopes

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/casualjim/hookstack/pkg/stdx"
)

// YieldFunc is a scope written as a single function: run setup, call yield
// exactly once with the scope's value, run teardown, return.
//
// yield suspends until the surrounding stack unwinds, then returns the error
// in flight at that point (nil when the scope ended cleanly). What the
// function returns after yield decides the error's fate:
//
//   - return nil while an error was in flight: the error is suppressed
//   - return the in-flight error as is: it continues outward unchanged
//   - return a wrapper of it: it continues outward with the annotation kept
//   - return a different error: it replaces the in-flight error
type YieldFunc[R any] func(ctx context.Context, yield func(R) error) error

// New adapts a YieldFunc into a Scope. The function runs on its own
// goroutine and is suspended at the yield call between Enter and Exit; the
// ctx passed to Enter is the ctx it observes for both phases.
//
// The function must yield exactly once: returning without yielding makes
// Enter fail with ErrNeverYielded, yielding again makes Exit fail with
// ErrMultipleYields. A panic inside the function is recovered and surfaced
// as an error wrapping ErrScopePanicked, from Enter when setup panicked and
// from Exit when teardown did. Each Scope returned by New is single use.
func New[R any](fn YieldFunc[R]) Scope[R] {
	return &genScope[R]{
		fn:     fn,
		yields: make(chan R),
		resume: make(chan error),
		done:   make(chan error, 1),
	}
}

type genState int

const (
	genInitial genState = iota
	genEntered
	genExited
)

// genScope drives a YieldFunc through the initial -> entered -> exited state
// machine. Enter runs the function up to its yield call, Exit resumes it.
type genScope[R any] struct {
	fn YieldFunc[R]

	mu    sync.Mutex
	state genState

	yields chan R
	resume chan error
	done   chan error
}

func (g *genScope[R]) Enter(ctx context.Context) (R, error) {
	if err := g.transition(genInitial, genEntered); err != nil {
		return stdx.Zero[R](), ErrAlreadyEntered
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				g.done <- fmt.Errorf("%w: %v", ErrScopePanicked, r)
			}
		}()
		g.done <- g.fn(ctx, g.yield)
	}()

	select {
	case v := <-g.yields:
		return v, nil
	case err := <-g.done:
		// Returned without reaching yield: a setup failure if the function
		// reported one, a shape violation otherwise.
		g.mu.Lock()
		g.state = genExited
		g.mu.Unlock()
		if err != nil {
			return stdx.Zero[R](), err
		}
		return stdx.Zero[R](), ErrNeverYielded
	}
}

func (g *genScope[R]) Exit(_ context.Context, cause error) (bool, error) {
	if err := g.transition(genEntered, genExited); err != nil {
		return false, ErrNotEntered
	}

	g.resume <- cause

	var multi bool
	for {
		select {
		case err := <-g.done:
			if multi {
				if err != nil && !errors.Is(err, ErrMultipleYields) {
					return false, errors.Join(ErrMultipleYields, err)
				}
				return false, ErrMultipleYields
			}
			if cause == nil {
				return false, err
			}
			switch {
			case err == nil:
				return true, nil
			case err == cause:
				return false, nil
			default:
				// A wrapper of the cause propagates with its annotation; the
				// stack sees errors.Is(err, cause) and does not join it again.
				return false, err
			}
		case <-g.yields:
			// The function yielded again instead of finishing its teardown.
			// Fail the extra yield and drain until the function returns.
			multi = true
			g.resume <- ErrMultipleYields
		}
	}
}

func (g *genScope[R]) yield(v R) error {
	g.yields <- v
	return <-g.resume
}

func (g *genScope[R]) transition(from, to genState) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != from {
		return ErrNotEntered
	}
	g.state = to
	return nil
}
