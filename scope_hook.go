package hookstack

import (
	"context"
	"fmt"

	"github.com/casualjim/hookstack/pkg/scopes"
)

// ScopeImpl is a scope-hook implementation: a constructor producing one
// single-use scoped resource per call. Construction itself must not fail;
// setup errors belong in the scope's Enter.
type ScopeImpl[A, R any] func(args A) scopes.Scope[R]

// YieldImpl adapts a setup/yield/teardown function into a ScopeImpl. The
// declared args type A survives the adaptation, so implementations keep
// their typed argument struct instead of an erased parameter list:
//
//	AttachScope(b, hooks.Session, hookstack.YieldImpl(
//		func(ctx context.Context, args SessionArgs, yield func(*Session) error) error {
//			s := open(args)
//			err := yield(s)
//			return errors.Join(err, s.Close())
//		}))
func YieldImpl[A, R any](fn func(ctx context.Context, args A, yield func(R) error) error) ScopeImpl[A, R] {
	return func(args A) scopes.Scope[R] {
		return scopes.New(func(ctx context.Context, yield func(R) error) error {
			return fn(ctx, args, yield)
		})
	}
}

// ScopeHook is a named extension point whose implementations are scoped
// resources. A call enters one scope per registered implementation, exposes
// the entered values as an ordered list, and exits every entered scope in
// the exact reverse of the order it was entered, whichever traversal order
// was requested and however the call ends.
//
// The Enter surfaces hand back the open stack for callers that need to hold
// it across a scope of their own; the Do surfaces run a body function and
// guarantee the unwind, including on panic.
type ScopeHook[A, R any] struct {
	hookBase[ScopeImpl[A, R]]
}

// NewScopeHook declares a scope hook named name on m. It panics with
// ErrHookExists when the name is already taken on that manager.
func NewScopeHook[A, R any](m *Manager, name string) *ScopeHook[A, R] {
	h := &ScopeHook[A, R]{hookBase: hookBase[ScopeImpl[A, R]]{name: name, manager: m}}
	m.addCaller(h)
	return h
}

// Enter enters every implementation's scope in default order and returns the
// open stack; Stack.Values holds the entered values in entry order. If any
// entry fails, scopes entered so far are exited in reverse order before the
// error returns. The caller owns the stack and must exit it exactly once.
func (h *ScopeHook[A, R]) Enter(args A) (*scopes.Stack[R], error) {
	return h.enter(context.Background(), args, false)
}

// EnterReverse is Enter with the traversal order exactly inverted. Exit
// order mirrors the actual entry order, so it is the default order again.
func (h *ScopeHook[A, R]) EnterReverse(args A) (*scopes.Stack[R], error) {
	return h.enter(context.Background(), args, true)
}

// EnterContext is Enter for context-aware scopes: entries may suspend, and
// suspensions stay strictly sequential; one implementation fully enters
// before the next begins entering.
func (h *ScopeHook[A, R]) EnterContext(ctx context.Context, args A) (*scopes.Stack[R], error) {
	return h.enter(ctx, args, false)
}

// EnterContextReverse is EnterContext with the traversal order inverted.
func (h *ScopeHook[A, R]) EnterContextReverse(ctx context.Context, args A) (*scopes.Stack[R], error) {
	return h.enter(ctx, args, true)
}

// Do enters the scopes in default order, runs body with the entered values,
// and unwinds the stack whether body returns normally, returns an error, or
// panics. A body error is threaded through every exit in reverse entry
// order; exits may suppress or replace it, and Do returns what is left. On
// panic the stack still unwinds, with ErrScopedBodyPanicked in flight, and
// the panic then resumes.
func (h *ScopeHook[A, R]) Do(args A, body func(values []R) error) error {
	return h.do(context.Background(), args, false, func(_ context.Context, values []R) error {
		return body(values)
	})
}

// DoReverse is Do with the traversal order exactly inverted.
func (h *ScopeHook[A, R]) DoReverse(args A, body func(values []R) error) error {
	return h.do(context.Background(), args, true, func(_ context.Context, values []R) error {
		return body(values)
	})
}

// DoContext is Do for context-aware scopes and bodies.
func (h *ScopeHook[A, R]) DoContext(ctx context.Context, args A, body func(ctx context.Context, values []R) error) error {
	return h.do(ctx, args, false, body)
}

// DoContextReverse is DoContext with the traversal order inverted.
func (h *ScopeHook[A, R]) DoContextReverse(ctx context.Context, args A, body func(ctx context.Context, values []R) error) error {
	return h.do(ctx, args, true, body)
}

func (h *ScopeHook[A, R]) enter(ctx context.Context, args A, reverse bool) (*scopes.Stack[R], error) {
	ctors := h.snapshot(reverse)
	scs := make([]scopes.Scope[R], 0, len(ctors))
	for _, ctor := range ctors {
		scs = append(scs, ctor(args))
	}
	return scopes.Enter(ctx, scs)
}

func (h *ScopeHook[A, R]) do(ctx context.Context, args A, reverse bool, body func(context.Context, []R) error) error {
	st, err := h.enter(ctx, args, reverse)
	if err != nil {
		return err
	}

	var bodyErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				_ = st.Exit(ctx, fmt.Errorf("%w: %v", ErrScopedBodyPanicked, r))
				panic(r)
			}
		}()
		bodyErr = body(ctx, st.Values())
	}()
	return st.Exit(ctx, bodyErr)
}
