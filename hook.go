package hookstack

import (
	"context"
	"fmt"
	"sync"
)

// ImplFunc is a function-hook implementation. The args struct carries the
// hook's declared arguments by name; the returned value is this
// implementation's contribution to the call's result list.
type ImplFunc[A, R any] func(ctx context.Context, args A) (R, error)

// hookBase is the per-hook bookkeeping shared by function and scope hooks:
// the named implementation list in registration order, bound and detached
// under the hook's own lock.
type hookBase[F any] struct {
	name    string
	manager *Manager

	mu    sync.RWMutex
	impls []implOf[F]
}

type implOf[F any] struct {
	plugin string
	fn     F
}

// Name returns the hook's declared name.
func (h *hookBase[F]) Name() string {
	return h.name
}

func (h *hookBase[F]) owner() *Manager {
	return h.manager
}

func (h *hookBase[F]) bind(plugin string, fn F) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, im := range h.impls {
		if im.plugin == plugin {
			return fmt.Errorf("%w: plugin %q, hook %q", ErrDuplicateImpl, plugin, h.name)
		}
	}
	h.impls = append(h.impls, implOf[F]{plugin: plugin, fn: fn})
	return nil
}

func (h *hookBase[F]) detach(plugin string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, im := range h.impls {
		if im.plugin == plugin {
			h.impls = append(h.impls[:i], h.impls[i+1:]...)
			return
		}
	}
}

// snapshot resolves the call order at call time. The default ("forward")
// order invokes the last-registered plugin first; reverse is its exact
// inversion. The copy keeps a call independent of registrations that happen
// while it runs.
func (h *hookBase[F]) snapshot(reverse bool) []F {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]F, 0, len(h.impls))
	if reverse {
		for i := range h.impls {
			out = append(out, h.impls[i].fn)
		}
		return out
	}
	for i := len(h.impls) - 1; i >= 0; i-- {
		out = append(out, h.impls[i].fn)
	}
	return out
}

// Hook is a named extension point whose implementations are plain functions.
// Declare one per hook name, next to the args struct it takes:
//
//	type ResolveArgs struct {
//		Host string
//		Port int
//	}
//
//	var Resolve = hookstack.NewHook[ResolveArgs, string](manager, "resolve")
//
// Calls return one result per registered implementation, in invocation
// order. Implementations always run sequentially: on every surface an
// implementation finishes before the next one starts, so observable side
// effects interleave the same way no matter which surface drove the call.
type Hook[A, R any] struct {
	hookBase[ImplFunc[A, R]]
}

// NewHook declares a function hook named name on m. It panics with
// ErrHookExists when the name is already taken on that manager.
func NewHook[A, R any](m *Manager, name string) *Hook[A, R] {
	h := &Hook[A, R]{hookBase: hookBase[ImplFunc[A, R]]{name: name, manager: m}}
	m.addCaller(h)
	return h
}

// Call invokes every implementation in default order and returns their
// results in invocation order. The first implementation error aborts the
// call and is returned as is.
func (h *Hook[A, R]) Call(args A) ([]R, error) {
	return h.invoke(context.Background(), args, false)
}

// CallReverse is Call with the call order exactly inverted.
func (h *Hook[A, R]) CallReverse(args A) ([]R, error) {
	return h.invoke(context.Background(), args, true)
}

// CallContext is Call for context-aware implementations: each invocation is
// awaited before the next implementation starts, preserving the ordering of
// observable effects of the plain surface. Cancellation is observed by the
// implementations through ctx and reported as a regular error.
func (h *Hook[A, R]) CallContext(ctx context.Context, args A) ([]R, error) {
	return h.invoke(ctx, args, false)
}

// CallContextReverse is CallContext with the call order exactly inverted.
func (h *Hook[A, R]) CallContextReverse(ctx context.Context, args A) ([]R, error) {
	return h.invoke(ctx, args, true)
}

func (h *Hook[A, R]) invoke(ctx context.Context, args A, reverse bool) ([]R, error) {
	impls := h.snapshot(reverse)
	results := make([]R, 0, len(impls))
	for _, fn := range impls {
		r, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
