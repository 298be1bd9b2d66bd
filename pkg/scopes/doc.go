// Package scopes composes independently scoped resources into a single
// scope that behaves like nested with-blocks, in a chosen traversal order.
//
// Design decisions:
//   - Explicit stack: entered scopes are recorded on an open-scope stack and
//     always unwound last-opened-first, no matter which traversal order was
//     used to enter them and no matter how the scope ends
//   - Tri-state exit: a scope's Exit can suppress the in-flight error, let it
//     continue outward, or replace it, matching nested resource semantics
//   - No silent loss: exit failures during an unwind are joined onto the
//     propagating error with errors.Join
//   - Call-scoped state: every Enter builds its own stack, so concurrent
//     stacks over the same scopes never share state
//
// The two scope shapes:
//   - Funcs pairs an explicit enter function with an explicit exit function
//   - New adapts a single function written in setup/yield/teardown shape,
//     keeping the setup and teardown of one resource in one place
//
// Example usage:
//
//	file := scopes.New(func(ctx context.Context, yield func(*os.File) error) error {
//		f, err := os.Open(name)
//		if err != nil {
//			return err
//		}
//		err = yield(f) // suspends until the stack unwinds
//		return errors.Join(err, f.Close())
//	})
//
//	stack, err := scopes.Enter(ctx, []scopes.Scope[*os.File]{file})
//	if err != nil {
//		return err
//	}
//	defer stack.Close(ctx)
//	use(stack.Values())
//
// Entry order and exit order are always mirror images of each other: if
// entering scope k fails, scopes k-1..0 are exited before the error returns,
// and after Exit completes the stack is empty, even when exits fail.
package scopes
