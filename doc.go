/*
Package hookstack is a typed hook and plugin engine: a host declares named
extension points, plugins attach implementations to them, and the host calls
a hook to run every implementation in a well-defined order.

The package is built around a few core abstractions:

  - Manager: owns one project's hooks and plugins; independent managers never interfere
  - Hook: a named extension point whose implementations are plain functions
  - ScopeHook: an extension point whose implementations are scoped resources with paired setup and teardown
  - Provider: the interface a plugin implements to bind its implementations during registration
  - Binder: the registration context passed into Provider.AttachHooks

# Basic Usage

A host declares its hooks once, next to the argument structs they take:

	var manager = hookstack.New("myproject")

	type ResolveArgs struct {
		Host string
		Port int
	}

	var Resolve = hookstack.NewHook[ResolveArgs, string](manager, "resolve")

A plugin binds implementations in AttachHooks and is registered either as a
built instance or as a zero-argument factory:

	type DNSPlugin struct{}

	func (p *DNSPlugin) AttachHooks(b *hookstack.Binder) {
		hookstack.Attach(b, Resolve, p.resolve)
	}

	name, err := manager.Register(&DNSPlugin{})
	// or: manager.Register(func() *DNSPlugin { return &DNSPlugin{} })

Calling the hook runs every registered implementation and returns their
results as an ordered list:

	addrs, err := Resolve.Call(ResolveArgs{Host: "example.com", Port: 443})

# Call Order

The default order invokes the most recently registered plugin first; the
Reverse surfaces invert that exactly. Implementations always run
sequentially, on every surface: one finishes before the next starts, so the
interleaving of observable side effects does not depend on which surface
drove the call. The Context surfaces carry a context.Context into the
implementations for cancellation and deadlines without changing any ordering
guarantee.

# Scoped Hooks

A ScopeHook implementation brackets the caller's work between a setup and a
teardown. Entering the hook enters one scope per implementation and exposes
the produced values in entry order; exiting unwinds the scopes in the exact
reverse of the order they were entered, like nested defers. An error from
the caller's body is threaded through every teardown from innermost to
outermost, and each teardown may let it propagate, suppress it, or replace
it with its own. Entry failures unwind whatever had been entered and always
propagate.

	session := hookstack.NewScopeHook[SessionArgs, *Session](manager, "session")

	err := session.Do(args, func(values []*Session) error {
		// every session is open here
		return work(values)
	})
	// every session is closed here, innermost first

# Registration Semantics

Registration is transactional: either every bind a plugin requests succeeds,
or none of them stick and Register returns the joined errors. One plugin
binds at most one implementation per hook. Unregistration accepts the
canonical name, the instance, or the factory the plugin was registered
through, removes the plugin's implementations from every hook, and is a
no-op for unknown keys.
*/
package hookstack
