package hookstack

import (
	"errors"
	"fmt"
)

// Provider is the interface a plugin implements to take part in hook calls.
// AttachHooks is invoked once, during registration, and binds the plugin's
// implementations to the hooks it participates in:
//
//	func (p *CachePlugin) AttachHooks(b *hookstack.Binder) {
//		hookstack.Attach(b, hooks.Lookup, p.lookup)
//		hookstack.AttachScope(b, hooks.Session, hookstack.YieldImpl(p.session))
//	}
type Provider interface {
	AttachHooks(b *Binder)
}

// caller is the manager-facing side of a declared hook: enough to identify
// it and to drop a plugin's implementation during unregistration.
type caller interface {
	Name() string
	owner() *Manager
	detach(plugin string)
}

// Binder carries the registration context into Provider.AttachHooks. It
// records every successful bind so a failed registration can be rolled back
// without leaving partial state behind.
type Binder struct {
	manager *Manager
	plugin  string
	bound   []caller
	errs    []error
}

// Plugin returns the canonical name the plugin is being registered under.
func (b *Binder) Plugin() string {
	return b.plugin
}

// Attach binds a function implementation to a hook. One plugin may bind at
// most one implementation per hook; violations surface as a registration
// error from Register, never as a partial bind.
func Attach[A, R any](b *Binder, h *Hook[A, R], fn ImplFunc[A, R]) {
	b.attach(h, func() error { return h.bind(b.plugin, fn) })
}

// AttachScope binds a scoped-resource implementation to a scope hook, under
// the same rules as Attach.
func AttachScope[A, R any](b *Binder, h *ScopeHook[A, R], fn ScopeImpl[A, R]) {
	b.attach(h, func() error { return h.bind(b.plugin, fn) })
}

func (b *Binder) attach(h caller, bind func() error) {
	if h.owner() != b.manager {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrForeignHook, h.Name()))
		return
	}
	if err := bind(); err != nil {
		b.errs = append(b.errs, err)
		return
	}
	b.bound = append(b.bound, h)
}

func (b *Binder) err() error {
	return errors.Join(b.errs...)
}

func (b *Binder) rollback() {
	for _, h := range b.bound {
		h.detach(b.plugin)
	}
	b.bound = nil
}
