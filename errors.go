package hookstack

import "errors"

var (
	// ErrNotAPlugin is returned by Register when the argument neither
	// implements Provider nor is a zero-argument factory producing one.
	ErrNotAPlugin = errors.New("not a plugin instance or zero-argument plugin factory")

	// ErrPluginRegistered is returned by Register when the plugin name or
	// instance is already registered with the manager.
	ErrPluginRegistered = errors.New("plugin already registered")

	// ErrDuplicateImpl is reported when one plugin attaches two
	// implementations to the same hook.
	ErrDuplicateImpl = errors.New("plugin already implements hook")

	// ErrForeignHook is reported when a plugin attaches an implementation to
	// a hook declared on a different manager.
	ErrForeignHook = errors.New("hook belongs to a different manager")

	// ErrHookExists is the panic value raised when two hooks are declared
	// under the same name on one manager.
	ErrHookExists = errors.New("hook already declared")

	// ErrScopedBodyPanicked is the error threaded through scope exits when a
	// Do body panics; the panic resumes after the stack has unwound.
	ErrScopedBodyPanicked = errors.New("scoped hook body panicked")
)
