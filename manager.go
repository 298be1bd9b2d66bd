package hookstack

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/fogfish/opts"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/casualjim/hookstack/internal/registry"
	"github.com/casualjim/hookstack/pkg/reflectx"
	"github.com/casualjim/hookstack/pkg/slogx"
	"github.com/casualjim/hookstack/pkg/uuidx"
)

// Manager owns one project's hooks and plugins. It is an explicit object,
// not ambient state: independent managers in one process never interfere.
//
// Plugins register as already-built instances or as zero-argument factories;
// a factory is invoked exactly once and the produced instance is what gets
// registered, with the factory remembered as an alternate key for
// unregistration and lookup.
type Manager struct {
	project string
	log     *slog.Logger

	mu        sync.RWMutex
	plugins   *orderedmap.OrderedMap[string, Provider]
	factories map[uintptr]string

	callers registry.Registry[caller]
}

// WithLogger replaces the manager's logger, slog.Default otherwise. The
// manager logs lifecycle events at debug level only; call errors are
// returned, never logged.
var WithLogger = opts.ForName[Manager, *slog.Logger]("log")

// New creates a manager for the named project. It panics when an option
// cannot be applied.
func New(project string, options ...opts.Option[Manager]) *Manager {
	m := &Manager{
		project:   project,
		log:       slog.Default(),
		plugins:   orderedmap.New[string, Provider](),
		factories: make(map[uintptr]string),
		callers:   registry.New[caller](),
	}
	if err := opts.Apply(m, options); err != nil {
		panic(err)
	}
	m.log = m.log.With(slogx.LoggerName("hookstack"), slog.String("project", project))
	return m
}

// Name returns the project name the manager was created with.
func (m *Manager) Name() string {
	return m.project
}

// Register registers a plugin under a generated canonical name and returns
// that name. The plugin is either a Provider instance or a zero-argument
// factory (any func() T where T implements Provider); a factory is called
// once, and anything it raises propagates unmodified without touching the
// manager's state.
//
// Registration is all-or-nothing: when any hook bind fails, every bind made
// so far is rolled back and the returned name is empty.
//
// Plugins registered as non-pointer values have no stable identity, so they
// cannot be looked up or unregistered by instance later; keep the returned
// name for that.
func (m *Manager) Register(plugin any) (string, error) {
	return m.register(plugin, "")
}

// RegisterNamed is Register with an explicit plugin name.
func (m *Manager) RegisterNamed(plugin any, name string) (string, error) {
	return m.register(plugin, name)
}

func (m *Manager) register(plugin any, name string) (string, error) {
	inst, factory, err := resolvePlugin(plugin)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = canonicalName(inst)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.plugins.Get(name); exists {
		return "", fmt.Errorf("%w: %q", ErrPluginRegistered, name)
	}
	for p := m.plugins.Oldest(); p != nil; p = p.Next() {
		if sameProvider(p.Value, inst) {
			return "", fmt.Errorf("%w: instance already registered as %q", ErrPluginRegistered, p.Key)
		}
	}

	b := &Binder{manager: m, plugin: name}
	inst.AttachHooks(b)
	if err := b.err(); err != nil {
		b.rollback()
		return "", err
	}

	m.plugins.Set(name, inst)
	if factory != 0 {
		m.factories[factory] = name
	}
	m.log.Debug("registered plugin", slog.String("plugin", name), slog.Int("hooks", len(b.bound)))
	return name, nil
}

// Unregister removes a plugin and drops its implementations from every
// declared hook, so subsequent calls no longer resolve them. The key may be
// the canonical name, the registered instance, or the factory the plugin
// was registered through. Unregistering an unknown key is a no-op; the
// removed instance is returned, or nil.
func (m *Manager) Unregister(key any) Provider {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, ok := m.resolveKey(key)
	if !ok {
		return nil
	}
	inst, present := m.plugins.Delete(name)
	if !present {
		return nil
	}
	for fp, n := range m.factories {
		if n == name {
			delete(m.factories, fp)
		}
	}
	m.callers.ForEach(func(_ string, c caller) bool {
		c.detach(name)
		return true
	})
	m.log.Debug("unregistered plugin", slog.String("plugin", name))
	return inst
}

// IsRegistered reports whether key (name, instance, or factory) denotes a
// currently registered plugin.
func (m *Manager) IsRegistered(key any) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.resolveKey(key)
	return ok
}

// Plugins returns the registered plugin instances in registration order.
func (m *Manager) Plugins() []Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Provider, 0, m.plugins.Len())
	for p := m.plugins.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

// PluginName returns the canonical name a registered instance goes by.
func (m *Manager) PluginName(p Provider) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for pair := m.plugins.Oldest(); pair != nil; pair = pair.Next() {
		if sameProvider(pair.Value, p) {
			return pair.Key, true
		}
	}
	return "", false
}

// HookNames returns the names of the hooks declared on this manager,
// sorted for stable output.
func (m *Manager) HookNames() []string {
	out := make([]string, 0, m.callers.Len())
	m.callers.ForEach(func(name string, _ caller) bool {
		out = append(out, name)
		return true
	})
	slices.Sort(out)
	return out
}

// addCaller records a declared hook. Hook names are unique per manager;
// redeclaration is a programming error and panics.
func (m *Manager) addCaller(c caller) {
	if _, loaded := m.callers.GetOrAdd(c.Name(), func() caller { return c }); loaded {
		panic(fmt.Errorf("%w: %q", ErrHookExists, c.Name()))
	}
	m.log.Debug("declared hook", slog.String("hook", c.Name()))
}

// resolveKey maps a registration key to a canonical plugin name. Callers
// hold m.mu.
func (m *Manager) resolveKey(key any) (string, bool) {
	switch k := key.(type) {
	case string:
		_, ok := m.plugins.Get(k)
		return k, ok
	case Provider:
		for p := m.plugins.Oldest(); p != nil; p = p.Next() {
			if sameProvider(p.Value, k) {
				return p.Key, true
			}
		}
		return "", false
	default:
		if reflectx.IsFunction(key) {
			name, ok := m.factories[reflect.ValueOf(key).Pointer()]
			return name, ok
		}
		return "", false
	}
}

// resolvePlugin normalizes the registration argument into the instance that
// will actually be registered. The variant is decided once, here: a value
// implementing Provider is an instance, even when it is also callable; any
// other zero-argument single-result function is treated as a factory and
// invoked, and its result must implement Provider.
func resolvePlugin(plugin any) (Provider, uintptr, error) {
	if p, ok := plugin.(Provider); ok {
		return p, 0, nil
	}
	if !reflectx.IsFunction(plugin) {
		return nil, 0, fmt.Errorf("%w: %T", ErrNotAPlugin, plugin)
	}
	if !reflectx.IsFactory(plugin) {
		return nil, 0, fmt.Errorf("%w: %s does not take zero arguments and return one value",
			ErrNotAPlugin, reflectx.FunctionName(plugin))
	}

	fv := reflect.ValueOf(plugin)
	out := fv.Call(nil)[0]
	switch out.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		if out.IsNil() {
			return nil, 0, fmt.Errorf("%w: factory %s returned nil",
				ErrNotAPlugin, reflectx.FunctionName(plugin))
		}
	}
	inst, ok := out.Interface().(Provider)
	if !ok {
		return nil, 0, fmt.Errorf("%w: factory %s returned %s",
			ErrNotAPlugin, reflectx.FunctionName(plugin), out.Type())
	}
	return inst, fv.Pointer(), nil
}

// canonicalName derives the registration name for an instance: the type
// name plus a time-ordered unique suffix, so several instances of one
// plugin type can be registered side by side.
func canonicalName(p Provider) string {
	return fmt.Sprintf("%s_%s", reflectx.TypeName(p), uuidx.NewString())
}

// sameProvider compares plugin identities. Pointer plugins compare by
// address; value plugins are never considered identical, mirroring that
// each registration resolves to its own instance.
func sameProvider(a, b Provider) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Pointer && vb.Kind() == reflect.Pointer {
		return va.Pointer() == vb.Pointer()
	}
	return false
}
