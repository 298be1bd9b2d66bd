package registry

import "github.com/alphadose/haxmap"

// Registry is a concurrent name-to-value map. The hook engine uses it to
// track the callers declared against a manager, so hook declaration can
// happen concurrently with plugin registration and calls.
type Registry[T any] interface {
	GetOrAdd(name string, value func() T) (T, bool)
	// ForEach visits every entry until fn returns false.
	ForEach(fn func(name string, value T) bool)
	Len() int
}

type registry[T any] struct {
	values *haxmap.Map[string, T]
}

func New[T any]() Registry[T] {
	return &registry[T]{
		values: haxmap.New[string, T](),
	}
}

func (r *registry[T]) GetOrAdd(name string, valueFn func() T) (T, bool) {
	return r.values.GetOrCompute(name, valueFn)
}

func (r *registry[T]) ForEach(fn func(name string, value T) bool) {
	r.values.ForEach(fn)
}

func (r *registry[T]) Len() int {
	return int(r.values.Len())
}
