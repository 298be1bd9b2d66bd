package stdx

// Zero returns the zero value for a given type T.
//
// It exists because generic code cannot write a zero literal for an
// arbitrary type parameter; `return stdx.Zero[T](), err` reads better than
// declaring a throwaway variable at every early return.
func Zero[T any]() T {
	var zero T
	return zero
}
