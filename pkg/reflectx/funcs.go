package reflectx

import (
	"reflect"
	"runtime"
	"strings"
)

// IsFunction reports whether fn is a function value. A nil interface is not
// a function.
func IsFunction(fn any) bool {
	if fn == nil {
		return false
	}

	return reflect.TypeOf(fn).Kind() == reflect.Func
}

// IsFactory reports whether fn is a zero-argument, single-result function.
// This is the shape a plugin factory has to have: it takes nothing and
// produces the plugin instance.
func IsFactory(fn any) bool {
	if !IsFunction(fn) {
		return false
	}

	ftpe := reflect.TypeOf(fn)
	return ftpe.NumIn() == 0 && !ftpe.IsVariadic() && ftpe.NumOut() == 1
}

// FunctionName returns a readable name for a function value. Named function
// types report their type name, free functions and methods report the name
// the runtime knows them by, with package qualifiers and the method-value
// suffix stripped.
//
// It returns the empty string when fn is not a function.
func FunctionName(fn any) string {
	if !IsFunction(fn) {
		return ""
	}

	val := reflect.ValueOf(fn)
	typ := val.Type()

	if typ.Name() != "" {
		return typ.String()
	}

	if rf := runtime.FuncForPC(val.Pointer()); rf != nil {
		name := rf.Name()
		if lastDot := strings.LastIndex(name, "."); lastDot >= 0 {
			name = strings.TrimSuffix(name[lastDot+1:], "-fm")
		}
		return name
	}

	return typ.String()
}

// TypeName returns the name of the dynamic type of v with any pointer
// indirections removed, so *Plugin and Plugin both report "Plugin".
// Unnamed types fall back to their type string.
func TypeName(v any) string {
	if v == nil {
		return ""
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
