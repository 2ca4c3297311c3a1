package module

import "reflect"

// PortSet is the open type a module hands back from Ports()
// Concrete modules declare a struct of exported port fields and return it
// as the bundle; single-port modules may return the port itself
type PortSet = any

// PortsOf extracts the first value in m's bundle that satisfies T
// The bundle is tried as a whole first, then the exported fields of a
// struct bundle (or of the struct behind a pointer bundle) in declaration
// order. Unexported fields stay invisible
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	bundle := m.Ports()
	if bundle == nil {
		return zero, false
	}
	if v, ok := bundle.(T); ok {
		return v, true
	}

	rv := reflect.ValueOf(bundle)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for bootstrap paths where a missing port is a
// wiring bug rather than a condition to handle
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic("module: requested port not found on module " + m.Name())
	}
	return v
}
