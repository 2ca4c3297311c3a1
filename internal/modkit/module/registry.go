package module

import "sync"

// Process-wide registry the CLIs use to cross-wire port bundles while
// booting their modules. Names are module names; last Register wins
var (
	regMu  sync.RWMutex
	byName = map[string]any{}
)

// Register stores a module's port bundle under name, replacing any earlier one
func Register(name string, ports any) {
	regMu.Lock()
	defer regMu.Unlock()
	byName[name] = ports
}

// PortsAs returns the bundle registered under name asserted to T
// ok is false when the name is unknown or the bundle is some other type
func PortsAs[T any](name string) (T, bool) {
	regMu.RLock()
	bundle, found := byName[name]
	regMu.RUnlock()

	var zero T
	if !found {
		return zero, false
	}
	v, ok := bundle.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// reset drops every registration; tests call it between cases
func reset() {
	regMu.Lock()
	defer regMu.Unlock()
	byName = map[string]any{}
}
