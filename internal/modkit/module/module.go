// Package module carries the module contract plus the bootstrap registry.
// It sits below modkit so a service module can import the contract without
// pulling in the wiring helpers
package module

// Module is what the registry and ports helpers need from a service module
type Module interface {
	// Ports returns the module's port bundle for cross wiring
	Ports() any

	// Name identifies the module in registry keys and panic messages
	Name() string
}
