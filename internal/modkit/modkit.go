package modkit

// Module is what every service module exposes to the CLIs that boot it
// The surface stays this small so modules only couple through ports
type Module interface {
	// Ports returns the module's port bundle for cross wiring
	Ports() any

	// Name returns the module name
	Name() string
}

// Builder is the shape of a module constructor, New(deps, opts...) Module
type Builder func(Deps, ...Option) Module
