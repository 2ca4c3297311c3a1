package modkit

// Option adjusts the build state a module constructor assembles
type Option func(*buildCfg)

// buildCfg collects option effects before Build flattens them
type buildCfg struct {
	name  string
	ports any
}

// WithName sets the module name seen in logs and registry keys
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithPorts hands a module the port bundle of another module
// The concrete bundle type belongs to the module that declares it
func WithPorts[T any](p T) Option {
	return func(c *buildCfg) { c.ports = p }
}
