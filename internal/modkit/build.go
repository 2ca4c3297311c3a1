package modkit

// Built is the flattened result a module keeps from its options
type Built struct {
	Name  string
	Ports any
}

// Build folds opts into a Built for a module constructor to hold
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:  c.name,
		Ports: c.ports,
	}
}
