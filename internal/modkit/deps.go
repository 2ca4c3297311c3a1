// Package modkit wires service modules to the platform pieces they run on
package modkit

import (
	"bothunt/internal/platform/config"
	"bothunt/internal/platform/logger"
	"bothunt/internal/platform/store"
)

// Deps carries the platform pieces every module receives at construction
// Plain wiring, no behavior of its own
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	Files *store.Files
}

// ZeroOK reports that a zero Deps works in tests
// Modules needing the file store still nil check Files themselves
func (d Deps) ZeroOK() bool { return true }
