package store

import (
	"bothunt/internal/platform/logger"
)

// Option mutates Files during Open
type Option func(*Files) error

// WithLogger sets the logger used for lock contention and skipped writes
func WithLogger(log logger.Logger) Option {
	return func(f *Files) error {
		f.Log = log
		return nil
	}
}
