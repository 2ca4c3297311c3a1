// Package config reads typed settings from environment variables.
// CLIs bridge their flags into env before the modules boot, so every knob
// has exactly one spelling: the env var
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"bothunt/internal/platform/logger"
)

// Conf is a view over env vars under a fixed prefix ("CORE_", "STORE_")
type Conf struct{ prefix string }

// New returns the unprefixed root view
func New() Conf { return Conf{} }

// Prefix narrows the view by appending p to the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// lookup reads the var behind key; ok is false when unset or blank
func (c Conf) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.prefix + key))
	return v, v != ""
}

// MustString panics when key is unset or blank
// Reserve it for settings a binary cannot run without
func (c Conf) MustString(key string) string {
	v, ok := c.lookup(key)
	if !ok {
		logger.Get().Panic().Str("key", c.prefix+key).Msg("missing required env")
	}
	return v
}

// Require panics unless every key is set and non blank
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if _, ok := c.lookup(k); !ok {
			logger.Get().Panic().Str("key", c.prefix+k).Msg("missing required env")
		}
	}
}

// MayString returns the value of key, or def when unset
func (c Conf) MayString(key, def string) string {
	if v, ok := c.lookup(key); ok {
		return v
	}
	return def
}

// MayInt returns the int behind key
// Unset falls back to def silently; junk falls back with a warning
func (c Conf) MayInt(key string, def int) int {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.prefix+key).Str("value", s).Int("default", def).
			Msg("invalid int; using default")
		return def
	}
	return v
}

// MayFloat64 returns the float behind key, def when unset or unparseable
func (c Conf) MayFloat64(key string, def float64) float64 {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		logger.Get().Warn().Str("key", c.prefix+key).Str("value", s).Float64("default", def).
			Msg("invalid float64; using default")
		return def
	}
	return v
}

// MayBool returns the bool behind key, def when unset or unparseable
// Accepts anything strconv.ParseBool does
func (c Conf) MayBool(key string, def bool) bool {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.prefix+key).Str("value", s).Bool("default", def).
			Msg("invalid bool; using default")
		return def
	}
	return v
}

// MayDuration returns the duration behind key, def when unset or unparseable
// Values use Go syntax: 250ms, 2s, 1h
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.prefix+key).Str("value", s).Dur("default", def).
			Msg("invalid duration; using default")
		return def
	}
	return d
}

// MayEnum returns the value of key when it matches one of allowed, ignoring
// case; unset falls back to def and a set but unlisted value panics, since a
// typoed mode should stop the run before any calls go out
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", c.prefix+key).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return "" // unreachable
}
