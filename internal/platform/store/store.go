// Package store provides the on-disk artifact tree shared by every service
package store

import (
	"os"
	"path/filepath"

	perr "bothunt/internal/platform/errors"
	"bothunt/internal/platform/logger"
)

// Files is the handle to the data tree
// zero value is not usable; construct with Open
type Files struct {
	// Log is the logger used for skipped writes and lock contention
	// zero means a no op zerolog logger
	Log logger.Logger

	root        string
	datasetsDir string
	runsDir     string
}

// Open resolves the data tree and ensures the runs directory exists
// The datasets directory is input-only and is never created here; services
// report missing shards themselves
func Open(cfg Config, opts ...Option) (*Files, error) {
	f := &Files{}
	for _, o := range opts {
		if err := o(f); err != nil {
			return nil, err
		}
	}

	// defaults for zero logger to avoid nil checks
	f.Log = f.Log.With().Logger()

	f.root = cfg.Root
	if f.root == "" {
		f.root = "."
	}
	f.datasetsDir = cfg.DatasetsDir
	if f.datasetsDir == "" {
		f.datasetsDir = filepath.Join(f.root, "datasets")
	}
	f.runsDir = cfg.RunsDir
	if f.runsDir == "" {
		f.runsDir = filepath.Join(f.root, "runs")
	}

	if err := os.MkdirAll(f.runsDir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "create runs dir %s", f.runsDir)
	}
	return f, nil
}

// Root returns the base data directory
func (f *Files) Root() string { return f.root }

// DatasetsDir returns the dataset shard directory
func (f *Files) DatasetsDir() string { return f.datasetsDir }

// RunsDir returns the run artifact directory
func (f *Files) RunsDir() string { return f.runsDir }

// Guard verifies the runs directory is writable
func (f *Files) Guard() error {
	if f == nil {
		return perr.Internalf("nil files store")
	}
	probe, err := os.CreateTemp(f.runsDir, ".guard-*")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "runs dir %s not writable", f.runsDir)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

// WriteAtomic writes data to path via a temp file and rename so readers
// never observe partial content
func (f *Files) WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}

// TryLock takes a best-effort lock file next to path
// ok=false means another writer holds it; callers decide whether to skip or wait
func (f *Files) TryLock(path string) (release func(), ok bool) {
	lock := path + ".lock"
	fd, err := os.OpenFile(lock, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false
	}
	_ = fd.Close()
	return func() { _ = os.Remove(lock) }, true
}
