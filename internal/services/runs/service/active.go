package service

import (
	"context"
	"encoding/json"
	"sync"

	perr "bothunt/internal/platform/errors"
	"bothunt/internal/services/runs/domain"
)

// Active is a live handle on one run record
// The in-memory record is authoritative; the file on disk is a best-effort
// mirror refreshed on every write that wins the lock
type Active struct {
	svc  *Service
	slug string

	mu  sync.Mutex
	rec domain.Record
}

// Slug returns the run identifier
func (a *Active) Slug() string { return a.slug }

// Path returns the record file path
func (a *Active) Path() string { return a.svc.recordPath(a.slug) }

// Snapshot returns a copy of the current record
func (a *Active) Snapshot() domain.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyLocked()
}

// Lookup reports the cached verdict for key, if any
func (a *Active) Lookup(key string) (bool, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	bot, ok := a.rec.Results[key]
	return bot, ok
}

// WriteResult records one verdict and mirrors the record to disk
// When another writer holds the file lock the flush is skipped: the verdict
// is already in memory and the next winning write persists it too
func (a *Active) WriteResult(ctx context.Context, key string, bot bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	a.rec.Results[key] = bot
	data, err := json.MarshalIndent(a.rec, "", "  ")
	a.mu.Unlock()
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "marshal run %s", a.slug)
	}
	return a.flush(data)
}

// SetTotalExpected updates the completion target and mirrors the record
func (a *Active) SetTotalExpected(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	a.rec.TotalExpected = n
	data, err := json.MarshalIndent(a.rec, "", "  ")
	a.mu.Unlock()
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "marshal run %s", a.slug)
	}
	return a.flush(data)
}

// WriteArtifact renders and persists the shareable run file, returning its path
func (a *Active) WriteArtifact(ctx context.Context, hdr domain.Header, botIDs []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := a.svc.artifactPath(a.slug)
	data := domain.EncodeArtifact(domain.Run{Header: hdr, BotIDs: botIDs})
	if err := a.svc.files.WriteAtomic(path, data); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "write artifact %s", path)
	}
	return path, nil
}

// flush mirrors data to the record file, best effort
// A contended lock or a failed write is skipped with a debug log: the
// in-memory record stays authoritative and the next winning write persists
// the accumulated state. Durability here is eventual, not per call
func (a *Active) flush(data []byte) error {
	path := a.svc.recordPath(a.slug)
	release, ok := a.svc.files.TryLock(path)
	if !ok {
		a.svc.log.Debug().Str("run", a.slug).Msg("record flush skipped, lock contended")
		return nil
	}
	defer release()

	if err := a.svc.files.WriteAtomic(path, data); err != nil {
		a.svc.log.Debug().Str("run", a.slug).Err(err).Msg("record flush failed, keeping in-memory state")
	}
	return nil
}

// persistLocked writes the record unconditionally; used at creation before
// the handle is shared
func (a *Active) persistLocked() error {
	data, err := json.MarshalIndent(a.rec, "", "  ")
	if err != nil {
		return err
	}
	return a.svc.files.WriteAtomic(a.svc.recordPath(a.slug), data)
}

func (a *Active) copyLocked() domain.Record {
	out := a.rec
	out.Datasets = append([]int(nil), a.rec.Datasets...)
	out.Results = make(map[string]bool, len(a.rec.Results))
	for k, v := range a.rec.Results {
		out.Results[k] = v
	}
	return out
}
