// Package service implements the runs service
package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	perr "bothunt/internal/platform/errors"
	"bothunt/internal/platform/logger"
	"bothunt/internal/platform/store"
	ptime "bothunt/internal/platform/time"
	"bothunt/internal/services/runs/domain"
)

// Service implements domain.CachePort and domain.ArtifactPort
type Service struct {
	files *store.Files
	log   logger.Logger
	now   func() time.Time
}

// New constructs a new runs service
func New(files *store.Files) *Service {
	return &Service{
		files: files,
		log:   *logger.Named("runs"),
		now:   time.Now,
	}
}

func (s *Service) recordPath(slug string) string {
	return filepath.Join(s.files.RunsDir(), slug+".json")
}

func (s *Service) artifactPath(slug string) string {
	return filepath.Join(s.files.RunsDir(), slug+".txt")
}

// Create starts a new run record and persists it immediately
// The slug is the UTC start time plus eight hex chars of a uuid, so slugs
// sort chronologically and never collide
func (s *Service) Create(ctx context.Context, detector, model string, datasets []int, totalExpected int) (domain.ActivePort, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := s.now().UTC()
	slug := ptime.Slug(started) + "-" + uuid.NewString()[:8]

	a := &Active{
		svc:  s,
		slug: slug,
		rec: domain.Record{
			Detector:      detector,
			Model:         model,
			Datasets:      append([]int(nil), datasets...),
			StartedAt:     started,
			TotalExpected: totalExpected,
			Results:       make(map[string]bool, totalExpected),
		},
	}
	if err := a.persistLocked(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "persist new run %s", slug)
	}
	s.log.Info().Str("run", slug).Str("detector", detector).Int("total", totalExpected).Msg("run created")
	return a, nil
}

// Load resumes the record for slug
// Any read or parse failure is a corrupt cache: resuming from a record we
// cannot trust would silently redo or skip work
func (s *Service) Load(ctx context.Context, slug string) (domain.ActivePort, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.recordPath(slug))
	if err != nil {
		return nil, perr.CorruptCachef("run record %s unreadable: %v", slug, err)
	}
	var rec domain.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, perr.CorruptCachef("run record %s unparseable: %v", slug, err)
	}
	if rec.Results == nil {
		rec.Results = make(map[string]bool)
	}
	return &Active{svc: s, slug: slug, rec: rec}, nil
}

// ListIncomplete returns unfinished runs newest first
func (s *Service) ListIncomplete(ctx context.Context) ([]domain.Summary, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, sm := range all {
		if !sm.Complete() {
			out = append(out, sm)
		}
	}
	return out, nil
}

// List returns every run newest first
// Slugs start with the UTC timestamp, so reverse lexicographic order is
// reverse chronological. Unparseable records are skipped with a warning
func (s *Service) List(ctx context.Context) ([]domain.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.files.RunsDir())
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "read runs dir")
	}

	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(slugs)))

	out := make([]domain.Summary, 0, len(slugs))
	for _, slug := range slugs {
		raw, err := os.ReadFile(s.recordPath(slug))
		if err != nil {
			s.log.Warn().Str("run", slug).Err(err).Msg("run record unreadable, skipping")
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.log.Warn().Str("run", slug).Err(err).Msg("run record unparseable, skipping")
			continue
		}
		out = append(out, domain.Summary{
			Slug:      slug,
			Detector:  rec.Detector,
			Model:     rec.Model,
			Datasets:  rec.Datasets,
			Done:      rec.Done(),
			Total:     rec.TotalExpected,
			StartedAt: rec.StartedAt,
		})
	}
	return out, nil
}

// ReadArtifact loads and parses an artifact by path
func (s *Service) ReadArtifact(ctx context.Context, path string) (domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return domain.Run{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Run{}, perr.NotFoundf("run file not found: %s", path)
		}
		return domain.Run{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "read run file %s", path)
	}
	return domain.ParseArtifact(raw)
}

// SaveReport writes text next to the run, keyed by the artifact stem
func (s *Service) SaveReport(ctx context.Context, runPath, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base := filepath.Base(runPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	out := filepath.Join(filepath.Dir(runPath), stem+".accuracy.txt")
	if err := s.files.WriteAtomic(out, []byte(text)); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "write report %s", out)
	}
	return out, nil
}
