// Package service implements the classification engine
package service

import (
	"context"

	"bothunt/internal/core/prompt"
	"bothunt/internal/core/promptpack"
	perr "bothunt/internal/platform/errors"
	"bothunt/internal/platform/logger"
	pstr "bothunt/internal/platform/strings"
	"bothunt/internal/services/classify/domain"
	datadom "bothunt/internal/services/datasets/domain"
	runsdom "bothunt/internal/services/runs/domain"
)

// Engine defaults applied when Options fields are zero
const (
	defaultWorkers   = 20
	defaultBatchSize = 10
	defaultDepth     = 3
	defaultModel     = "gpt-4.1-mini-2025-04-14"
)

// defaultDatasets is the shard set classified when none is named
var defaultDatasets = []int{30, 31, 32, 33}

// Service implements domain.RunnerPort
type Service struct {
	Catalog datadom.CatalogPort
	Cache   runsdom.CachePort
	Gateway domain.GatewayPort
	Prompts *promptpack.Pack

	log logger.Logger
}

// New constructs a new classify service
func New(catalog datadom.CatalogPort, cache runsdom.CachePort, gw domain.GatewayPort, prompts *promptpack.Pack) *Service {
	if catalog == nil || cache == nil {
		panic("classify.Service requires catalog and cache ports")
	}
	if prompts == nil {
		panic("classify.Service requires a prompt pack")
	}
	return &Service{
		Catalog: catalog,
		Cache:   cache,
		Gateway: gw,
		Prompts: prompts,
		log:     *logger.Named("classify"),
	}
}

// Run classifies every pending unit for opts and writes the run artifact
// A worker error aborts the run; everything classified so far stays in the
// cache, so re-running with -resume picks up where it stopped
func (s *Service) Run(ctx context.Context, opts domain.Options) (domain.Outcome, error) {
	opts = withDefaults(opts)
	if _, err := domain.ParseDetector(string(opts.Detector)); err != nil {
		return domain.Outcome{}, err
	}

	accounts, err := s.Catalog.Universe(ctx, opts.Datasets)
	if err != nil {
		return domain.Outcome{}, err
	}

	if opts.DryRun {
		s.logPlan(opts, len(accounts))
		if len(accounts) > 0 {
			s.log.Debug().
				Str("preview", pstr.Truncate(prompt.User(profileOf(accounts[0])), 160)).
				Msg("first prompt")
		}
		return domain.Outcome{Total: len(accounts), DryRun: true}, nil
	}
	if s.Gateway == nil {
		return domain.Outcome{}, perr.InvalidArgf("no gateway configured; only dry runs are possible")
	}

	var run runsdom.ActivePort
	if opts.Resume != "" {
		run, err = s.Cache.Load(ctx, opts.Resume)
		if err != nil {
			return domain.Outcome{}, err
		}
		if rec := run.Snapshot(); rec.Detector != string(opts.Detector) {
			s.log.Warn().Str("run", run.Slug()).
				Str("recorded", rec.Detector).Str("requested", string(opts.Detector)).
				Msg("resume detector mismatch, cached keys may not line up")
		}
	} else {
		run, err = s.Cache.Create(ctx, string(opts.Detector), opts.Model, opts.Datasets, len(accounts))
		if err != nil {
			return domain.Outcome{}, err
		}
	}
	ctx = logger.WithRun(ctx, run.Slug(), string(opts.Detector))

	track := newTracker(opts.OnProgress, s.log)
	var bots []string
	var rounds []domain.RoundStat

	switch opts.Detector {
	case domain.DetectorSinglePass:
		bots, err = s.runSinglePass(ctx, run, accounts, opts, track)
	case domain.DetectorBatched:
		bots, err = s.runBatched(ctx, run, accounts, opts, track)
	case domain.DetectorRecursive:
		bots, rounds, err = s.runRecursive(ctx, run, accounts, opts, towardBot, track)
	case domain.DetectorInverse:
		bots, rounds, err = s.runRecursive(ctx, run, accounts, opts, towardHuman, track)
	case domain.DetectorStatistical:
		bots, err = s.runStatistical(ctx, run, accounts, opts, track)
	}
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("run aborted, cached progress kept")
		return domain.Outcome{Slug: run.Slug(), RunPath: run.Path(), Total: len(accounts), Rounds: rounds}, err
	}

	hdr := runsdom.Header{Datasets: opts.Datasets, Detector: string(opts.Detector), Model: opts.Model}
	switch opts.Detector {
	case domain.DetectorBatched:
		hdr.BatchSize = opts.BatchSize
	case domain.DetectorRecursive, domain.DetectorInverse:
		hdr.Depth = opts.Depth
	}
	artifact, err := run.WriteArtifact(ctx, hdr, bots)
	if err != nil {
		return domain.Outcome{Slug: run.Slug(), RunPath: run.Path(), Total: len(accounts), Rounds: rounds}, err
	}

	s.log.Info().Str("run", run.Slug()).
		Int("users", len(accounts)).Int("bots", len(bots)).
		Str("artifact", artifact).
		Msg("run complete")

	return domain.Outcome{
		Slug:     run.Slug(),
		RunPath:  run.Path(),
		Artifact: artifact,
		Bots:     bots,
		Total:    len(accounts),
		Rounds:   rounds,
	}, nil
}

func (s *Service) logPlan(opts domain.Options, users int) {
	ev := s.log.Info().
		Str("detector", string(opts.Detector)).
		Str("model", opts.Model).
		Ints("datasets", opts.Datasets).
		Str("dispatch", string(opts.Dispatch)).
		Int("users", users)
	switch opts.Detector {
	case domain.DetectorBatched:
		ev = ev.Int("batch_size", opts.BatchSize).Int("calls", (users+opts.BatchSize-1)/opts.BatchSize)
	case domain.DetectorRecursive, domain.DetectorInverse:
		ev = ev.Int("depth", opts.Depth).Int("max_calls", users*(opts.Depth+1))
	case domain.DetectorStatistical:
		ev = ev.Float64("fdr", opts.FDR).Str("calibration_model", opts.CalibrationModel)
	default:
		ev = ev.Int("calls", users)
	}
	ev.Msg("dry run, no calls issued and nothing cached")
}

func withDefaults(opts domain.Options) domain.Options {
	if opts.Detector == "" {
		opts.Detector = domain.DetectorSinglePass
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if len(opts.Datasets) == 0 {
		opts.Datasets = append([]int(nil), defaultDatasets...)
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Dispatch == "" {
		opts.Dispatch = domain.DispatchPool
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Depth <= 0 {
		opts.Depth = defaultDepth
	}
	if opts.CalibrationModel == "" {
		opts.CalibrationModel = defaultModel
	}
	if opts.ConfidenceModel == "" {
		opts.ConfidenceModel = opts.Model
	}
	return opts
}
