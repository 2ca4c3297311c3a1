// Command bothunt-classify runs one classification pass over dataset shards
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bothunt/internal/core/version"
	"bothunt/internal/modkit"
	"bothunt/internal/modkit/module"
	"bothunt/internal/platform/config"
	"bothunt/internal/platform/logger"
	"bothunt/internal/platform/store"
	"bothunt/internal/platform/validate"

	classifydom "bothunt/internal/services/classify/domain"
	classifymod "bothunt/internal/services/classify/module"
	datamod "bothunt/internal/services/datasets/module"
	runsmod "bothunt/internal/services/runs/module"
)

// args is what flag values must satisfy before they reach the module
type args struct {
	Detector string  `json:"detector" validate:"required,oneof=single-pass batched recursive inverse-recursive statistical-correction"`
	Datasets string  `json:"datasets" validate:"required,comma_ints"`
	Dispatch string  `json:"dispatch" validate:"required,oneof=pool staggered"`
	Workers  int     `json:"workers" validate:"min=1"`
	Batch    int     `json:"batch" validate:"min=1"`
	Depth    int     `json:"depth" validate:"min=1"`
	FDR      float64 `json:"fdr" validate:"min=0,max=1"`
}

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	root := config.New()
	l := logger.Get()

	var (
		detector = flag.String("detector", "single-pass", "strategy: single-pass, batched, recursive, inverse-recursive, statistical-correction")
		model    = flag.String("model", "gpt-4.1-mini-2025-04-14", "model identifier sent to the provider")
		datasets = flag.String("datasets", "30,31,32,33", "comma separated dataset ids")
		workers  = flag.Int("workers", 20, "pool dispatch concurrency (>=1)")
		delay    = flag.Duration("delay", 100*time.Millisecond, "per-call launch delay for staggered dispatch")
		dispatch = flag.String("dispatch", "pool", "dispatch mode: pool or staggered")
		batch    = flag.Int("batch", 10, "users per call for the batched detector")
		depth    = flag.Int("depth", 3, "biased rounds for the recursive detectors")
		fdr      = flag.Float64("fdr", 0.15, "false discovery rate for statistical-correction")
		resume   = flag.String("resume", "", "run slug to resume instead of starting fresh")
		dryRun   = flag.Bool("dry-run", false, "plan the run without issuing calls or caching")
		showVer  = flag.Bool("version", false, "print build information and exit")
	)
	flag.Parse()

	if *showVer {
		bi := version.Info()
		fmt.Printf("%s %s (%s %s)\n", bi.Service, bi.Version, bi.Commit, bi.Date)
		return
	}

	if err := validate.Struct(args{
		Detector: *detector,
		Datasets: *datasets,
		Dispatch: *dispatch,
		Workers:  *workers,
		Batch:    *batch,
		Depth:    *depth,
		FDR:      *fdr,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "bothunt-classify: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	stCfg := root.Prefix("STORE_")
	files, err := store.Open(store.Config{
		Root:        stCfg.MayString("ROOT", "."),
		DatasetsDir: stCfg.MayString("DATASETS_DIR", ""),
		RunsDir:     stCfg.MayString("RUNS_DIR", ""),
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	if err := files.Guard(); err != nil {
		l.Panic().Err(err).Msg("runs dir not writable")
	}

	// Pass CLI flags into CORE_CLASSIFY_* so the module can read its own config
	mustSetEnv("CORE_CLASSIFY_DETECTOR", *detector)
	mustSetEnv("CORE_CLASSIFY_MODEL", *model)
	mustSetEnv("CORE_CLASSIFY_DATASETS", *datasets)
	mustSetEnv("CORE_CLASSIFY_RESUME", *resume)
	mustSetEnv("CORE_CLASSIFY_WORKERS", strconv.Itoa(*workers))
	mustSetEnv("CORE_CLASSIFY_DELAY", delay.String())
	mustSetEnv("CORE_CLASSIFY_DISPATCH", *dispatch)
	mustSetEnv("CORE_CLASSIFY_BATCH_SIZE", strconv.Itoa(*batch))
	mustSetEnv("CORE_CLASSIFY_DEPTH", strconv.Itoa(*depth))
	mustSetEnv("CORE_CLASSIFY_FDR", strconv.FormatFloat(*fdr, 'f', -1, 64))
	mustSetEnv("CORE_CLASSIFY_DRY_RUN", map[bool]string{true: "1", false: "0"}[*dryRun])

	deps := modkit.Deps{
		Cfg:   root,
		Log:   *l,
		Files: files,
	}

	// Build dependency modules first
	dm := datamod.New(deps)
	rm := runsmod.New(deps)

	// Build classify module with ports injected from deps modules
	cm := classifymod.New(
		deps,
		classifymod.Options{},
		modkit.WithPorts(classifydom.Ports{
			Catalog: module.MustPortsOf[datamod.Ports](dm).Catalog,
			Cache:   module.MustPortsOf[runsmod.Ports](rm).Cache,
		}),
	)

	// Register ports
	module.Register(dm.Name(), dm.Ports())
	module.Register(rm.Name(), rm.Ports())
	module.Register(cm.Name(), cm.Ports())

	// Interrupts cancel the run; the cache keeps everything classified so
	// far, so the printed slug resumes it
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := cm.Opts()
	runOpts := classifydom.Options{
		Detector:         classifydom.Detector(opts.Detector),
		Model:            opts.Model,
		Datasets:         opts.Datasets,
		Resume:           opts.Resume,
		Workers:          opts.Workers,
		Delay:            opts.Delay,
		Dispatch:         classifydom.Dispatch(opts.Dispatch),
		BatchSize:        opts.BatchSize,
		Depth:            opts.Depth,
		FDR:              opts.FDR,
		CalibrationModel: opts.CalibrationModel,
		ConfidenceModel:  opts.ConfidenceModel,
		DryRun:           opts.DryRun,
		OnProgress: func(p classifydom.Progress) {
			if p.Done == p.Total || p.Done%25 == 0 {
				l.Info().Int("done", p.Done).Int("total", p.Total).Int("round", p.Round).Msg("progress")
			}
		},
	}

	ports := cm.Ports().(classifymod.Ports)
	out, err := ports.Runner.Run(ctx, runOpts)
	if err != nil {
		if out.Slug != "" {
			l.Error().Str("run", out.Slug).Msg("progress is cached, pass -resume with this slug to continue")
		}
		l.Fatal().Err(err).Msg("classification failed")
	}
	if out.DryRun {
		return
	}

	for _, r := range out.Rounds {
		l.Info().Int("round", r.Round).Int("pool", r.PoolIn).
			Int("removed", r.Removed).Int("kept", r.Kept).
			Msg("round summary")
	}
	l.Info().Str("run", out.Slug).Int("users", out.Total).Int("bots", len(out.Bots)).Msg("done")
	fmt.Println(out.Artifact)
}
