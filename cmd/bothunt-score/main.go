// Command bothunt-score grades a run artifact against dataset ground truth
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bothunt/internal/core/version"
	"bothunt/internal/modkit"
	"bothunt/internal/modkit/module"
	"bothunt/internal/platform/config"
	"bothunt/internal/platform/logger"
	"bothunt/internal/platform/store"

	datamod "bothunt/internal/services/datasets/module"
	runsmod "bothunt/internal/services/runs/module"
	scoredom "bothunt/internal/services/score/domain"
	scoremod "bothunt/internal/services/score/module"
)

func main() {
	root := config.New()
	l := logger.Get()

	runFlag := flag.String("run", "", "run artifact path (or pass it positionally)")
	showVer := flag.Bool("version", false, "print build information and exit")
	flag.Parse()

	if *showVer {
		bi := version.Info()
		fmt.Printf("%s %s (%s %s)\n", bi.Service, bi.Version, bi.Commit, bi.Date)
		return
	}

	runPath := *runFlag
	if runPath == "" && flag.NArg() > 0 {
		runPath = flag.Arg(0)
	}
	if runPath == "" {
		fmt.Fprintln(os.Stderr, "bothunt-score: a run artifact path is required")
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

	deps := modkit.Deps{
		Cfg:   root,
		Log:   *l,
		Files: files,
	}

	dm := datamod.New(deps)
	rm := runsmod.New(deps)

	sm := scoremod.New(
		deps,
		modkit.WithPorts(scoredom.Ports{
			Reader:    module.MustPortsOf[datamod.Ports](dm).Reader,
			Artifacts: module.MustPortsOf[runsmod.Ports](rm).Artifacts,
		}),
	)

	module.Register(dm.Name(), dm.Ports())
	module.Register(rm.Name(), rm.Ports())
	module.Register(sm.Name(), sm.Ports())

	ports := sm.Ports().(scoremod.Ports)
	out, err := ports.Scorer.Score(context.Background(), runPath)
	if err != nil {
		l.Fatal().Err(err).Str("run", runPath).Msg("scoring failed")
	}

	// the report goes to stdout, warnings only to the log
	fmt.Print(out.Text)
	l.Info().Str("report", out.ReportPath).Msg("report written")
}
