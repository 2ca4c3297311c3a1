// Command bothunt-runs lists cached runs and what is left to resume
package main

import (
	"context"
	"flag"
	"fmt"

	"bothunt/internal/core/version"
	"bothunt/internal/modkit"
	"bothunt/internal/modkit/module"
	"bothunt/internal/platform/config"
	"bothunt/internal/platform/logger"
	pstr "bothunt/internal/platform/strings"
	"bothunt/internal/platform/store"

	runsmod "bothunt/internal/services/runs/module"
)

func main() {
	root := config.New()
	l := logger.Get()

	incomplete := flag.Bool("incomplete", false, "list only unfinished runs that -resume can pick up")
	showVer := flag.Bool("version", false, "print build information and exit")
	flag.Parse()

	if *showVer {
		bi := version.Info()
		fmt.Printf("%s %s (%s %s)\n", bi.Service, bi.Version, bi.Commit, bi.Date)
		return
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

	rm := runsmod.New(deps)
	module.Register(rm.Name(), rm.Ports())

	ports, ok := module.PortsAs[runsmod.Ports](rm.Name())
	if !ok {
		l.Panic().Str("module", rm.Name()).Msg("port bundle not registered")
	}
	ctx := context.Background()

	list := ports.Cache.List
	if *incomplete {
		list = ports.Cache.ListIncomplete
	}
	runs, err := list(ctx)
	if err != nil {
		l.Fatal().Err(err).Msg("listing runs failed")
	}
	if len(runs) == 0 {
		fmt.Printf("no runs in %s\n", files.RunsDir())
		return
	}

	fmt.Printf("%-30s  %-22s  %-30s  %-14s  %s\n", "SLUG", "DETECTOR", "MODEL", "DATASETS", "DONE")
	for _, s := range runs {
		fmt.Printf("%-30s  %-22s  %-30s  %-14s  %d/%d\n",
			s.Slug, s.Detector, s.Model, pstr.JoinInts(s.Datasets, ","), s.Done, s.Total)
	}
}
