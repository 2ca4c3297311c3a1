// Command bothunt-datasets summarizes dataset shards on disk
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"bothunt/internal/core/version"
	"bothunt/internal/modkit"
	"bothunt/internal/modkit/module"
	"bothunt/internal/platform/config"
	"bothunt/internal/platform/logger"
	pstr "bothunt/internal/platform/strings"
	"bothunt/internal/platform/store"

	datamod "bothunt/internal/services/datasets/module"
)

func main() {
	root := config.New()
	l := logger.Get()

	datasets := flag.String("datasets", "30,31,32,33", "comma separated dataset ids")
	showVer := flag.Bool("version", false, "print build information and exit")
	flag.Parse()

	if *showVer {
		bi := version.Info()
		fmt.Printf("%s %s (%s %s)\n", bi.Service, bi.Version, bi.Commit, bi.Date)
		return
	}

	ids, err := pstr.ParseInts(*datasets)
	if err != nil || len(ids) == 0 {
		fmt.Fprintf(os.Stderr, "bothunt-datasets: bad -datasets %q\n", *datasets)
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
	module.Register(dm.Name(), dm.Ports())

	ports, ok := module.PortsAs[datamod.Ports](dm.Name())
	if !ok {
		l.Panic().Str("module", dm.Name()).Msg("port bundle not registered")
	}
	stats, err := ports.Catalog.Describe(context.Background(), ids)
	if err != nil {
		l.Fatal().Err(err).Msg("describing datasets failed")
	}

	for _, st := range stats {
		fmt.Printf("dataset %d: lang=%s users=%d bots=%d posts=%d\n",
			st.DatasetID, st.Lang, st.Users, st.Bots, st.Posts)
		for _, sc := range sortScripts(st.Scripts) {
			fmt.Printf("  %-12s %d\n", sc.name, sc.count)
		}
	}
}

type scriptCount struct {
	name  string
	count int
}

// sortScripts orders by count descending, name ascending on ties
func sortScripts(m map[string]int) []scriptCount {
	out := make([]scriptCount, 0, len(m))
	for name, count := range m {
		out = append(out, scriptCount{name: name, count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}
