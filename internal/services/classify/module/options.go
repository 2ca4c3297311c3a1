package module

import (
	"time"

	"bothunt/internal/platform/config"
	pstr "bothunt/internal/platform/strings"
)

// Options holds configuration settings for the classify module
type Options struct {
	Detector         string
	Model            string
	Datasets         []int
	Resume           string
	Workers          int
	Delay            time.Duration
	Dispatch         string
	BatchSize        int
	Depth            int
	FDR              float64
	CalibrationModel string
	ConfidenceModel  string
	DryRun           bool
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	cc := cfg.Prefix("CORE_CLASSIFY_")

	datasets, err := pstr.ParseInts(cc.MayString("DATASETS", "30,31,32,33"))
	if err != nil {
		panic("classify module: bad CORE_CLASSIFY_DATASETS: " + err.Error())
	}

	return Options{
		Detector: cc.MayEnum("DETECTOR", "single-pass",
			"single-pass", "batched", "recursive", "inverse-recursive", "statistical-correction"),
		Model:            cc.MayString("MODEL", "gpt-4.1-mini-2025-04-14"),
		Datasets:         datasets,
		Resume:           cc.MayString("RESUME", ""),
		Workers:          cc.MayInt("WORKERS", 20),
		Delay:            cc.MayDuration("DELAY", 100*time.Millisecond),
		Dispatch:         cc.MayEnum("DISPATCH", "pool", "pool", "staggered"),
		BatchSize:        cc.MayInt("BATCH_SIZE", 10),
		Depth:            cc.MayInt("DEPTH", 3),
		FDR:              cc.MayFloat64("FDR", 0.15),
		CalibrationModel: cc.MayString("CALIBRATION_MODEL", "gpt-4.1-mini-2025-04-14"),
		ConfidenceModel:  cc.MayString("CONFIDENCE_MODEL", ""),
		DryRun:           cc.MayBool("DRY_RUN", false),
	}
}
