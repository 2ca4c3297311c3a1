package service

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"bothunt/internal/core/prompt"
	"bothunt/internal/core/verdict"
	perr "bothunt/internal/platform/errors"
	"bothunt/internal/services/classify/domain"
	datadom "bothunt/internal/services/datasets/domain"
	runsdom "bothunt/internal/services/runs/domain"
)

// runStatistical runs a full calibration pass, then demotes the n least
// confident suspects to human, n = roundHalfUp(FDR * |suspects|)
// FDR is a frozen constant from prior validated runs, not computed online.
// Confidence replies are never cached; only the demotions land in the record
func (s *Service) runStatistical(
	ctx context.Context,
	run runsdom.ActivePort,
	accounts []datadom.Account,
	opts domain.Options,
	track *tracker,
) ([]string, error) {
	track.startPass(len(accounts), 0)

	verdicts, err := s.resolveUsers(ctx, run, accounts, bareKey, s.Prompts.System, opts.CalibrationModel, opts, track)
	if err != nil {
		return nil, err
	}

	suspects := botIDs(verdicts)
	n := roundHalfUp(opts.FDR * float64(len(suspects)))
	if len(suspects) == 0 || n <= 0 {
		s.log.Info().Int("suspects", len(suspects)).Float64("fdr", opts.FDR).
			Msg("nothing to demote, confidence phase skipped")
		return suspects, nil
	}
	n = min(n, len(suspects))

	byID := make(map[string]datadom.Account, len(accounts))
	for _, a := range accounts {
		byID[a.User.ID] = a
	}

	track.startPass(len(suspects), 1)
	scores := make([]suspectScore, len(suspects))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Dispatch == domain.DispatchPool {
		g.SetLimit(max(opts.Workers, 1))
	}
	for i, id := range suspects {
		i, id := i, id
		g.Go(func() (err error) {
			defer recoverPanics(&err)

			if err := gctx.Err(); err != nil {
				return err
			}
			if opts.Dispatch == domain.DispatchStaggered {
				if err := sleepCtx(gctx, time.Duration(i)*opts.Delay); err != nil {
					return err
				}
			}
			raw, err := s.Gateway.Classify(gctx, s.Prompts.ConfidenceSystem, prompt.User(profileOf(byID[id])), opts.ConfidenceModel)
			if err != nil {
				return err
			}
			scores[i] = suspectScore{id: id, confidence: verdict.ParseConfidence(raw)}
			track.tick()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeRunAborted, "confidence pass aborted")
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].confidence != scores[j].confidence {
			return scores[i].confidence < scores[j].confidence
		}
		return scores[i].id < scores[j].id
	})

	demoted := make(map[string]bool, n)
	for _, sc := range scores[:n] {
		if err := run.WriteResult(ctx, sc.id, false); err != nil {
			return nil, err
		}
		demoted[sc.id] = true
		s.log.Info().Str("user", sc.id).Int("confidence", sc.confidence).Msg("suspect demoted to human")
	}

	out := make([]string, 0, len(suspects)-n)
	for _, id := range suspects {
		if !demoted[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

type suspectScore struct {
	id         string
	confidence int
}

// roundHalfUp rounds to the nearest integer, .5 rounding up
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
