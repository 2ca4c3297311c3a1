package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bothunt/internal/core/prompt"
	"bothunt/internal/core/verdict"
	perr "bothunt/internal/platform/errors"
	"bothunt/internal/services/classify/domain"
	datadom "bothunt/internal/services/datasets/domain"
	runsdom "bothunt/internal/services/runs/domain"
)

// runBatched classifies BatchSize users per gateway call
// Replies are matched to users by ID-prefixed lines first, then by token
// position; users the reply never covers default to human. The fallback is
// lossy: a reordered reply can swap verdicts inside a batch
func (s *Service) runBatched(
	ctx context.Context,
	run runsdom.ActivePort,
	accounts []datadom.Account,
	opts domain.Options,
	track *tracker,
) ([]string, error) {
	track.startPass(len(accounts), 0)

	out := make(map[string]verdict.Verdict, len(accounts))
	var mu sync.Mutex

	pending := make([]datadom.Account, 0, len(accounts))
	for _, a := range accounts {
		if bot, ok := run.Lookup(a.User.ID); ok {
			out[a.User.ID] = fromBool(bot)
			track.tick()
			continue
		}
		pending = append(pending, a)
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Dispatch == domain.DispatchPool {
		g.SetLimit(max(opts.Workers, 1))
	}
	for start := 0; start < len(pending); start += opts.BatchSize {
		batch := pending[start:min(start+opts.BatchSize, len(pending))]
		call := start / opts.BatchSize
		g.Go(func() (err error) {
			defer recoverPanics(&err)

			if err := gctx.Err(); err != nil {
				return err
			}
			if opts.Dispatch == domain.DispatchStaggered {
				if err := sleepCtx(gctx, time.Duration(call)*opts.Delay); err != nil {
					return err
				}
			}

			profiles := make([]prompt.Profile, len(batch))
			ids := make([]string, len(batch))
			for i, a := range batch {
				profiles[i] = profileOf(a)
				ids[i] = a.User.ID
			}

			raw, err := s.Gateway.Classify(gctx, s.Prompts.BatchedSystem, prompt.Batch(profiles), opts.Model)
			if err != nil {
				return err
			}

			got := verdict.ParseBatch(raw, ids)
			for _, id := range ids {
				v := got[id]
				if err := run.WriteResult(gctx, id, v == verdict.Bot); err != nil {
					return err
				}
				mu.Lock()
				out[id] = v
				mu.Unlock()
				track.tick()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeRunAborted, "batched pass aborted")
	}
	return botIDs(out), nil
}
