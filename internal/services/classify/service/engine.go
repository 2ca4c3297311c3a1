package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bothunt/internal/core/prompt"
	"bothunt/internal/core/verdict"
	perr "bothunt/internal/platform/errors"
	"bothunt/internal/platform/logger"
	"bothunt/internal/services/classify/domain"
	datadom "bothunt/internal/services/datasets/domain"
	runsdom "bothunt/internal/services/runs/domain"
)

// resolveUsers produces a verdict for every account under keyOf, consulting
// the cache before issuing any call. Cache hits tick progress exactly like
// fresh verdicts, so resumed runs report truthful done/total counts.
// The first worker error cancels the group and aborts the pass
func (s *Service) resolveUsers(
	ctx context.Context,
	run runsdom.ActivePort,
	accounts []datadom.Account,
	keyOf func(string) string,
	system, model string,
	opts domain.Options,
	track *tracker,
) (map[string]verdict.Verdict, error) {
	out := make(map[string]verdict.Verdict, len(accounts))
	var mu sync.Mutex

	pending := make([]datadom.Account, 0, len(accounts))
	for _, a := range accounts {
		if bot, ok := run.Lookup(keyOf(a.User.ID)); ok {
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
	for i, a := range pending {
		i, a := i, a
		g.Go(func() (err error) {
			defer recoverPanics(&err)

			// a sibling's failure cancels the group; don't issue the call
			if err := gctx.Err(); err != nil {
				return err
			}
			if opts.Dispatch == domain.DispatchStaggered {
				if err := sleepCtx(gctx, time.Duration(i)*opts.Delay); err != nil {
					return err
				}
			}
			raw, err := s.Gateway.Classify(gctx, system, prompt.User(profileOf(a)), model)
			if err != nil {
				return err
			}
			v := verdict.Parse(raw)
			if err := run.WriteResult(gctx, keyOf(a.User.ID), v == verdict.Bot); err != nil {
				return err
			}
			mu.Lock()
			out[a.User.ID] = v
			mu.Unlock()
			track.tick()
			return nil
		})
	}
	return out, perr.WrapIf(g.Wait(), perr.ErrorCodeRunAborted, "classification pass aborted")
}

// recoverPanics converts a worker panic into a coded error so one bad
// profile aborts the pass instead of the process. The cache keeps every
// verdict written before the abort, so the run stays resumable
func recoverPanics(err *error) {
	if r := recover(); r != nil {
		*err = perr.PanicErrf("classification worker panicked: %v", r)
	}
}

// bareKey caches under the plain user ID
func bareKey(id string) string { return id }

// roundKey namespaces cache keys per biased round, 0-based
func roundKey(r int) func(string) string {
	prefix := "round" + strconv.Itoa(r) + ":"
	return func(id string) string { return prefix + id }
}

// finalKey namespaces the unbiased final round
func finalKey(id string) string { return "final:" + id }

func fromBool(bot bool) verdict.Verdict {
	if bot {
		return verdict.Bot
	}
	return verdict.Human
}

// botIDs returns the sorted user IDs judged bot
func botIDs(vs map[string]verdict.Verdict) []string {
	out := make([]string, 0, len(vs))
	for id, v := range vs {
		if v == verdict.Bot {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// profileOf adapts a catalog account to the prompt shape
func profileOf(a datadom.Account) prompt.Profile {
	posts := make([]prompt.Post, len(a.Posts))
	for i, p := range a.Posts {
		posts[i] = prompt.Post{CreatedAt: p.CreatedAt, ID: p.ID, Lang: p.Lang, Text: p.Text}
	}
	return prompt.Profile{
		UserID:      a.User.ID,
		Username:    a.User.Username,
		Name:        a.User.Name,
		Description: a.User.Description,
		Location:    a.User.Location,
		TweetCount:  a.User.TweetCount,
		ZScore:      a.User.ZScore,
		Posts:       posts,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tracker fans progress out to the optional callback and the debug log
type tracker struct {
	mu     sync.Mutex
	done   int
	total  int
	round  int
	rounds []domain.RoundStat
	fn     func(domain.Progress)
	log    logger.Logger
}

func newTracker(fn func(domain.Progress), log logger.Logger) *tracker {
	return &tracker{fn: fn, log: log}
}

// startPass resets the done/total window; recursive strategies call it once
// per round
func (t *tracker) startPass(total, round int) {
	t.mu.Lock()
	t.done, t.total, t.round = 0, total, round
	t.mu.Unlock()
}

// tick records one resolved unit
func (t *tracker) tick() {
	t.mu.Lock()
	t.done++
	p := domain.Progress{Done: t.done, Total: t.total, Round: t.round}
	fn := t.fn
	if fn != nil {
		p.Rounds = append([]domain.RoundStat(nil), t.rounds...)
	}
	t.mu.Unlock()

	t.log.Debug().Int("done", p.Done).Int("total", p.Total).Int("round", p.Round).Msg("progress")
	if fn != nil {
		fn(p)
	}
}

// finishRound appends the round to the history
func (t *tracker) finishRound(st domain.RoundStat) {
	t.mu.Lock()
	t.rounds = append(t.rounds, st)
	t.mu.Unlock()

	t.log.Info().Int("round", st.Round).
		Int("pool", st.PoolIn).Int("removed", st.Removed).Int("kept", st.Kept).
		Msg("round complete")
}

// history returns a copy of the completed-round stats
func (t *tracker) history() []domain.RoundStat {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.RoundStat(nil), t.rounds...)
}
