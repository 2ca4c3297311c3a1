package service

import (
	"context"
	"sort"

	"bothunt/internal/core/verdict"
	"bothunt/internal/services/classify/domain"
	datadom "bothunt/internal/services/datasets/domain"
	runsdom "bothunt/internal/services/runs/domain"
)

// direction picks which verdict a biased round trusts
type direction int

const (
	// towardHuman biases rounds to HUMAN; a BOT verdict is trusted
	// immediately and the user leaves the pool as a confirmed bot
	towardHuman direction = iota
	// towardBot biases rounds to BOT; a HUMAN verdict removes the user as
	// a confirmed human, bots survive into the final round
	towardBot
)

// runRecursive drives Depth biased rounds plus one final unbiased round
// The pool never grows, a round never revisits removed users, and an empty
// pool ends the schedule early. TotalExpected is lifted before every round
// so completion and the resumable listing stay truthful mid-schedule
func (s *Service) runRecursive(
	ctx context.Context,
	run runsdom.ActivePort,
	accounts []datadom.Account,
	opts domain.Options,
	dir direction,
	track *tracker,
) ([]string, []domain.RoundStat, error) {
	pool := accounts
	var confirmed []string

	biased := s.Prompts.StrictHumanSystem
	if dir == towardHuman {
		biased = s.Prompts.StrictBotSystem
	}

	for r := 0; r < opts.Depth && len(pool) > 0; r++ {
		keyOf := roundKey(r)
		if err := s.raiseTotal(ctx, run, pool, keyOf); err != nil {
			return nil, track.history(), err
		}
		track.startPass(len(pool), r)

		verdicts, err := s.resolveUsers(ctx, run, pool, keyOf, biased, opts.Model, opts, track)
		if err != nil {
			return nil, track.history(), err
		}

		kept := make([]datadom.Account, 0, len(pool))
		removed := 0
		for _, a := range pool {
			switch v := verdicts[a.User.ID]; {
			case dir == towardHuman && v == verdict.Bot:
				confirmed = append(confirmed, a.User.ID)
				removed++
			case dir == towardBot && v == verdict.Human:
				removed++
			default:
				kept = append(kept, a)
			}
		}
		track.finishRound(domain.RoundStat{Round: r, PoolIn: len(pool), Removed: removed, Kept: len(kept)})
		pool = kept
	}

	if len(pool) > 0 {
		if err := s.raiseTotal(ctx, run, pool, finalKey); err != nil {
			return nil, track.history(), err
		}
		track.startPass(len(pool), opts.Depth)

		verdicts, err := s.resolveUsers(ctx, run, pool, finalKey, s.Prompts.System, opts.Model, opts, track)
		if err != nil {
			return nil, track.history(), err
		}

		// both directions report the final round's BOT verdicts; towardBot
		// arrives here with an empty accumulator, so confirmed is exactly
		// the surviving pool's bots
		finalBots := 0
		for _, a := range pool {
			if verdicts[a.User.ID] == verdict.Bot {
				confirmed = append(confirmed, a.User.ID)
				finalBots++
			}
		}
		removed := finalBots
		if dir == towardBot {
			removed = len(pool) - finalBots
		}
		track.finishRound(domain.RoundStat{Round: opts.Depth, PoolIn: len(pool), Removed: removed, Kept: len(pool) - removed})
	}

	sort.Strings(confirmed)
	return confirmed, track.history(), nil
}

// raiseTotal lifts TotalExpected to cover the keys this round will add
// Keys already cached for the round are counted once, through the record
func (s *Service) raiseTotal(ctx context.Context, run runsdom.ActivePort, pool []datadom.Account, keyOf func(string) string) error {
	pending := 0
	for _, a := range pool {
		if _, ok := run.Lookup(keyOf(a.User.ID)); !ok {
			pending++
		}
	}
	return run.SetTotalExpected(ctx, run.Snapshot().Done()+pending)
}
