package service

import (
	"context"

	"bothunt/internal/services/classify/domain"
	datadom "bothunt/internal/services/datasets/domain"
	runsdom "bothunt/internal/services/runs/domain"
)

// runSinglePass issues one verdict per user under bare user-ID keys
func (s *Service) runSinglePass(
	ctx context.Context,
	run runsdom.ActivePort,
	accounts []datadom.Account,
	opts domain.Options,
	track *tracker,
) ([]string, error) {
	track.startPass(len(accounts), 0)

	verdicts, err := s.resolveUsers(ctx, run, accounts, bareKey, s.Prompts.System, opts.Model, opts, track)
	if err != nil {
		return nil, err
	}
	return botIDs(verdicts), nil
}
