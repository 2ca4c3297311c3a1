// Package service implements the datasets service
package service

import (
	"context"
	"sort"

	"bothunt/internal/core/langhint"
	perr "bothunt/internal/platform/errors"
	"bothunt/internal/platform/logger"
	"bothunt/internal/services/datasets/domain"
)

// Service implements domain.CatalogPort
type Service struct {
	Reader domain.ReaderPort
	Log    logger.Logger
}

// New constructs a new datasets service
func New(reader domain.ReaderPort) *Service {
	return &Service{
		Reader: reader,
		Log:    *logger.Named("datasets"),
	}
}

// Universe returns every account across ids deduped by user ID
// The first shard listing a user wins. Missing shards are skipped with a
// warning; loading nothing at all is an error
func (s *Service) Universe(ctx context.Context, ids []int) ([]domain.Account, error) {
	seen := make(map[string]struct{}, 1024)
	var out []domain.Account
	loaded := 0

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sh, err := s.Reader.LoadShard(ctx, id)
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			s.Log.Warn().Int("dataset", id).Msg("dataset shard missing, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}
		loaded++

		byAuthor := groupPosts(sh.Posts)
		for _, u := range sh.Users {
			if _, dup := seen[u.ID]; dup {
				continue
			}
			seen[u.ID] = struct{}{}
			out = append(out, domain.Account{
				User:      u,
				DatasetID: id,
				Lang:      sh.Lang,
				Posts:     byAuthor[u.ID],
			})
		}
	}

	if loaded == 0 {
		return nil, perr.NotFoundf("no dataset shards found for ids %v", ids)
	}
	return out, nil
}

// Truth returns the ground-truth bot flag for every user across ids
// Later shards win: each shard re-defaults its users to human before its
// sidecar marks bots, and a sidecar only flags IDs the universe contains
func (s *Service) Truth(ctx context.Context, ids []int) (map[string]bool, error) {
	truth := make(map[string]bool, 1024)
	loaded := 0

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sh, err := s.Reader.LoadShard(ctx, id)
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			s.Log.Warn().Int("dataset", id).Msg("dataset shard missing, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}
		loaded++

		for _, u := range sh.Users {
			truth[u.ID] = false
		}

		bots, err := s.Reader.LoadBots(ctx, id)
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			s.Log.Warn().Int("dataset", id).Msg("bot labels missing, skipping labels for shard")
			continue
		}
		if err != nil {
			return nil, err
		}
		for uid := range bots {
			if _, ok := truth[uid]; ok {
				truth[uid] = true
			}
		}
	}

	if loaded == 0 {
		return nil, perr.NotFoundf("no dataset shards found for ids %v", ids)
	}
	return truth, nil
}

// Describe returns per-shard statistics for the datasets CLI
func (s *Service) Describe(ctx context.Context, ids []int) ([]domain.Stats, error) {
	var out []domain.Stats
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sh, err := s.Reader.LoadShard(ctx, id)
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			s.Log.Warn().Int("dataset", id).Msg("dataset shard missing, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}

		bots, err := s.Reader.LoadBots(ctx, id)
		if err != nil && !perr.IsCode(err, perr.ErrorCodeNotFound) {
			return nil, err
		}

		texts := make([]string, 0, len(sh.Posts))
		for _, p := range sh.Posts {
			texts = append(texts, p.Text)
		}

		out = append(out, domain.Stats{
			DatasetID: id,
			Lang:      sh.Lang,
			Users:     len(sh.Users),
			Bots:      len(bots),
			Posts:     len(sh.Posts),
			Scripts:   langhint.Distribution(texts),
		})
	}
	if len(out) == 0 {
		return nil, perr.NotFoundf("no dataset shards found for ids %v", ids)
	}
	return out, nil
}

// groupPosts indexes posts by author and orders each group by CreatedAt
func groupPosts(posts []domain.Post) map[string][]domain.Post {
	byAuthor := make(map[string][]domain.Post, 256)
	for _, p := range posts {
		byAuthor[p.AuthorID] = append(byAuthor[p.AuthorID], p)
	}
	for _, ps := range byAuthor {
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].CreatedAt < ps[j].CreatedAt })
	}
	return byAuthor
}
