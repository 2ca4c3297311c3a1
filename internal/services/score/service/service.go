// Package service implements the run scoring engine
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	perr "bothunt/internal/platform/errors"
	"bothunt/internal/platform/logger"
	datadom "bothunt/internal/services/datasets/domain"
	runsdom "bothunt/internal/services/runs/domain"
	"bothunt/internal/services/score/domain"
)

// Service implements domain.ScorerPort
type Service struct {
	Reader    datadom.ReaderPort
	Artifacts runsdom.ArtifactPort

	log logger.Logger
}

// New constructs a new score service
func New(reader datadom.ReaderPort, artifacts runsdom.ArtifactPort) *Service {
	if reader == nil || artifacts == nil {
		panic("score.Service requires reader and artifact ports")
	}
	return &Service{
		Reader:    reader,
		Artifacts: artifacts,
		log:       *logger.Named("score"),
	}
}

// shardTruth is one loaded shard's own ground truth
type shardTruth struct {
	id    int
	truth map[string]bool
}

// Score grades the artifact at runPath and persists the rendered report
//
// Ground truth assembly is deliberately independent of the classification
// universe: every referenced shard re-defaults its users to human before its
// sidecar marks bots, so the LAST shard listing a user decides, and the
// per-shard maps needed for breakdown rows fall out of the same pass
func (s *Service) Score(ctx context.Context, runPath string) (domain.Outcome, error) {
	run, err := s.Artifacts.ReadArtifact(ctx, runPath)
	if err != nil {
		return domain.Outcome{}, err
	}

	rep := domain.Report{
		RunFile:  filepath.Base(runPath),
		Datasets: run.Header.Datasets,
	}

	truth := make(map[string]bool, 1024)
	users := make(map[string]datadom.User, 1024)
	var shards []shardTruth

	for _, id := range run.Header.Datasets {
		if err := ctx.Err(); err != nil {
			return domain.Outcome{}, err
		}
		sh, err := s.Reader.LoadShard(ctx, id)
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			s.warn(&rep, fmt.Sprintf("dataset shard %d not found, skipped", id))
			continue
		}
		if err != nil {
			return domain.Outcome{}, err
		}

		st := make(map[string]bool, len(sh.Users))
		for _, u := range sh.Users {
			st[u.ID] = false
			truth[u.ID] = false
			users[u.ID] = u
		}

		bots, err := s.Reader.LoadBots(ctx, id)
		switch {
		case perr.IsCode(err, perr.ErrorCodeNotFound):
			s.warn(&rep, fmt.Sprintf("bot labels for shard %d not found, its users default to human", id))
		case err != nil:
			return domain.Outcome{}, err
		default:
			for uid := range bots {
				// a sidecar only flags IDs its own shard carries
				if _, ok := st[uid]; ok {
					st[uid] = true
					truth[uid] = true
				}
			}
		}
		shards = append(shards, shardTruth{id: id, truth: st})
	}
	if len(shards) == 0 {
		return domain.Outcome{}, perr.NotFoundf("no dataset shards loaded for run %s (datasets %v)", rep.RunFile, run.Header.Datasets)
	}

	predicted := make(map[string]bool, len(run.BotIDs))
	var unknown []string
	for _, id := range run.BotIDs {
		if _, ok := truth[id]; ok {
			predicted[id] = true
			continue
		}
		unknown = append(unknown, id)
	}
	if len(unknown) > 0 {
		s.warn(&rep, unknownWarning(unknown))
	}

	rep.Combined = domain.Compute(truth, predicted)
	for _, sh := range shards {
		rep.PerDataset = append(rep.PerDataset, domain.DatasetMetrics{
			DatasetID: sh.id,
			Metrics:   domain.Compute(sh.truth, predicted),
		})
	}

	for id, isBot := range truth {
		switch {
		case predicted[id] && !isBot:
			rep.FalsePositives = append(rep.FalsePositives, users[id])
		case !predicted[id] && isBot:
			rep.FalseNegatives = append(rep.FalseNegatives, users[id])
		}
	}
	sortByID(rep.FalsePositives)
	sortByID(rep.FalseNegatives)

	text := domain.Render(rep)
	saved, err := s.Artifacts.SaveReport(ctx, runPath, text)
	if err != nil {
		return domain.Outcome{}, err
	}

	s.log.Info().Str("run", rep.RunFile).
		Int("tp", rep.Combined.TP).Int("tn", rep.Combined.TN).
		Int("fp", rep.Combined.FP).Int("fn", rep.Combined.FN).
		Int("score", rep.Combined.Score).Int("max_score", rep.Combined.MaxScore).
		Str("report", saved).
		Msg("run scored")

	return domain.Outcome{Report: rep, Text: text, ReportPath: saved}, nil
}

func (s *Service) warn(rep *domain.Report, msg string) {
	rep.Warnings = append(rep.Warnings, msg)
	s.log.Warn().Str("run", rep.RunFile).Msg(msg)
}

// unknownWarning summarizes predicted IDs absent from every shard
// The first ten are shown sorted, the remainder is only counted
func unknownWarning(unknown []string) string {
	sort.Strings(unknown)
	shown := unknown
	if len(shown) > 10 {
		shown = shown[:10]
	}
	msg := fmt.Sprintf("%d predicted user ID(s) not in any dataset (ignored): %s",
		len(unknown), strings.Join(shown, ", "))
	if rest := len(unknown) - len(shown); rest > 0 {
		msg += fmt.Sprintf(" ... and %d more", rest)
	}
	return msg
}

func sortByID(users []datadom.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}
