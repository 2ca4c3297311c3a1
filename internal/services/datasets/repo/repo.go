// Package repo implements filesystem access to dataset shards
package repo

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	perr "bothunt/internal/platform/errors"
	"bothunt/internal/platform/store"
	"bothunt/internal/services/datasets/domain"
)

// FS reads shards laid out as dataset.posts&users.<id>.json with a
// dataset.bots.<id>.txt sidecar, the layout the collection tooling emits
type FS struct {
	files *store.Files
}

// NewFS constructs a reader rooted at the store's datasets directory
func NewFS(files *store.Files) *FS {
	return &FS{files: files}
}

// shardFile is the on-disk JSON shape
type shardFile struct {
	Lang  string        `json:"lang"`
	Users []domain.User `json:"users"`
	Posts []domain.Post `json:"posts"`
}

func (r *FS) shardPath(id int) string {
	return filepath.Join(r.files.DatasetsDir(), fmt.Sprintf("dataset.posts&users.%d.json", id))
}

func (r *FS) botsPath(id int) string {
	return filepath.Join(r.files.DatasetsDir(), fmt.Sprintf("dataset.bots.%d.txt", id))
}

// LoadShard parses one dataset JSON file
func (r *FS) LoadShard(ctx context.Context, id int) (domain.Shard, error) {
	if err := ctx.Err(); err != nil {
		return domain.Shard{}, err
	}

	path := r.shardPath(id)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Shard{}, perr.NotFoundf("dataset shard %d missing at %s", id, path)
		}
		return domain.Shard{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "read dataset shard %d", id)
	}

	var sf shardFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return domain.Shard{}, perr.Wrapf(err, perr.ErrorCodeJSON, "parse dataset shard %d", id)
	}

	return domain.Shard{
		ID:    id,
		Lang:  sf.Lang,
		Users: sf.Users,
		Posts: sf.Posts,
	}, nil
}

// LoadBots reads the bot-label sidecar, one user ID per line, blanks skipped
func (r *FS) LoadBots(ctx context.Context, id int) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := r.botsPath(id)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perr.NotFoundf("bot labels for shard %d missing at %s", id, path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "open bot labels for shard %d", id)
	}
	defer func() { _ = f.Close() }()

	out := make(map[string]struct{}, 64)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		uid := strings.TrimSpace(sc.Text())
		if uid != "" {
			out[uid] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "scan bot labels for shard %d", id)
	}
	return out, nil
}
