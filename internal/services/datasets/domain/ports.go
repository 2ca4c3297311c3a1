package domain

import "context"

// ReaderPort loads dataset shards and their bot-label sidecars from disk
type ReaderPort interface {
	// LoadShard parses dataset.posts&users.<id>.json
	LoadShard(ctx context.Context, id int) (Shard, error)

	// LoadBots reads dataset.bots.<id>.txt, one user ID per line
	LoadBots(ctx context.Context, id int) (map[string]struct{}, error)
}

// CatalogPort is the external surface of the datasets module
type CatalogPort interface {
	// Universe returns every account across ids deduped by user ID.
	// The first shard listing a user wins; missing shards are skipped with
	// a warning and only an empty result set is an error
	Universe(ctx context.Context, ids []int) ([]Account, error)

	// Truth returns the ground-truth bot flag per user ID.
	// Later shards win: each shard re-defaults its users to human before
	// its sidecar marks bots
	Truth(ctx context.Context, ids []int) (map[string]bool, error)

	// Describe returns per-shard statistics
	Describe(ctx context.Context, ids []int) ([]Stats, error)
}
