// Package discovery mirrors per-match listing attributes onto whatever
// external matchmaking/listing mechanism exists. Writes are best-effort and
// fire-and-forget: failures are logged, never propagated back into the
// admission path.
package discovery

import "context"

type Publisher interface {
	// Announce registers or refreshes the listing for a match.
	Announce(ctx context.Context, code, gameMode, region string, capacity int)
	SetJoinable(ctx context.Context, code string, joinable bool)
	SetBackfill(ctx context.Context, code string, needed bool, slots int)
	Remove(ctx context.Context, code string)
}
