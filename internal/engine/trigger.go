package engine

import "time"

// deferredBackfill is the cancellable deferred task behind the auto-backfill
// debounce. It holds a due time instead of spawning a goroutine; the owning
// loop's tick fires it, so state is re-validated at fire time rather than
// captured at schedule time.
type deferredBackfill struct {
	armed bool
	dueAt time.Time
}

func (d *deferredBackfill) schedule(at time.Time) {
	d.armed = true
	d.dueAt = at
}

func (d *deferredBackfill) cancel() { d.armed = false }

func (d *deferredBackfill) due(now time.Time) bool {
	return d.armed && !now.Before(d.dueAt)
}
