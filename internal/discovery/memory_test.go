package discovery

import (
	"context"
	"testing"
)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.Announce(ctx, "ABC123", "ctf", "us-west", 8)
	l, ok := m.Listing("ABC123")
	if !ok {
		t.Fatalf("listing missing after announce")
	}
	if l.GameMode != "ctf" || l.Capacity != 8 || !l.Joinable {
		t.Fatalf("unexpected listing %+v", l)
	}

	m.SetJoinable(ctx, "ABC123", false)
	m.SetBackfill(ctx, "ABC123", true, 3)
	l, _ = m.Listing("ABC123")
	if l.Joinable {
		t.Fatalf("listing still joinable")
	}
	if !l.NeedsBackfill || l.OpenSlots != 3 {
		t.Fatalf("backfill flags not recorded: %+v", l)
	}

	m.Remove(ctx, "ABC123")
	if _, ok := m.Listing("ABC123"); ok {
		t.Fatalf("listing survived remove")
	}
}

func TestMemory_UpdatesToUnknownCodeAreNoOps(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.SetJoinable(ctx, "NOPE", false)
	m.SetBackfill(ctx, "NOPE", true, 1)
	if _, ok := m.Listing("NOPE"); ok {
		t.Fatalf("update should not create a listing")
	}
}
