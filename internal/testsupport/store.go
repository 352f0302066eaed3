package testsupport

import (
	"context"
	"testing"
	"time"

	"replay/internal/config"
	"replay/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// InsertTrack upserts a base playback record for tests.
func InsertTrack(t testing.TB, st *store.Store, owner, id string, playedAt time.Time) {
	t.Helper()

	track := store.Track{
		ID:       id,
		Owner:    owner,
		Title:    "Track " + id,
		Artist:   "Artist " + id,
		Album:    "Album " + id,
		PlayedAt: playedAt,
	}
	if err := st.UpsertTrack(context.Background(), track); err != nil {
		t.Fatalf("store.UpsertTrack: %v", err)
	}
}
