package main

import (
	"testing"
	"time"

	"replay/internal/testsupport"
)

func TestSyncCommandDefaultsOwnerToSoleUser(t *testing.T) {
	env := setupCLITestEnv(t)

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	server := testsupport.NewStreamingServer(t, testsupport.Catalog{
		Played: []testsupport.PlayedItem{{ID: "t1", PlayedAt: base}},
		Tracks: map[string]testsupport.CatalogTrack{
			"t1": {Name: "Golden Hour", AlbumName: "Dusk", Popularity: 64, ArtistIDs: []string{"a1"}},
		},
		Artists: map[string]testsupport.CatalogArtist{
			"a1": {Name: "Vela", Genres: []string{"dream pop"}, Popularity: 70, Followers: 1000},
		},
	})
	env.cfg.Streaming.BaseURL = server.URL
	writeTestConfig(t, env.configPath, env.cfg)

	if _, _, err := runCLI(t, []string{"users", "add", "alice"}, env.configPath); err != nil {
		t.Fatalf("users add: %v", err)
	}

	out, _, err := runCLI(t, []string{"sync"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "Synced 1 plays for alice: 1 enriched, 0 batches skipped")
	requireContains(t, out, "Golden Hour")

	// Piped output is plain rows, so the table border must be absent.
	requireContains(t, out, "Golden Hour\tVela\tDusk")

	out, _, err = runCLI(t, []string{"recent"}, env.configPath)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	requireContains(t, out, "dream pop")
}

func TestSyncCommandRequiresOwnerWhenAmbiguous(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, id := range []string{"alice", "bob"} {
		if _, _, err := runCLI(t, []string{"users", "add", id}, env.configPath); err != nil {
			t.Fatalf("users add %s: %v", id, err)
		}
	}

	if _, _, err := runCLI(t, []string{"recent"}, env.configPath); err == nil {
		t.Fatal("expected owner resolution to fail with two users registered")
	}
}

func TestBackfillCommandReportsCleanStore(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"users", "add", "alice"}, env.configPath); err != nil {
		t.Fatalf("users add: %v", err)
	}

	out, _, err := runCLI(t, []string{"backfill"}, env.configPath)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	requireContains(t, out, "Backfill for alice: 0 missing, 0 enriched, 0 batches skipped")

	out, _, err = runCLI(t, []string{"backfill", "--all"}, env.configPath)
	if err != nil {
		t.Fatalf("backfill --all: %v", err)
	}
	requireContains(t, out, "Backfill for all owners:")
}
