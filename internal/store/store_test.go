package store_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"replay/internal/store"
	"replay/internal/testsupport"
)

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	st, err = store.Open(cfg)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	testsupport.InsertTrack(t, st, "alice", "t1", time.Now())
	exists, err := st.TrackExists(ctx, "alice", "t1")
	if err != nil {
		t.Fatalf("TrackExists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected inserted track to exist")
	}
}

func TestOpenRefusesSecondProcess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_ = testsupport.MustOpenStore(t, cfg)

	if _, err := store.Open(cfg); err == nil {
		t.Fatal("expected second Open on same database to fail while lock held")
	}
}

func TestUpsertTrackReplaceSemantics(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	playedAt := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	track := store.Track{ID: "t1", Owner: "alice", Title: "Original", PlayedAt: playedAt}
	if err := st.UpsertTrack(ctx, track); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	track.Title = "Updated"
	if err := st.UpsertTrack(ctx, track); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	rows, err := st.RecentTracks(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("RecentTracks failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after re-ingest, got %d", len(rows))
	}
	if rows[0].Title != "Updated" {
		t.Fatalf("expected replaced title, got %q", rows[0].Title)
	}
	if !rows[0].PlayedAt.Equal(playedAt) {
		t.Fatalf("unexpected played_at %v", rows[0].PlayedAt)
	}
}

func TestUpsertTrackOwnerPartitioning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	now := time.Now()
	testsupport.InsertTrack(t, st, "alice", "t1", now)
	testsupport.InsertTrack(t, st, "bob", "t1", now)

	for _, owner := range []string{"alice", "bob"} {
		rows, err := st.RecentTracks(ctx, owner, 10)
		if err != nil {
			t.Fatalf("RecentTracks(%s) failed: %v", owner, err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 row for %s, got %d", owner, len(rows))
		}
	}
}

func TestUpsertEnrichmentRequiresTrack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	err := st.UpsertEnrichment(ctx, "alice", "ghost", store.Enrichment{Popularity: 10})
	if err == nil {
		t.Fatal("expected integrity error for enrichment without track")
	}
	if !errors.Is(err, store.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}

	missing, err := st.MissingEnrichmentIDs(ctx, "alice")
	if err != nil {
		t.Fatalf("MissingEnrichmentIDs failed: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected store unchanged, got %d missing rows", len(missing))
	}
}

func TestUpsertEnrichmentOwnerScoped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.InsertTrack(t, st, "alice", "t1", time.Now())

	// Same track id under a different owner has no base record.
	err := st.UpsertEnrichment(ctx, "bob", "t1", store.Enrichment{})
	if !errors.Is(err, store.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity for wrong owner, got %v", err)
	}

	if err := st.UpsertEnrichment(ctx, "alice", "t1", store.Enrichment{Popularity: 55}); err != nil {
		t.Fatalf("UpsertEnrichment failed: %v", err)
	}
	exists, err := st.EnrichmentExists(ctx, "alice", "t1")
	if err != nil {
		t.Fatalf("EnrichmentExists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected enrichment row for alice")
	}
}

func TestUpsertEnrichmentReplaces(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.InsertTrack(t, st, "alice", "t1", time.Now())

	first := store.Enrichment{Popularity: 10, Genres: []string{"rock"}}
	if err := st.UpsertEnrichment(ctx, "alice", "t1", first); err != nil {
		t.Fatalf("first UpsertEnrichment failed: %v", err)
	}
	second := store.Enrichment{Popularity: 90, Genres: []string{"pop", "rock"}, ArtistFollowers: 5}
	if err := st.UpsertEnrichment(ctx, "alice", "t1", second); err != nil {
		t.Fatalf("second UpsertEnrichment failed: %v", err)
	}

	rows, err := st.RecentTracks(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("RecentTracks failed: %v", err)
	}
	enrichment := rows[0].Enrichment
	if enrichment == nil {
		t.Fatal("expected enrichment populated")
	}
	if enrichment.Popularity != 90 || enrichment.ArtistFollowers != 5 || len(enrichment.Genres) != 2 {
		t.Fatalf("expected full replace, got %#v", enrichment)
	}
}

func TestMissingEnrichmentIDsCompleteness(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(42))
	want := map[string]bool{}
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("t%02d", i)
		testsupport.InsertTrack(t, st, "alice", id, time.Now())
		if rng.Intn(2) == 0 {
			if err := st.UpsertEnrichment(ctx, "alice", id, store.Enrichment{}); err != nil {
				t.Fatalf("UpsertEnrichment failed: %v", err)
			}
		} else {
			want[id] = true
		}
	}

	missing, err := st.MissingEnrichmentIDs(ctx, "alice")
	if err != nil {
		t.Fatalf("MissingEnrichmentIDs failed: %v", err)
	}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing ids, got %d", len(want), len(missing))
	}
	for _, id := range missing {
		if !want[id.ID] {
			t.Fatalf("unexpected missing id %q", id.ID)
		}
		if id.Owner != "alice" {
			t.Fatalf("unexpected owner %q", id.Owner)
		}
	}
}

func TestMissingEnrichmentIDsAllOwners(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.InsertTrack(t, st, "alice", "t1", time.Now())
	testsupport.InsertTrack(t, st, "bob", "t2", time.Now())
	if err := st.UpsertEnrichment(ctx, "alice", "t1", store.Enrichment{}); err != nil {
		t.Fatalf("UpsertEnrichment failed: %v", err)
	}

	missing, err := st.MissingEnrichmentIDs(ctx, "")
	if err != nil {
		t.Fatalf("MissingEnrichmentIDs failed: %v", err)
	}
	if len(missing) != 1 || missing[0].Owner != "bob" || missing[0].ID != "t2" {
		t.Fatalf("unexpected missing set: %#v", missing)
	}
}

func TestRecentTracksOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	testsupport.InsertTrack(t, st, "alice", "t0", base)
	testsupport.InsertTrack(t, st, "alice", "t1", base.Add(time.Minute))
	testsupport.InsertTrack(t, st, "alice", "t2", base.Add(2*time.Minute))

	rows, err := st.RecentTracks(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("RecentTracks failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != "t2" || rows[1].ID != "t1" {
		t.Fatalf("expected [t2 t1], got [%s %s]", rows[0].ID, rows[1].ID)
	}
	if rows[0].Enrichment != nil {
		t.Fatal("expected nil enrichment for un-enriched track")
	}
}

func TestAudioFeaturesRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := st.UpsertAudioFeatures(ctx, "alice", "ghost", store.AudioFeatures{}); !errors.Is(err, store.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity for features without track, got %v", err)
	}

	testsupport.InsertTrack(t, st, "alice", "t1", time.Now())
	features := store.AudioFeatures{Tempo: 120.5, Mode: 1, Key: 7, DurationMS: 181000}
	if err := st.UpsertAudioFeatures(ctx, "alice", "t1", features); err != nil {
		t.Fatalf("UpsertAudioFeatures failed: %v", err)
	}

	exists, err := st.AudioFeaturesExist(ctx, "alice", "t1")
	if err != nil {
		t.Fatalf("AudioFeaturesExist failed: %v", err)
	}
	if !exists {
		t.Fatal("expected features row to exist")
	}

	missing, err := st.MissingAudioFeatureIDs(ctx, "alice")
	if err != nil {
		t.Fatalf("MissingAudioFeatureIDs failed: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected no missing feature ids, got %#v", missing)
	}
}
