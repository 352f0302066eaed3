package syncer_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"replay/internal/enrichment"
	"replay/internal/services/streaming"
	"replay/internal/syncer"
	"replay/internal/testsupport"
)

// Exercises the whole pipeline over the wire format: real client, real
// fetcher, real store, fake provider.
func TestSyncEndToEnd(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	server := testsupport.NewStreamingServer(t, testsupport.Catalog{
		Played: []testsupport.PlayedItem{
			{ID: "t1", PlayedAt: base.Add(time.Minute)},
			{ID: "t2", PlayedAt: base},
		},
		Tracks: map[string]testsupport.CatalogTrack{
			"t1": {
				Name: "Golden Hour", Popularity: 80, DurationMS: 201000,
				AlbumName: "Dusk", ReleaseDate: "2024-05-01", AlbumType: "album",
				ArtistIDs: []string{"a1", "a2"},
			},
			"t2": {
				Name: "Static", Popularity: 55, DurationMS: 185000, Explicit: true,
				AlbumName: "Static", AlbumType: "single",
				ArtistIDs: []string{"a1"},
			},
		},
		Artists: map[string]testsupport.CatalogArtist{
			"a1": {Name: "Vela", Genres: []string{"Dream Pop"}, Popularity: 70, Followers: 1000},
			"a2": {Name: "Orbit", Genres: []string{"dream pop", "shoegaze"}, Popularity: 50, Followers: 200},
		},
		Features: map[string]map[string]any{
			"t1": {"id": "t1", "tempo": 118.2, "energy": 0.61, "mode": 1},
		},
	})

	cfg := testsupport.NewConfig(t)
	cfg.Streaming.BaseURL = server.URL
	st := testsupport.MustOpenStore(t, cfg)

	client, err := streaming.New(cfg.Streaming.AccessToken, cfg.Streaming.BaseURL)
	if err != nil {
		t.Fatalf("streaming.New failed: %v", err)
	}
	fetcher := enrichment.New(client, enrichment.Options{
		TrackBatchSize:  cfg.Sync.TrackBatchSize,
		ArtistBatchSize: cfg.Sync.ArtistBatchSize,
	})
	orchestrator := syncer.New(st, client, fetcher, nil)

	result, err := orchestrator.Sync(context.Background(), "alice", 5)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Fetched != 2 || result.Enriched != 2 || result.SkippedBatches != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Tracks) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Tracks))
	}

	first := result.Tracks[0]
	if first.ID != "t1" || first.Title != "Golden Hour" || first.Artist != "Vela" || first.Album != "Dusk" {
		t.Fatalf("unexpected base row: %+v", first.Track)
	}
	if first.Enrichment == nil {
		t.Fatal("expected enrichment for t1")
	}
	if !reflect.DeepEqual(first.Enrichment.Genres, []string{"dream pop", "shoegaze"}) {
		t.Fatalf("unexpected genres: %v", first.Enrichment.Genres)
	}
	if first.Enrichment.ArtistPopularity != 60.0 || first.Enrichment.ArtistFollowers != 1200 {
		t.Fatalf("unexpected artist aggregates: %+v", first.Enrichment)
	}
	if first.Enrichment.ReleaseDate != "2024-05-01" || first.Enrichment.AlbumType != "album" {
		t.Fatalf("unexpected album fields: %+v", first.Enrichment)
	}

	second := result.Tracks[1]
	if second.Enrichment == nil || !second.Enrichment.Explicit || second.Enrichment.Popularity != 55 {
		t.Fatalf("unexpected enrichment for t2: %+v", second.Enrichment)
	}

	// The features path resolves t1 and leaves t2 as a gap.
	features, err := orchestrator.BackfillFeatures(context.Background(), "alice")
	if err != nil {
		t.Fatalf("BackfillFeatures failed: %v", err)
	}
	if features.Missing != 2 || features.Enriched != 1 {
		t.Fatalf("unexpected feature result: %+v", features)
	}
}
