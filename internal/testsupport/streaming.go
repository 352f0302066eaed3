package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// CatalogTrack describes one track known to the fake streaming API.
type CatalogTrack struct {
	Name        string
	Popularity  int
	DurationMS  int
	Explicit    bool
	AlbumName   string
	ReleaseDate string
	AlbumType   string
	ArtistIDs   []string
}

// CatalogArtist describes one artist known to the fake streaming API.
type CatalogArtist struct {
	Name       string
	Genres     []string
	Popularity int
	Followers  int
}

// Catalog is the dataset served by NewStreamingServer. Played drives the
// recently-played feed in slice order (newest first); the maps back the batch
// lookup endpoints. Unknown ids resolve to null, as the real provider does.
type Catalog struct {
	Played   []PlayedItem
	Tracks   map[string]CatalogTrack
	Artists  map[string]CatalogArtist
	Features map[string]map[string]any
}

// PlayedItem is one entry of the fake recently-played feed.
type PlayedItem struct {
	ID       string
	PlayedAt time.Time
}

// NewStreamingServer starts an httptest server that speaks the streaming
// provider's wire format, backed by the given catalog. Requests must carry
// the bearer token from NewConfig. The server is shut down with the test.
func NewStreamingServer(t testing.TB, catalog Catalog) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/me/player/recently-played", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		items := make([]map[string]any, 0, len(catalog.Played))
		for _, played := range catalog.Played {
			track, ok := catalog.Tracks[played.ID]
			if !ok {
				t.Fatalf("played id %q missing from catalog tracks", played.ID)
			}
			items = append(items, map[string]any{
				"played_at": played.PlayedAt.UTC().Format(time.RFC3339Nano),
				"track": map[string]any{
					"id":      played.ID,
					"name":    track.Name,
					"album":   map[string]any{"name": track.AlbumName},
					"artists": artistRefs(t, catalog, track.ArtistIDs),
				},
			})
		}
		writeJSON(t, w, map[string]any{"items": items})
	})
	mux.HandleFunc("/tracks", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		entries := make([]any, 0)
		for _, id := range requestedIDs(r) {
			track, ok := catalog.Tracks[id]
			if !ok {
				entries = append(entries, nil)
				continue
			}
			entries = append(entries, map[string]any{
				"id":          id,
				"name":        track.Name,
				"popularity":  track.Popularity,
				"duration_ms": track.DurationMS,
				"explicit":    track.Explicit,
				"album": map[string]any{
					"name":         track.AlbumName,
					"release_date": track.ReleaseDate,
					"album_type":   track.AlbumType,
				},
				"artists": artistRefs(t, catalog, track.ArtistIDs),
			})
		}
		writeJSON(t, w, map[string]any{"tracks": entries})
	})
	mux.HandleFunc("/artists", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		entries := make([]any, 0)
		for _, id := range requestedIDs(r) {
			artist, ok := catalog.Artists[id]
			if !ok {
				entries = append(entries, nil)
				continue
			}
			entries = append(entries, map[string]any{
				"id":         id,
				"genres":     artist.Genres,
				"popularity": artist.Popularity,
				"followers":  map[string]any{"total": artist.Followers},
			})
		}
		writeJSON(t, w, map[string]any{"artists": entries})
	})
	mux.HandleFunc("/audio-features", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		entries := make([]any, 0)
		for _, id := range requestedIDs(r) {
			if features, ok := catalog.Features[id]; ok {
				entries = append(entries, features)
			} else {
				entries = append(entries, nil)
			}
		}
		writeJSON(t, w, map[string]any{"audio_features": entries})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer test" {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
		return false
	}
	return true
}

func requestedIDs(r *http.Request) []string {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func artistRefs(t testing.TB, catalog Catalog, ids []string) []map[string]any {
	refs := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		name := id
		if artist, ok := catalog.Artists[id]; ok && artist.Name != "" {
			name = artist.Name
		}
		refs = append(refs, map[string]any{"id": id, "name": name})
	}
	return refs
}

func writeJSON(t testing.TB, w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode fake response: %v", err)
	}
}
