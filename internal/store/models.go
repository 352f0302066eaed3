package store

import "time"

// Track is one playback event owned by a team member. (ID, Owner) uniquely
// identifies at most one row.
type Track struct {
	ID        string
	Owner     string
	Title     string
	Artist    string
	Album     string
	PlayedAt  time.Time
	CreatedAt time.Time
}

// Enrichment carries the derived metadata for a track. Rows are written once
// a track's metadata has been fetched and are only ever replaced wholesale.
type Enrichment struct {
	Popularity       int
	DurationMS       int
	Explicit         bool
	ReleaseDate      string
	AlbumType        string
	Genres           []string
	ArtistPopularity float64
	ArtistFollowers  int
	CreatedAt        time.Time
}

// AudioFeatures is the legacy per-track acoustic feature row.
type AudioFeatures struct {
	Acousticness     float64
	Danceability     float64
	Energy           float64
	Instrumentalness float64
	Liveness         float64
	Loudness         float64
	Speechiness      float64
	Tempo            float64
	Valence          float64
	Mode             int
	Key              int
	TimeSignature    int
	DurationMS       int
	CreatedAt        time.Time
}

// TrackWithEnrichment is the joined read-back view. Enrichment is nil when no
// derived row exists yet.
type TrackWithEnrichment struct {
	Track
	Enrichment *Enrichment
}

// OwnedID identifies a track row across owners.
type OwnedID struct {
	Owner string
	ID    string
}
