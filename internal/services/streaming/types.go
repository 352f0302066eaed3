package streaming

import "time"

// PlayedTrack is one playback event flattened from the recently-played feed.
type PlayedTrack struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	PlayedAt time.Time
}

// ArtistRef identifies an artist credited on a track.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TrackMetadata is the full metadata payload for a single track.
type TrackMetadata struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Popularity int         `json:"popularity"`
	DurationMS int         `json:"duration_ms"`
	Explicit   bool        `json:"explicit"`
	Album      albumDetail `json:"album"`
	Artists    []ArtistRef `json:"artists"`
}

// ReleaseDate returns the album release date, empty when unknown.
func (t TrackMetadata) ReleaseDate() string { return t.Album.ReleaseDate }

// AlbumType returns the album category (album, single, compilation), empty
// when unknown.
func (t TrackMetadata) AlbumType() string { return t.Album.AlbumType }

type albumDetail struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	AlbumType   string `json:"album_type"`
}

// ArtistMetadata carries the artist-level fields merged into enrichment.
type ArtistMetadata struct {
	ID         string   `json:"id"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Followers  struct {
		Total int `json:"total"`
	} `json:"followers"`
}

// AudioFeatures is the legacy per-track acoustic feature payload. Entries are
// nullable per id in the provider response, so callers receive pointers.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Acousticness     float64 `json:"acousticness"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Loudness         float64 `json:"loudness"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
	Valence          float64 `json:"valence"`
	Mode             int     `json:"mode"`
	Key              int     `json:"key"`
	TimeSignature    int     `json:"time_signature"`
	DurationMS       int     `json:"duration_ms"`
}
