package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UpsertTrack writes a base playback record with replace semantics keyed by
// (id, owner). Re-ingesting an unchanged record is a no-op; created_at keeps
// the first ingestion timestamp.
func (s *Store) UpsertTrack(ctx context.Context, track Track) error {
	if strings.TrimSpace(track.ID) == "" {
		return errors.New("track id required")
	}
	if strings.TrimSpace(track.Owner) == "" {
		return errors.New("track owner required")
	}

	return s.execWithRetry(ctx,
		`INSERT INTO tracks (id, owner, title, artist, album, played_at, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (id, owner) DO UPDATE SET
             title = excluded.title,
             artist = excluded.artist,
             album = excluded.album,
             played_at = excluded.played_at`,
		track.ID,
		track.Owner,
		track.Title,
		track.Artist,
		track.Album,
		formatTime(track.PlayedAt),
		formatTime(track.CreatedAt),
	)
}

// TrackExists reports whether a base record exists for (id, owner).
func (s *Store) TrackExists(ctx context.Context, owner, id string) (bool, error) {
	ctx = ensureContext(ctx)
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM tracks WHERE id = ? AND owner = ?", id, owner,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query track existence: %w", err)
	}
	return true, nil
}

// RecentTracks returns up to limit rows for the owner ordered by played_at
// descending (ties broken by id descending), left-joined with enrichment.
func (s *Store) RecentTracks(ctx context.Context, owner string, limit int) ([]TrackWithEnrichment, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.owner, t.title, t.artist, t.album, t.played_at, t.created_at,
                e.popularity, e.duration_ms, e.explicit, e.release_date, e.album_type,
                e.genres, e.artist_popularity, e.artist_followers, e.created_at
         FROM tracks t
         LEFT JOIN track_enrichment e ON e.track_id = t.id AND e.owner = t.owner
         WHERE t.owner = ?
         ORDER BY t.played_at DESC, t.id DESC
         LIMIT ?`,
		owner, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent tracks: %w", err)
	}
	defer rows.Close()

	var result []TrackWithEnrichment
	for rows.Next() {
		var (
			row              TrackWithEnrichment
			playedAt         string
			createdAt        string
			popularity       sql.NullInt64
			durationMS       sql.NullInt64
			explicit         sql.NullBool
			releaseDate      sql.NullString
			albumType        sql.NullString
			genres           sql.NullString
			artistPopularity sql.NullFloat64
			artistFollowers  sql.NullInt64
			enrichedAt       sql.NullString
		)
		if err := rows.Scan(
			&row.ID, &row.Owner, &row.Title, &row.Artist, &row.Album, &playedAt, &createdAt,
			&popularity, &durationMS, &explicit, &releaseDate, &albumType,
			&genres, &artistPopularity, &artistFollowers, &enrichedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recent track: %w", err)
		}
		row.PlayedAt = parseTime(playedAt)
		row.CreatedAt = parseTime(createdAt)

		if genres.Valid {
			enrichment := &Enrichment{
				Popularity:       int(popularity.Int64),
				DurationMS:       int(durationMS.Int64),
				Explicit:         explicit.Bool,
				ReleaseDate:      releaseDate.String,
				AlbumType:        albumType.String,
				ArtistPopularity: artistPopularity.Float64,
				ArtistFollowers:  int(artistFollowers.Int64),
				CreatedAt:        parseTime(enrichedAt.String),
			}
			if err := json.Unmarshal([]byte(genres.String), &enrichment.Genres); err != nil {
				return nil, fmt.Errorf("decode genres for track %s: %w", row.ID, err)
			}
			row.Enrichment = enrichment
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent tracks: %w", err)
	}
	return result, nil
}
