package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UpsertEnrichment writes derived metadata for (trackID, owner) with replace
// semantics. Writing enrichment for a track that was never ingested fails
// with ErrIntegrity; the foreign key enforces the invariant.
func (s *Store) UpsertEnrichment(ctx context.Context, owner, trackID string, enrichment Enrichment) error {
	if strings.TrimSpace(trackID) == "" {
		return errors.New("track id required")
	}
	if strings.TrimSpace(owner) == "" {
		return errors.New("owner required")
	}

	genres := enrichment.Genres
	if genres == nil {
		genres = []string{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}

	err = s.execWithRetry(ctx,
		`INSERT INTO track_enrichment (
             track_id, owner, popularity, duration_ms, explicit, release_date,
             album_type, genres, artist_popularity, artist_followers, created_at
         ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (track_id, owner) DO UPDATE SET
             popularity = excluded.popularity,
             duration_ms = excluded.duration_ms,
             explicit = excluded.explicit,
             release_date = excluded.release_date,
             album_type = excluded.album_type,
             genres = excluded.genres,
             artist_popularity = excluded.artist_popularity,
             artist_followers = excluded.artist_followers,
             created_at = excluded.created_at`,
		trackID,
		owner,
		enrichment.Popularity,
		enrichment.DurationMS,
		enrichment.Explicit,
		enrichment.ReleaseDate,
		enrichment.AlbumType,
		string(genresJSON),
		enrichment.ArtistPopularity,
		enrichment.ArtistFollowers,
		formatTime(enrichment.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: no track %s for owner %s", ErrIntegrity, trackID, owner)
	}
	return err
}

// EnrichmentExists reports whether derived metadata exists for (trackID, owner).
func (s *Store) EnrichmentExists(ctx context.Context, owner, trackID string) (bool, error) {
	return s.rowExists(ctx, "track_enrichment", owner, trackID)
}

// MissingEnrichmentIDs returns every track lacking a corresponding enrichment
// row. An empty owner scans all owners. Order is deterministic (owner, id).
func (s *Store) MissingEnrichmentIDs(ctx context.Context, owner string) ([]OwnedID, error) {
	return s.missingIDs(ctx, "track_enrichment", owner)
}

// UpsertAudioFeatures writes the legacy acoustic feature row for
// (trackID, owner) with replace semantics and the same integrity invariant as
// UpsertEnrichment.
func (s *Store) UpsertAudioFeatures(ctx context.Context, owner, trackID string, features AudioFeatures) error {
	if strings.TrimSpace(trackID) == "" {
		return errors.New("track id required")
	}
	if strings.TrimSpace(owner) == "" {
		return errors.New("owner required")
	}

	err := s.execWithRetry(ctx,
		`INSERT INTO audio_features (
             track_id, owner, acousticness, danceability, energy, instrumentalness,
             liveness, loudness, speechiness, tempo, valence, mode, key,
             time_signature, duration_ms, created_at
         ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (track_id, owner) DO UPDATE SET
             acousticness = excluded.acousticness,
             danceability = excluded.danceability,
             energy = excluded.energy,
             instrumentalness = excluded.instrumentalness,
             liveness = excluded.liveness,
             loudness = excluded.loudness,
             speechiness = excluded.speechiness,
             tempo = excluded.tempo,
             valence = excluded.valence,
             mode = excluded.mode,
             key = excluded.key,
             time_signature = excluded.time_signature,
             duration_ms = excluded.duration_ms,
             created_at = excluded.created_at`,
		trackID,
		owner,
		features.Acousticness,
		features.Danceability,
		features.Energy,
		features.Instrumentalness,
		features.Liveness,
		features.Loudness,
		features.Speechiness,
		features.Tempo,
		features.Valence,
		features.Mode,
		features.Key,
		features.TimeSignature,
		features.DurationMS,
		formatTime(features.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: no track %s for owner %s", ErrIntegrity, trackID, owner)
	}
	return err
}

// AudioFeaturesExist reports whether a legacy feature row exists for
// (trackID, owner).
func (s *Store) AudioFeaturesExist(ctx context.Context, owner, trackID string) (bool, error) {
	return s.rowExists(ctx, "audio_features", owner, trackID)
}

// MissingAudioFeatureIDs returns every track lacking a legacy feature row. An
// empty owner scans all owners.
func (s *Store) MissingAudioFeatureIDs(ctx context.Context, owner string) ([]OwnedID, error) {
	return s.missingIDs(ctx, "audio_features", owner)
}

func (s *Store) rowExists(ctx context.Context, table, owner, trackID string) (bool, error) {
	ctx = ensureContext(ctx)
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM "+table+" WHERE track_id = ? AND owner = ?", trackID, owner,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query %s existence: %w", table, err)
	}
	return true, nil
}

func (s *Store) missingIDs(ctx context.Context, table, owner string) ([]OwnedID, error) {
	ctx = ensureContext(ctx)

	query := `SELECT t.owner, t.id
              FROM tracks t
              LEFT JOIN ` + table + ` d ON d.track_id = t.id AND d.owner = t.owner
              WHERE d.track_id IS NULL`
	args := []any{}
	if owner != "" {
		query += " AND t.owner = ?"
		args = append(args, owner)
	}
	query += " ORDER BY t.owner, t.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query missing %s: %w", table, err)
	}
	defer rows.Close()

	var ids []OwnedID
	for rows.Next() {
		var id OwnedID
		if err := rows.Scan(&id.Owner, &id.ID); err != nil {
			return nil, fmt.Errorf("scan missing id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate missing ids: %w", err)
	}
	return ids, nil
}
