package enrichment

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"replay/internal/services/streaming"
	"replay/internal/store"
)

// Aggregate flattens a track's metadata and contributor details into the
// store's enrichment row.
//
// Genres are the union across contributors, case-fold de-duplicated and
// sorted. Artist popularity is the mean over contributors with a positive
// score, zero when none qualify. Follower counts sum with missing treated as
// zero. Scalar fields absent from the payload keep their zero values; an
// absence never propagates as a missing column.
func Aggregate(detail TrackDetail) store.Enrichment {
	fold := cases.Fold()

	seen := make(map[string]struct{})
	genres := make([]string, 0)
	var popularitySum, popularityCount, followers int
	for _, contributor := range detail.Contributors {
		for _, genre := range contributor.Genres {
			folded := fold.String(strings.TrimSpace(genre))
			if folded == "" {
				continue
			}
			if _, ok := seen[folded]; ok {
				continue
			}
			seen[folded] = struct{}{}
			genres = append(genres, folded)
		}
		if contributor.Popularity > 0 {
			popularitySum += contributor.Popularity
			popularityCount++
		}
		followers += contributor.Followers.Total
	}
	sort.Strings(genres)

	var popularityAvg float64
	if popularityCount > 0 {
		popularityAvg = float64(popularitySum) / float64(popularityCount)
	}

	return store.Enrichment{
		Popularity:       detail.Popularity,
		DurationMS:       detail.DurationMS,
		Explicit:         detail.Explicit,
		ReleaseDate:      detail.ReleaseDate(),
		AlbumType:        detail.AlbumType(),
		Genres:           genres,
		ArtistPopularity: popularityAvg,
		ArtistFollowers:  followers,
	}
}

// FeaturesRow converts the legacy provider payload into the store's feature
// row.
func FeaturesRow(features streaming.AudioFeatures) store.AudioFeatures {
	return store.AudioFeatures{
		Acousticness:     features.Acousticness,
		Danceability:     features.Danceability,
		Energy:           features.Energy,
		Instrumentalness: features.Instrumentalness,
		Liveness:         features.Liveness,
		Loudness:         features.Loudness,
		Speechiness:      features.Speechiness,
		Tempo:            features.Tempo,
		Valence:          features.Valence,
		Mode:             features.Mode,
		Key:              features.Key,
		TimeSignature:    features.TimeSignature,
		DurationMS:       features.DurationMS,
	}
}
