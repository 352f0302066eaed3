package enrichment

import (
	"context"
	"log/slog"
	"strings"

	"replay/internal/logging"
	"replay/internal/services/streaming"
)

// Source defines the metadata operations the fetcher consumes. The streaming
// client satisfies it.
type Source interface {
	TracksMetadata(ctx context.Context, ids []string) ([]streaming.TrackMetadata, error)
	ArtistsMetadata(ctx context.Context, ids []string) ([]streaming.ArtistMetadata, error)
	AudioFeatures(ctx context.Context, ids []string) ([]*streaming.AudioFeatures, error)
}

// TrackDetail pairs a track's metadata with its resolved contributors.
// Contributors holds one entry per credited artist; entries left at their
// zero value (beyond the ID) mean the artist lookup did not resolve.
type TrackDetail struct {
	streaming.TrackMetadata
	Contributors []streaming.ArtistMetadata
}

// Result is the explicit best-effort outcome of a batched fetch. Records is a
// subset of the requested ids; SkippedBatches counts request groups dropped
// because of remote failures. Callers must never assume completeness.
type Result struct {
	Records        []TrackDetail
	SkippedBatches int
}

// FeatureResult is the legacy-path equivalent of Result.
type FeatureResult struct {
	Records        []streaming.AudioFeatures
	SkippedBatches int
}

// Options configures a Fetcher. Zero batch sizes fall back to the provider
// request caps.
type Options struct {
	TrackBatchSize   int
	ArtistBatchSize  int
	FeatureBatchSize int
	Logger           *slog.Logger
}

// Fetcher retrieves track metadata in bounded batches, tolerating partial
// failure: a failed batch is skipped and retried on a later sync or backfill,
// never inline.
type Fetcher struct {
	source           Source
	trackBatchSize   int
	artistBatchSize  int
	featureBatchSize int
	logger           *slog.Logger
}

// New constructs a Fetcher over the given metadata source.
func New(source Source, opts Options) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{
		source:           source,
		trackBatchSize:   clampBatchSize(opts.TrackBatchSize, streaming.MaxTrackIDs),
		artistBatchSize:  clampBatchSize(opts.ArtistBatchSize, streaming.MaxArtistIDs),
		featureBatchSize: clampBatchSize(opts.FeatureBatchSize, streaming.MaxFeatureIDs),
		logger:           logger,
	}
}

// FetchEnrichment retrieves full metadata for the given ids. Blank ids are
// dropped and duplicates collapse; output follows API response order within a
// batch and chunk order across batches. The returned error is non-nil only
// when the context ends; remote failures are absorbed into SkippedBatches.
func (f *Fetcher) FetchEnrichment(ctx context.Context, ids []string) (Result, error) {
	var result Result
	for _, batch := range chunkIDs(normalizeIDs(ids), f.trackBatchSize) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		tracks, err := f.source.TracksMetadata(ctx, batch)
		if err != nil {
			result.SkippedBatches++
			f.logger.Warn("metadata batch skipped", "size", len(batch), "error", err)
			continue
		}

		contributors := f.resolveContributors(ctx, tracks)
		for _, track := range tracks {
			detail := TrackDetail{TrackMetadata: track}
			for _, ref := range track.Artists {
				if resolved, ok := contributors[ref.ID]; ok {
					detail.Contributors = append(detail.Contributors, resolved)
				} else {
					detail.Contributors = append(detail.Contributors, streaming.ArtistMetadata{ID: ref.ID})
				}
			}
			result.Records = append(result.Records, detail)
		}
	}
	return result, nil
}

// resolveContributors fetches artist metadata for every artist credited in the
// batch. A failed sub-batch degrades its artists to empty defaults rather than
// failing the primary batch.
func (f *Fetcher) resolveContributors(ctx context.Context, tracks []streaming.TrackMetadata) map[string]streaming.ArtistMetadata {
	var artistIDs []string
	for _, track := range tracks {
		for _, ref := range track.Artists {
			artistIDs = append(artistIDs, ref.ID)
		}
	}

	resolved := make(map[string]streaming.ArtistMetadata)
	for _, batch := range chunkIDs(normalizeIDs(artistIDs), f.artistBatchSize) {
		artists, err := f.source.ArtistsMetadata(ctx, batch)
		if err != nil {
			f.logger.Warn("artist batch skipped", "size", len(batch), "error", err)
			continue
		}
		for _, artist := range artists {
			resolved[artist.ID] = artist
		}
	}
	return resolved
}

// FetchAudioFeatures retrieves the legacy acoustic features for the given ids.
// Null provider entries are dropped; failed batches are skipped and counted.
func (f *Fetcher) FetchAudioFeatures(ctx context.Context, ids []string) (FeatureResult, error) {
	var result FeatureResult
	for _, batch := range chunkIDs(normalizeIDs(ids), f.featureBatchSize) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		features, err := f.source.AudioFeatures(ctx, batch)
		if err != nil {
			result.SkippedBatches++
			f.logger.Warn("feature batch skipped", "size", len(batch), "error", err)
			continue
		}
		for _, entry := range features {
			if entry != nil {
				result.Records = append(result.Records, *entry)
			}
		}
	}
	return result, nil
}

func clampBatchSize(size, max int) int {
	if size <= 0 || size > max {
		return max
	}
	return size
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	normalized := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}
	return normalized
}

func chunkIDs(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
