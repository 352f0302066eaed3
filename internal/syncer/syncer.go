package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"replay/internal/enrichment"
	"replay/internal/logging"
	"replay/internal/services/streaming"
	"replay/internal/store"
)

// ActivitySource supplies the recently-played feed. The streaming client
// satisfies it.
type ActivitySource interface {
	RecentlyPlayed(ctx context.Context, limit int) ([]streaming.PlayedTrack, error)
}

// Orchestrator reconciles the remote recently-played feed with the local
// store and fills enrichment gaps through the batch fetcher.
type Orchestrator struct {
	store    *store.Store
	activity ActivitySource
	fetcher  *enrichment.Fetcher
	logger   *slog.Logger
}

// SyncResult reports one sync run. Tracks is the joined read-back view after
// the run; SkippedBatches counts enrichment batches dropped by remote
// failures, whose ids stay un-enriched until a later run.
type SyncResult struct {
	Tracks         []store.TrackWithEnrichment
	Fetched        int
	Enriched       int
	SkippedBatches int
}

// BackfillResult reports a full-store repair scan.
type BackfillResult struct {
	Missing        int
	Enriched       int
	SkippedBatches int
}

// New constructs an Orchestrator. A nil logger falls back to a no-op.
func New(st *store.Store, activity ActivitySource, fetcher *enrichment.Fetcher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{store: st, activity: activity, fetcher: fetcher, logger: logger}
}

// Sync pulls up to limit recent playback events for owner, upserts them,
// enriches the subset without derived data, and returns the joined view of
// the owner's most recent tracks.
//
// A failure pulling the feed aborts with nothing written. Failures inside the
// enrichment step never abort the call; their ids are retried on the next
// Sync or Backfill.
func (o *Orchestrator) Sync(ctx context.Context, owner string, limit int) (SyncResult, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return SyncResult{}, errors.New("owner required")
	}
	if limit <= 0 {
		return SyncResult{}, errors.New("limit must be positive")
	}
	logger := o.logger.With("run_id", uuid.NewString(), "owner", owner)

	played, err := o.activity.RecentlyPlayed(ctx, limit)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch recent activity: %w", err)
	}
	logger.Debug("recent activity fetched", "count", len(played))

	now := time.Now().UTC()
	for _, item := range played {
		track := store.Track{
			ID:        item.ID,
			Owner:     owner,
			Title:     item.Title,
			Artist:    item.Artist,
			Album:     item.Album,
			PlayedAt:  item.PlayedAt,
			CreatedAt: now,
		}
		if err := o.store.UpsertTrack(ctx, track); err != nil {
			return SyncResult{}, fmt.Errorf("upsert track %s: %w", item.ID, err)
		}
	}

	var pending []string
	for _, item := range played {
		enriched, err := o.store.EnrichmentExists(ctx, owner, item.ID)
		if err != nil {
			return SyncResult{}, fmt.Errorf("check enrichment for %s: %w", item.ID, err)
		}
		if !enriched {
			pending = append(pending, item.ID)
		}
	}

	result := SyncResult{Fetched: len(played)}
	if len(pending) > 0 {
		enriched, skipped, err := o.enrich(ctx, logger, singleOwner(owner, pending))
		if err != nil {
			return SyncResult{}, err
		}
		result.Enriched = enriched
		result.SkippedBatches = skipped
	}

	tracks, err := o.store.RecentTracks(ctx, owner, limit)
	if err != nil {
		return SyncResult{}, fmt.Errorf("read back recent tracks: %w", err)
	}
	result.Tracks = tracks

	logger.Info("sync complete",
		"fetched", result.Fetched,
		"enriched", result.Enriched,
		"skipped_batches", result.SkippedBatches)
	return result, nil
}

// Backfill scans the whole store for tracks lacking enrichment, irrespective
// of recency, and repairs the gaps. An empty owner scans every owner.
func (o *Orchestrator) Backfill(ctx context.Context, owner string) (BackfillResult, error) {
	logger := o.logger.With("run_id", uuid.NewString(), "owner", owner)

	missing, err := o.store.MissingEnrichmentIDs(ctx, owner)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("scan for enrichment gaps: %w", err)
	}
	result := BackfillResult{Missing: len(missing)}
	if len(missing) == 0 {
		return result, nil
	}
	logger.Info("backfill scan", "missing", len(missing))

	enriched, skipped, err := o.enrich(ctx, logger, missing)
	if err != nil {
		return BackfillResult{}, err
	}
	result.Enriched = enriched
	result.SkippedBatches = skipped

	logger.Info("backfill complete",
		"missing", result.Missing,
		"enriched", result.Enriched,
		"skipped_batches", result.SkippedBatches)
	return result, nil
}

// enrich fetches metadata for the given track ids and writes the aggregated
// rows under each id's owning owner. The same track id may be pending for
// several owners; one fetch serves them all. Repeated (owner, id) pairs, as
// when the feed carries the same song played twice, collapse to one write.
func (o *Orchestrator) enrich(ctx context.Context, logger *slog.Logger, pending []store.OwnedID) (int, int, error) {
	owners, ids := groupPending(pending)

	fetched, err := o.fetcher.FetchEnrichment(ctx, ids)
	if err != nil {
		return 0, fetched.SkippedBatches, err
	}

	enriched := 0
	for _, record := range fetched.Records {
		row := enrichment.Aggregate(record)
		for _, owner := range owners[record.ID] {
			if err := o.store.UpsertEnrichment(ctx, owner, record.ID, row); err != nil {
				return enriched, fetched.SkippedBatches, fmt.Errorf("save enrichment for %s: %w", record.ID, err)
			}
			enriched++
		}
	}
	return enriched, fetched.SkippedBatches, nil
}

func singleOwner(owner string, ids []string) []store.OwnedID {
	owned := make([]store.OwnedID, 0, len(ids))
	for _, id := range ids {
		owned = append(owned, store.OwnedID{Owner: owner, ID: id})
	}
	return owned
}

// groupPending maps each distinct track id to its owners, dropping repeated
// (owner, id) pairs so a play counted twice is written and reported once.
func groupPending(pending []store.OwnedID) (map[string][]string, []string) {
	owners := make(map[string][]string, len(pending))
	ids := make([]string, 0, len(pending))
	seen := make(map[store.OwnedID]struct{}, len(pending))
	for _, id := range pending {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		owners[id.ID] = append(owners[id.ID], id.Owner)
		ids = append(ids, id.ID)
	}
	return owners, ids
}
