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
	"replay/internal/store"
)

// SyncFeatures is the legacy alternate of Sync: it ingests the recent feed
// and fills gaps in the acoustic-feature table instead of the metadata one.
func (o *Orchestrator) SyncFeatures(ctx context.Context, owner string, limit int) (SyncResult, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return SyncResult{}, errors.New("owner required")
	}
	if limit <= 0 {
		return SyncResult{}, errors.New("limit must be positive")
	}
	logger := o.logger.With("run_id", uuid.NewString(), "owner", owner, "mode", "features")

	played, err := o.activity.RecentlyPlayed(ctx, limit)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch recent activity: %w", err)
	}

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
		exists, err := o.store.AudioFeaturesExist(ctx, owner, item.ID)
		if err != nil {
			return SyncResult{}, fmt.Errorf("check features for %s: %w", item.ID, err)
		}
		if !exists {
			pending = append(pending, item.ID)
		}
	}

	result := SyncResult{Fetched: len(played)}
	if len(pending) > 0 {
		saved, skipped, err := o.enrichFeatures(ctx, logger, singleOwner(owner, pending))
		if err != nil {
			return SyncResult{}, err
		}
		result.Enriched = saved
		result.SkippedBatches = skipped
	}

	tracks, err := o.store.RecentTracks(ctx, owner, limit)
	if err != nil {
		return SyncResult{}, fmt.Errorf("read back recent tracks: %w", err)
	}
	result.Tracks = tracks

	logger.Info("feature sync complete",
		"fetched", result.Fetched,
		"enriched", result.Enriched,
		"skipped_batches", result.SkippedBatches)
	return result, nil
}

// BackfillFeatures repairs acoustic-feature gaps across the whole store. An
// empty owner scans every owner.
func (o *Orchestrator) BackfillFeatures(ctx context.Context, owner string) (BackfillResult, error) {
	logger := o.logger.With("run_id", uuid.NewString(), "owner", owner, "mode", "features")

	missing, err := o.store.MissingAudioFeatureIDs(ctx, owner)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("scan for feature gaps: %w", err)
	}
	result := BackfillResult{Missing: len(missing)}
	if len(missing) == 0 {
		return result, nil
	}

	saved, skipped, err := o.enrichFeatures(ctx, logger, missing)
	if err != nil {
		return BackfillResult{}, err
	}
	result.Enriched = saved
	result.SkippedBatches = skipped

	logger.Info("feature backfill complete",
		"missing", result.Missing,
		"enriched", result.Enriched,
		"skipped_batches", result.SkippedBatches)
	return result, nil
}

func (o *Orchestrator) enrichFeatures(ctx context.Context, logger *slog.Logger, pending []store.OwnedID) (int, int, error) {
	owners, ids := groupPending(pending)

	fetched, err := o.fetcher.FetchAudioFeatures(ctx, ids)
	if err != nil {
		return 0, fetched.SkippedBatches, err
	}

	saved := 0
	for _, record := range fetched.Records {
		row := enrichment.FeaturesRow(record)
		for _, owner := range owners[record.ID] {
			if err := o.store.UpsertAudioFeatures(ctx, owner, record.ID, row); err != nil {
				return saved, fetched.SkippedBatches, fmt.Errorf("save features for %s: %w", record.ID, err)
			}
			saved++
		}
	}
	return saved, fetched.SkippedBatches, nil
}
