package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"replay/internal/config"
	"replay/internal/store"
	"replay/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var features bool

	cmd := &cobra.Command{
		Use:   "sync [owner]",
		Short: "Pull recent playback and enrich new tracks",
		Long: `Pull the most recent playback events from the streaming service, record
them under the owner, and fetch metadata for tracks that lack it. Tracks
whose metadata batch fails are skipped and picked up by a later sync or
backfill.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(func(cfg *config.Config, st *store.Store, orchestrator *syncer.Orchestrator) error {
				owner, err := ctx.resolveOwner(cfg, args)
				if err != nil {
					return err
				}
				pullLimit := ctx.resolveLimit(cfg, owner, limit)

				run := orchestrator.Sync
				if features {
					run = orchestrator.SyncFeatures
				}
				result, err := run(cmd.Context(), owner, pullLimit)
				if err != nil {
					return err
				}
				ctx.touchLastActive(cfg, owner)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Synced %d plays for %s: %d enriched, %d batches skipped\n",
					result.Fetched, owner, result.Enriched, result.SkippedBatches)
				printTracks(out, result.Tracks)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of plays to pull (default: user preference, then config)")
	cmd.Flags().BoolVar(&features, "features", false, "Fill the legacy audio-features table instead of metadata")
	return cmd
}
