package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"replay/internal/config"
	"replay/internal/store"
	"replay/internal/syncer"
)

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	var features bool
	var allOwners bool

	cmd := &cobra.Command{
		Use:   "backfill [owner]",
		Short: "Repair enrichment gaps left by failed batches",
		Long: `Scan the store for tracks without metadata, irrespective of how recently
they were played, and fetch it. With --all the scan covers every owner.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(func(cfg *config.Config, st *store.Store, orchestrator *syncer.Orchestrator) error {
				owner := ""
				if !allOwners {
					resolved, err := ctx.resolveOwner(cfg, args)
					if err != nil {
						return err
					}
					owner = resolved
				} else if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
					return fmt.Errorf("--all and an explicit owner are mutually exclusive")
				}

				run := orchestrator.Backfill
				if features {
					run = orchestrator.BackfillFeatures
				}
				result, err := run(cmd.Context(), owner)
				if err != nil {
					return err
				}

				scope := owner
				if scope == "" {
					scope = "all owners"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backfill for %s: %d missing, %d enriched, %d batches skipped\n",
					scope, result.Missing, result.Enriched, result.SkippedBatches)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&features, "features", false, "Repair the legacy audio-features table instead of metadata")
	cmd.Flags().BoolVar(&allOwners, "all", false, "Scan every owner")
	return cmd
}
