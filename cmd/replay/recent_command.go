package main

import (
	"github.com/spf13/cobra"

	"replay/internal/config"
	"replay/internal/store"
)

func newRecentCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent [owner]",
		Short: "Show the owner's most recent tracks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				owner, err := ctx.resolveOwner(cfg, args)
				if err != nil {
					return err
				}
				tracks, err := st.RecentTracks(cmd.Context(), owner, ctx.resolveLimit(cfg, owner, limit))
				if err != nil {
					return err
				}
				printTracks(cmd.OutOrStdout(), tracks)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of tracks to show (default: user preference, then config)")
	return cmd
}
