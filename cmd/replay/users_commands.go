package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"replay/internal/users"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the account registry",
	}

	usersCmd.AddCommand(newUsersAddCommand(ctx))
	usersCmd.AddCommand(newUsersRemoveCommand(ctx))
	usersCmd.AddCommand(newUsersListCommand(ctx))
	usersCmd.AddCommand(newUsersShowCommand(ctx))

	return usersCmd
}

func newUsersAddCommand(ctx *commandContext) *cobra.Command {
	var displayName string
	var clientID string
	var clientSecret string
	var refreshToken string
	var trackLimit int

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.registry()
			if err != nil {
				return err
			}

			var preferences *users.Preferences
			if trackLimit > 0 {
				prefs := users.DefaultPreferences()
				prefs.TrackLimit = trackLimit
				preferences = &prefs
			}
			credentials := users.Credentials{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				RefreshToken: refreshToken,
			}
			name := displayName
			if strings.TrimSpace(name) == "" {
				name = args[0]
			}

			profile, err := manager.Add(args[0], name, credentials, preferences)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (track limit %d)\n",
				profile.UserID, profile.Preferences.TrackLimit)
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name (default: the id)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Streaming API client id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "Streaming API client secret")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Streaming API refresh token")
	cmd.Flags().IntVar(&trackLimit, "track-limit", 0, "Per-user sync limit (default 7)")
	return cmd
}

func newUsersRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.registry()
			if err != nil {
				return err
			}
			if err := manager.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newUsersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.registry()
			if err != nil {
				return err
			}
			ids, err := manager.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No users registered.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
}

func newUsersShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.registry()
			if err != nil {
				return err
			}
			profile, err := manager.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:         %s\n", profile.UserID)
			fmt.Fprintf(out, "Display name: %s\n", profile.DisplayName)
			fmt.Fprintf(out, "Track limit:  %d\n", profile.Preferences.TrackLimit)
			fmt.Fprintf(out, "Auto refresh: %s\n", yesNo(profile.Preferences.AutoRefresh))
			fmt.Fprintf(out, "Created:      %s\n", profile.CreatedAt)
			fmt.Fprintf(out, "Last active:  %s\n", profile.LastActive)
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
