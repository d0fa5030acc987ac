package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the access token",
	Long: `Renew the access token using the refresh token stored in the
credentials file. No browser interaction is required.

Requires REFRESH_TOKEN to be present; run 'connectkit flow' first if it
is not.`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, creds, err := loadSetup()
	if err != nil {
		return err
	}
	if err := creds.RequireClient(); err != nil {
		return err
	}
	if err := creds.RequireRefreshToken(); err != nil {
		return err
	}

	token, err := newOAuthClient(cfg, creds).Refresh(cmd.Context(), creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("%w\nIf the refresh token has expired, re-run 'connectkit flow'", err)
	}

	printTokenResult(cmd.OutOrStdout(), token, creds.Path)
	return nil
}
