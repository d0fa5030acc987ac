package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show credential and token status",
	Long: `Show which credentials and tokens are present in the environment
file. With --verbose, the stored access token is additionally verified
against the provider's userinfo endpoint.

Examples:
  connectkit status            # local check only
  connectkit status --verbose  # verify the token against the live API`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, creds, err := loadSetup()
	if err != nil {
		return err
	}

	statusSet := text.FgGreen.Sprint("set")
	statusMissing := text.FgYellow.Sprint("missing")

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Credential", "Status", "Value"})

	appendRow := func(name, value, display string) {
		if value == "" {
			t.AppendRow(table.Row{name, statusMissing, ""})
			return
		}
		t.AppendRow(table.Row{name, statusSet, display})
	}

	appendRow("Client ID", creds.ClientID, creds.ClientID)
	appendRow("Client secret", creds.ClientSecret, "(hidden)")
	appendRow("Access token", creds.AccessToken, truncateToken(creds.AccessToken))
	appendRow("Refresh token", creds.RefreshToken, truncateToken(creds.RefreshToken))
	appendRow("Replicate token", creds.ReplicateAPIToken, truncateToken(creds.ReplicateAPIToken))

	fmt.Printf("Credentials file: %s\n\n", creds.Path)
	t.Render()

	if creds.AccessToken == "" {
		fmt.Println("\nNo access token stored. Run: connectkit flow")
		return nil
	}

	if !verbose {
		fmt.Println("\nRun with --verbose to verify the access token against the live API.")
		return nil
	}

	info, err := newOAuthClient(cfg, creds).GetUserinfo(cmd.Context(), creds.AccessToken)
	if err != nil {
		fmt.Printf("\nToken verification: %s\n  %v\n", text.FgRed.Sprint("failed"), err)
		fmt.Println("  Run 'connectkit refresh' or 'connectkit flow' to obtain a new token.")
		return nil
	}

	fmt.Printf("\nToken verification: %s\n", text.FgGreen.Sprint("ok"))
	fmt.Printf("  Subject: %s\n", info.Sub)
	if info.Name != "" {
		fmt.Printf("  Name:    %s\n", info.Name)
	}
	if info.Email != "" {
		fmt.Printf("  Email:   %s\n", info.Email)
	}
	return nil
}
