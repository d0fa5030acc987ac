package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"connectkit/internal/oauth"
)

// URL-specific flags
var (
	urlScopes string
	urlPort   int
)

// urlCmd represents the url command
var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the authorization URL without starting the flow",
	Long: `Build and print the provider authorization URL for the requested
scopes. No listener is started and no browser is opened; this is useful
for authorizing from another machine.

The embedded state nonce is freshly generated on every invocation.`,
	RunE: runURL,
}

func init() {
	urlCmd.Flags().StringVar(&urlScopes, "scopes", "", "comma-separated scopes to request")
	urlCmd.Flags().IntVar(&urlPort, "port", 0, "callback port embedded in the redirect URI")

	rootCmd.AddCommand(urlCmd)
}

func runURL(cmd *cobra.Command, args []string) error {
	cfg, creds, err := loadSetup()
	if err != nil {
		return err
	}
	if err := creds.RequireClient(); err != nil {
		return err
	}

	port := urlPort
	if port == 0 {
		port = cfg.CallbackPort
	}
	scopes := parseScopes(urlScopes)
	if scopes == nil {
		scopes = cfg.Scopes
	}

	redirectURI := fmt.Sprintf("http://localhost:%d%s", port, oauth.CallbackPath)
	request, err := oauth.NewAuthorizationRequest(scopes, redirectURI)
	if err != nil {
		return err
	}

	authURL, err := newOAuthClient(cfg, creds).AuthorizationURL(request)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), authURL)
	return nil
}
