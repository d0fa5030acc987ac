package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"connectkit/internal/oauth"
)

// Flow-specific flags
var (
	flowScopes  string
	flowPort    int
	flowTimeout time.Duration
)

// flowCmd represents the flow command
var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Run the full browser authorization flow",
	Long: `Run the complete OAuth authorization code flow: start the local
callback listener, open the provider's authorization page in your
browser, wait for the redirect and exchange the code for tokens.

The resulting tokens are printed along with the environment-file lines
to persist; the credentials file is never modified.

Examples:
  connectkit flow                          # default scopes
  connectkit flow --scopes openid,profile  # specific scopes
  connectkit flow --port 9000              # custom callback port`,
	RunE: runFlow,
}

func init() {
	flowCmd.Flags().StringVar(&flowScopes, "scopes", "", "comma-separated scopes to request")
	flowCmd.Flags().IntVar(&flowPort, "port", 0, "local callback listener port")
	flowCmd.Flags().DurationVar(&flowTimeout, "timeout", 0, "how long to wait for the callback (default 5m)")

	rootCmd.AddCommand(flowCmd)
}

func runFlow(cmd *cobra.Command, args []string) error {
	cfg, creds, err := loadSetup()
	if err != nil {
		return err
	}
	if err := creds.RequireClient(); err != nil {
		return err
	}

	port := flowPort
	if port == 0 {
		port = cfg.CallbackPort
	}
	timeout := flowTimeout
	if timeout == 0 {
		timeout = time.Duration(cfg.CallbackTimeout)
	}
	scopes := parseScopes(flowScopes)
	if scopes == nil {
		scopes = cfg.Scopes
	}

	flow := oauth.NewFlow(oauth.FlowConfig{
		Client:  newOAuthClient(cfg, creds),
		Port:    port,
		Timeout: timeout,
		Scopes:  scopes,
	})

	var s *spinner.Spinner
	flow.OnAuthURL = func(authURL string) {
		fmt.Println("Opening your browser for authorization. If it does not open, visit:")
		fmt.Printf("  %s\n\n", authURL)
		if isTTY() && !verbose {
			s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Suffix = " Waiting for authorization in the browser..."
			s.Start()
		}
	}

	token, err := flow.Run(cmd.Context())
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return fmt.Errorf("%w\nRe-run 'connectkit flow' to try again", err)
	}

	printTokenResult(cmd.OutOrStdout(), token, creds.Path)
	return nil
}
