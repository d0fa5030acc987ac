package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"connectkit/internal/oauth"
)

// Exchange-specific flags
var exchangePort int

// exchangeCmd represents the exchange command
var exchangeCmd = &cobra.Command{
	Use:   "exchange <code>",
	Short: "Exchange an authorization code for tokens",
	Long: `Exchange an authorization code (obtained via 'connectkit url' and a
manual browser visit) for an access/refresh token pair.

The redirect URI sent with the exchange must match the one embedded in
the authorization URL, so pass the same --port value used there.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("missing required argument: authorization code\nUsage: connectkit exchange <code>")
		}
		return nil
	},
	RunE: runExchange,
}

func init() {
	exchangeCmd.Flags().IntVar(&exchangePort, "port", 0, "callback port used when the code was obtained")

	rootCmd.AddCommand(exchangeCmd)
}

func runExchange(cmd *cobra.Command, args []string) error {
	cfg, creds, err := loadSetup()
	if err != nil {
		return err
	}
	if err := creds.RequireClient(); err != nil {
		return err
	}

	port := exchangePort
	if port == 0 {
		port = cfg.CallbackPort
	}
	redirectURI := fmt.Sprintf("http://localhost:%d%s", port, oauth.CallbackPath)

	token, err := newOAuthClient(cfg, creds).Exchange(cmd.Context(), args[0], redirectURI)
	if err != nil {
		return fmt.Errorf("%w\nAuthorization codes are single-use and short-lived; re-run 'connectkit flow' to obtain a fresh one", err)
	}

	printTokenResult(cmd.OutOrStdout(), token, creds.Path)
	return nil
}
