package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"connectkit/internal/config"
	"connectkit/internal/credentials"
	"connectkit/internal/oauth"
)

// tokenPrefixLen is how many characters of a token are shown in output.
const tokenPrefixLen = 12

// loadSetup loads the config file and the credentials env file according
// to the persistent flags.
func loadSetup() (config.Config, *credentials.Credentials, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, err
	}

	creds, err := credentials.Load(envFile)
	if err != nil {
		return config.Config{}, nil, err
	}

	return cfg, creds, nil
}

// newOAuthClient builds the token client from config and credentials.
func newOAuthClient(cfg config.Config, creds *credentials.Credentials) *oauth.Client {
	return oauth.NewClient(oauth.ClientConfig{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoints:    cfg.OAuthEndpoints(),
	})
}

// parseScopes splits a comma-separated scope list, dropping empty
// entries. An empty input returns nil so defaults apply downstream.
func parseScopes(raw string) []string {
	if raw == "" {
		return nil
	}

	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// truncateToken returns a display-safe token prefix.
func truncateToken(token string) string {
	if len(token) <= tokenPrefixLen {
		return token
	}
	return token[:tokenPrefixLen] + "..."
}

// printTokenResult prints the token summary (truncated for display) and
// the exact environment-file lines the user should persist. The absolute
// expiry comes from the oauth2 token conversion.
func printTokenResult(w io.Writer, token *oauth.TokenResponse, credsPath string) {
	tok := token.Token()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Access token:  %s\n", truncateToken(token.AccessToken))
	fmt.Fprintf(w, "Token type:    %s\n", token.TokenType)
	fmt.Fprintf(w, "Expires in:    %ds (until %s)\n", token.ExpiresIn, tok.Expiry.Format(time.RFC3339))
	if token.RefreshToken != "" {
		fmt.Fprintf(w, "Refresh token: %s\n", truncateToken(token.RefreshToken))
		if token.RefreshTokenExpiresIn > 0 {
			fmt.Fprintf(w, "Refresh expires in: %ds\n", token.RefreshTokenExpiresIn)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Add these lines to %s:\n\n", credsPath)
	for _, line := range credentials.EnvLines(token) {
		fmt.Fprintln(w, line)
	}
}

// isTTY reports whether stderr is an interactive terminal. Spinners are
// suppressed when it is not.
func isTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
