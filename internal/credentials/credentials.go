// Package credentials loads connector credentials from a flat KEY=VALUE
// environment file. The file is read once into an explicit Credentials
// struct that is threaded into the components that need it; nothing here
// mutates process environment state.
//
// The connector never writes the file back: commands that obtain new
// tokens print the exact lines the user should persist.
package credentials

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"connectkit/internal/oauth"
)

// Environment file keys.
const (
	KeyClientID     = "CLIENT_ID"
	KeyClientSecret = "CLIENT_SECRET"
	KeyAccessToken  = "ACCESS_TOKEN"
	KeyRefreshToken = "REFRESH_TOKEN"

	KeyReplicateAPIToken   = "REPLICATE_API_TOKEN"
	KeyReplicateModel      = "REPLICATE_IMAGE_MODEL"
	KeyReplicateVideoModel = "REPLICATE_VIDEO_MODEL"
)

// DefaultPath is the default environment file location, relative to the
// working directory.
const DefaultPath = ".env"

// Credentials holds everything read from the environment file.
type Credentials struct {
	// ClientID and ClientSecret identify the registered OAuth application.
	ClientID     string
	ClientSecret string

	// AccessToken and RefreshToken are the stored tokens from a previous
	// authorization, if any.
	AccessToken  string
	RefreshToken string

	// ReplicateAPIToken, ReplicateModel and ReplicateVideoModel configure
	// the Replicate connector.
	ReplicateAPIToken   string
	ReplicateModel      string
	ReplicateVideoModel string

	// Path is where the credentials were loaded from.
	Path string
}

// MissingError indicates a required credential is absent from the
// environment file. It is reported before any network call is attempted.
type MissingError struct {
	// Key is the missing environment file key.
	Key string

	// Hint tells the user how to supply the value.
	Hint string
}

// Error implements the error interface.
func (e *MissingError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s is not set: %s", e.Key, e.Hint)
	}
	return fmt.Sprintf("%s is not set", e.Key)
}

// Load reads the environment file at path. A missing file is not an
// error: all fields stay empty and the Require helpers report what is
// absent when a command actually needs it.
func Load(path string) (*Credentials, error) {
	if path == "" {
		path = DefaultPath
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{Path: path}, nil
		}
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	return &Credentials{
		ClientID:          values[KeyClientID],
		ClientSecret:      values[KeyClientSecret],
		AccessToken:       values[KeyAccessToken],
		RefreshToken:      values[KeyRefreshToken],
		ReplicateAPIToken:   values[KeyReplicateAPIToken],
		ReplicateModel:      values[KeyReplicateModel],
		ReplicateVideoModel: values[KeyReplicateVideoModel],
		Path:                path,
	}, nil
}

// RequireClient ensures client id and secret are present.
func (c *Credentials) RequireClient() error {
	if c.ClientID == "" {
		return &MissingError{
			Key:  KeyClientID,
			Hint: fmt.Sprintf("add %s=<your app client id> to %s", KeyClientID, c.Path),
		}
	}
	if c.ClientSecret == "" {
		return &MissingError{
			Key:  KeyClientSecret,
			Hint: fmt.Sprintf("add %s=<your app client secret> to %s", KeyClientSecret, c.Path),
		}
	}
	return nil
}

// RequireAccessToken ensures a stored access token is present.
func (c *Credentials) RequireAccessToken() error {
	if c.AccessToken == "" {
		return &MissingError{
			Key:  KeyAccessToken,
			Hint: "run 'connectkit flow' to obtain tokens",
		}
	}
	return nil
}

// RequireRefreshToken ensures a stored refresh token is present.
func (c *Credentials) RequireRefreshToken() error {
	if c.RefreshToken == "" {
		return &MissingError{
			Key:  KeyRefreshToken,
			Hint: "run 'connectkit flow' to obtain tokens",
		}
	}
	return nil
}

// RequireReplicate ensures the Replicate API token is present.
func (c *Credentials) RequireReplicate() error {
	if c.ReplicateAPIToken == "" {
		return &MissingError{
			Key:  KeyReplicateAPIToken,
			Hint: fmt.Sprintf("add %s=<your api token> to %s", KeyReplicateAPIToken, c.Path),
		}
	}
	return nil
}

// EnvLines renders the environment file lines the user should persist
// after a successful exchange or refresh.
func EnvLines(token *oauth.TokenResponse) []string {
	lines := []string{
		fmt.Sprintf("%s=%s", KeyAccessToken, token.AccessToken),
	}
	if token.RefreshToken != "" {
		lines = append(lines, fmt.Sprintf("%s=%s", KeyRefreshToken, token.RefreshToken))
	}
	return lines
}
