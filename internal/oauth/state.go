package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// stateBytes is the number of random bytes for the state parameter.
// 32 bytes encodes to 43 base64url characters, satisfying providers that
// require a minimum of 32 characters.
const stateBytes = 32

// GenerateState generates a random state parameter for an authorization
// request. The state links the callback back to the original request and
// prevents CSRF on the redirect; the flow rejects callbacks whose state
// does not match.
//
// Returns a base64url-encoded random string.
func GenerateState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
