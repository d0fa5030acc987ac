package cmd

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectkit/internal/credentials"
	"connectkit/internal/oauth"
)

func TestParseScopes(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty returns nil for defaults",
			input:    "",
			expected: nil,
		},
		{
			name:     "single scope",
			input:    "openid",
			expected: []string{"openid"},
		},
		{
			name:     "comma separated",
			input:    "openid,profile,email",
			expected: []string{"openid", "profile", "email"},
		},
		{
			name:     "whitespace trimmed",
			input:    " openid , profile ",
			expected: []string{"openid", "profile"},
		},
		{
			name:     "empty entries dropped",
			input:    "openid,,profile,",
			expected: []string{"openid", "profile"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseScopes(tc.input))
		})
	}
}

func TestTruncateToken(t *testing.T) {
	assert.Equal(t, "short", truncateToken("short"))
	assert.Equal(t, "AQVxxxxxxxxx...", truncateToken("AQVxxxxxxxxxyyyyyyyyzzzzzzzz"))
	assert.Equal(t, "exactlytwelv", truncateToken("exactlytwelv"))
}

func TestPrintTokenResult(t *testing.T) {
	token := &oauth.TokenResponse{
		AccessToken:           "tok_aaaaaaaaaaaaaaaa",
		TokenType:             "Bearer",
		ExpiresIn:             3600,
		RefreshToken:          "refresh_1",
		RefreshTokenExpiresIn: 31536000,
	}

	var buf bytes.Buffer
	printTokenResult(&buf, token, ".env")
	out := buf.String()

	assert.Contains(t, out, "Access token:  tok_aaaaaaaa...")
	assert.Contains(t, out, "Token type:    Bearer")
	assert.Contains(t, out, "ACCESS_TOKEN=tok_aaaaaaaaaaaaaaaa")
	assert.Contains(t, out, "REFRESH_TOKEN=refresh_1")

	// The absolute expiry printed must line up with expires_in.
	m := regexp.MustCompile(`until ([0-9TZ:+-]+)\)`).FindStringSubmatch(out)
	require.Len(t, m, 2, "output should contain an absolute expiry: %s", out)
	expiry, err := time.Parse(time.RFC3339, m[1])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)
}

func TestEnvLinesForTokenResult(t *testing.T) {
	token := &oauth.TokenResponse{
		AccessToken:  "tok_1",
		RefreshToken: "refresh_1",
	}

	lines := credentials.EnvLines(token)
	assert.Equal(t, []string{"ACCESS_TOKEN=tok_1", "REFRESH_TOKEN=refresh_1"}, lines)
}
