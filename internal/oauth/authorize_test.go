package oauth

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthorizationRequest_Defaults(t *testing.T) {
	req, err := NewAuthorizationRequest(nil, "http://localhost:8914/callback")
	require.NoError(t, err)

	assert.Equal(t, DefaultScopes, req.Scopes)
	assert.Equal(t, "http://localhost:8914/callback", req.RedirectURI)
	assert.NotEmpty(t, req.State)
	assert.GreaterOrEqual(t, len(req.State), 32, "state should satisfy 32-char minimums")
}

func TestAuthorizationRequest_URL(t *testing.T) {
	req := &AuthorizationRequest{
		Scopes:      []string{"openid", "profile"},
		State:       "fixed-state",
		RedirectURI: "http://localhost:8914/callback",
	}

	raw, err := req.URL(DefaultAuthorizationEndpoint, "client-123")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "client-123", query.Get("client_id"))
	assert.Equal(t, "http://localhost:8914/callback", query.Get("redirect_uri"))
	assert.Equal(t, "openid profile", query.Get("scope"))
	assert.Equal(t, "fixed-state", query.Get("state"))
}

func TestAuthorizationRequest_URL_StableExceptState(t *testing.T) {
	scopes := []string{"openid", "profile"}
	redirectURI := "http://localhost:8914/callback"

	req1, err := NewAuthorizationRequest(scopes, redirectURI)
	require.NoError(t, err)
	req2, err := NewAuthorizationRequest(scopes, redirectURI)
	require.NoError(t, err)

	assert.NotEqual(t, req1.State, req2.State, "state must differ across requests")

	url1, err := req1.URL(DefaultAuthorizationEndpoint, "client-123")
	require.NoError(t, err)
	url2, err := req2.URL(DefaultAuthorizationEndpoint, "client-123")
	require.NoError(t, err)

	parsed1, err := url.Parse(url1)
	require.NoError(t, err)
	parsed2, err := url.Parse(url2)
	require.NoError(t, err)

	query1 := parsed1.Query()
	query2 := parsed2.Query()

	// Everything but the state nonce must be identical.
	assert.NotEqual(t, query1.Get("state"), query2.Get("state"))
	query1.Del("state")
	query2.Del("state")
	assert.Equal(t, query1, query2)
	assert.Equal(t, parsed1.Host, parsed2.Host)
	assert.Equal(t, parsed1.Path, parsed2.Path)
}

func TestAuthorizationRequest_URL_InvalidEndpoint(t *testing.T) {
	req := &AuthorizationRequest{
		Scopes:      []string{"openid"},
		State:       "s",
		RedirectURI: "http://localhost:8914/callback",
	}

	_, err := req.URL("://not-a-url", "client-123")
	assert.Error(t, err)
}

func TestGenerateState_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		state, err := GenerateState()
		require.NoError(t, err)
		require.False(t, seen[state], "duplicate state generated")
		seen[state] = true
	}
}
