package oauth

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultScopes is the minimal scope set requested when the user does not
// ask for specific scopes.
var DefaultScopes = []string{"openid", "profile", "email", "w_member_social"}

// AuthorizationRequest describes a single authorization attempt. It is
// created when the flow starts, consumed once when the callback fires,
// and never persisted.
type AuthorizationRequest struct {
	// Scopes are the requested permission scopes.
	Scopes []string

	// State is the random nonce linking the callback to this request.
	State string

	// RedirectURI is the local callback URL. It must match the listener's
	// bound address exactly, and the same value must be presented again
	// during code exchange.
	RedirectURI string

	// CreatedAt is when the request was built.
	CreatedAt time.Time
}

// NewAuthorizationRequest builds an authorization request with a freshly
// generated state nonce. If scopes is empty, DefaultScopes is used.
func NewAuthorizationRequest(scopes []string, redirectURI string) (*AuthorizationRequest, error) {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	state, err := GenerateState()
	if err != nil {
		return nil, err
	}

	return &AuthorizationRequest{
		Scopes:      scopes,
		State:       state,
		RedirectURI: redirectURI,
		CreatedAt:   time.Now(),
	}, nil
}

// URL constructs the provider authorization endpoint URL for this request.
// The result is a pure function of the request plus the endpoint and
// client id: response_type=code, client_id, redirect_uri, space-joined
// scope and the state nonce.
func (r *AuthorizationRequest) URL(authorizationEndpoint, clientID string) (string, error) {
	u, err := url.Parse(authorizationEndpoint)
	if err != nil {
		return "", fmt.Errorf("invalid authorization endpoint: %w", err)
	}

	params := url.Values{
		"response_type": {"code"},
		"client_id":     {clientID},
		"redirect_uri":  {r.RedirectURI},
		"scope":         {strings.Join(r.Scopes, " ")},
		"state":         {r.State},
	}

	u.RawQuery = params.Encode()
	return u.String(), nil
}
