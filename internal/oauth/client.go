package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Default LinkedIn endpoints. Overridable through ClientConfig for other
// providers and for tests.
const (
	DefaultAuthorizationEndpoint = "https://www.linkedin.com/oauth/v2/authorization"
	DefaultTokenEndpoint         = "https://www.linkedin.com/oauth/v2/accessToken"
	DefaultUserinfoEndpoint      = "https://api.linkedin.com/v2/userinfo"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
const DefaultHTTPTimeout = 30 * time.Second

// Endpoints holds the provider endpoint URLs used by the client.
type Endpoints struct {
	Authorization string
	Token         string
	Userinfo      string
}

// DefaultEndpoints returns the LinkedIn endpoint set.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Authorization: DefaultAuthorizationEndpoint,
		Token:         DefaultTokenEndpoint,
		Userinfo:      DefaultUserinfoEndpoint,
	}
}

// TokenResponse is the decoded token endpoint response. It exists for the
// lifetime of one exchange or refresh call; the caller is responsible for
// persisting it.
type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type"`
	ExpiresIn             int    `json:"expires_in"`
	RefreshToken          string `json:"refresh_token,omitempty"`
	RefreshTokenExpiresIn int    `json:"refresh_token_expires_in,omitempty"`
	Scope                 string `json:"scope,omitempty"`
}

// Token converts the response to an oauth2.Token with an absolute expiry.
func (t *TokenResponse) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
	}
	if t.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok
}

// Userinfo is the OpenID Connect userinfo response subset used by the
// status diagnostic.
type Userinfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// Client performs token exchange and refresh against the provider's token
// endpoint. Credentials are threaded in explicitly; nothing is read from
// ambient environment state.
type Client struct {
	httpClient   *http.Client
	endpoints    Endpoints
	clientID     string
	clientSecret string
}

// ClientConfig configures the token client.
type ClientConfig struct {
	// ClientID and ClientSecret identify the registered application.
	ClientID     string
	ClientSecret string

	// Endpoints overrides the provider endpoints. Zero values fall back
	// to the LinkedIn defaults.
	Endpoints Endpoints

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
}

// NewClient creates a token client with the specified configuration.
func NewClient(cfg ClientConfig) *Client {
	endpoints := cfg.Endpoints
	if endpoints.Authorization == "" {
		endpoints.Authorization = DefaultAuthorizationEndpoint
	}
	if endpoints.Token == "" {
		endpoints.Token = DefaultTokenEndpoint
	}
	if endpoints.Userinfo == "" {
		endpoints.Userinfo = DefaultUserinfoEndpoint
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	return &Client{
		httpClient:   httpClient,
		endpoints:    endpoints,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

// Endpoints returns the endpoint set the client was configured with.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// AuthorizationURL builds the authorization endpoint URL for the request.
func (c *Client) AuthorizationURL(req *AuthorizationRequest) (string, error) {
	return req.URL(c.endpoints.Authorization, c.clientID)
}

// Exchange converts an authorization code into a token pair. The redirect
// URI must match the one used to obtain the code; providers enforce this
// and answer with a RejectionError otherwise.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}

	return c.postToken(ctx, "exchange", data)
}

// Refresh renews the access token using a previously stored refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}

	return c.postToken(ctx, "refresh", data)
}

// postToken performs a form-encoded POST to the token endpoint and maps
// failures onto the typed error taxonomy. A single failed call is
// terminal; no retries are performed.
func (c *Client) postToken(ctx context.Context, op string, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.Token, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rejection := &RejectionError{Op: op, StatusCode: resp.StatusCode}
		var errResp struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil {
			rejection.Code = errResp.Error
			rejection.Description = errResp.ErrorDescription
		}
		slog.Debug("token endpoint rejected request",
			"op", op,
			"status", resp.StatusCode,
			"error", rejection.Code,
		)
		return nil, rejection
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response contains no access token")
	}
	if tokenResp.ExpiresIn <= 0 {
		return nil, fmt.Errorf("token response has non-positive expires_in: %d", tokenResp.ExpiresIn)
	}

	return &tokenResp, nil
}

// GetUserinfo fetches the OpenID userinfo document with the given access
// token. Used by the status diagnostic to verify a stored token against
// the live API.
func (c *Client) GetUserinfo(ctx context.Context, accessToken string) (*Userinfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Userinfo, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "userinfo", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "userinfo", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		rejection := &RejectionError{Op: "userinfo", StatusCode: resp.StatusCode}
		var errResp struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
			Message          string `json:"message"`
		}
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil {
			rejection.Code = errResp.Error
			if rejection.Description = errResp.ErrorDescription; rejection.Description == "" {
				rejection.Description = errResp.Message
			}
		}
		return nil, rejection
	}

	var info Userinfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	return &info, nil
}
