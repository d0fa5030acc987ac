package oauth

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlowFixture wires a flow against a mock token endpoint and returns
// both plus an exchange-call counter.
func newFlowFixture(t *testing.T, port int, openURL func(string) error) (*Flow, *atomic.Int32) {
	t.Helper()

	var exchanges atomic.Int32
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok_1",
			"token_type":    "Bearer",
			"expires_in":    5184000,
			"refresh_token": "refresh_1",
		})
	}))
	t.Cleanup(tokenServer.Close)

	client := NewClient(ClientConfig{
		ClientID:     "client-123",
		ClientSecret: "secret-456",
		Endpoints:    Endpoints{Token: tokenServer.URL},
	})

	flow := NewFlow(FlowConfig{
		Client:  client,
		Port:    port,
		Timeout: 5 * time.Second,
		Scopes:  []string{"openid", "profile"},
		OpenURL: openURL,
	})

	return flow, &exchanges
}

// browserStub simulates the user's browser: it parses the authorization
// URL and immediately redirects to the callback with the given query.
func browserStub(t *testing.T, buildQuery func(state, redirectURI string) string) func(string) error {
	t.Helper()

	return func(authURL string) error {
		parsed, err := url.Parse(authURL)
		require.NoError(t, err)

		query := parsed.Query()
		require.Equal(t, "code", query.Get("response_type"))

		state := query.Get("state")
		redirectURI := query.Get("redirect_uri")
		require.NotEmpty(t, state)
		require.NotEmpty(t, redirectURI)

		resp, err := http.Get(redirectURI + "?" + buildQuery(state, redirectURI))
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}
}

func TestFlow_Run_Success(t *testing.T) {
	opener := browserStub(t, func(state, redirectURI string) string {
		return url.Values{"code": {"ABC123"}, "state": {state}}.Encode()
	})

	flow, exchanges := newFlowFixture(t, freePort(t), opener)

	token, err := flow.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok_1", token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, 5184000, token.ExpiresIn)
	assert.Equal(t, FlowStateComplete, flow.State())
	assert.Equal(t, int32(1), exchanges.Load())
}

func TestFlow_Run_UserDenied(t *testing.T) {
	opener := browserStub(t, func(state, redirectURI string) string {
		return url.Values{
			"error":             {"access_denied"},
			"error_description": {"User denied the request"},
		}.Encode()
	})

	flow, exchanges := newFlowFixture(t, freePort(t), opener)

	_, err := flow.Run(context.Background())
	require.Error(t, err)

	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "access_denied", authErr.Code)
	assert.Equal(t, "User denied the request", authErr.Description)

	assert.Equal(t, FlowStateError, flow.State())
	assert.Equal(t, int32(0), exchanges.Load(), "no exchange must be attempted after denial")
}

func TestFlow_Run_StateMismatch(t *testing.T) {
	opener := browserStub(t, func(state, redirectURI string) string {
		return url.Values{"code": {"ABC123"}, "state": {"forged-state"}}.Encode()
	})

	flow, exchanges := newFlowFixture(t, freePort(t), opener)

	_, err := flow.Run(context.Background())
	require.ErrorIs(t, err, ErrStateMismatch)

	assert.Equal(t, FlowStateError, flow.State())
	assert.Equal(t, int32(0), exchanges.Load(), "forged callbacks must never reach the token endpoint")
}

func TestFlow_Run_Timeout(t *testing.T) {
	port := freePort(t)

	// The "browser" never completes the authorization.
	opener := func(string) error { return nil }

	flow, exchanges := newFlowFixture(t, port, opener)
	flow.timeout = 200 * time.Millisecond

	start := time.Now()
	_, err := flow.Run(context.Background())
	require.ErrorIs(t, err, ErrCallbackTimeout)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, FlowStateError, flow.State())
	assert.Equal(t, int32(0), exchanges.Load())

	// The listener must be gone: binding the same port must succeed.
	l, bindErr := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, bindErr, "callback port still bound after timeout")
	l.Close()
}

func TestFlow_Run_PortInUse(t *testing.T) {
	port := freePort(t)

	occupier, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	defer occupier.Close()

	var browserOpened bool
	flow, _ := newFlowFixture(t, port, func(string) error {
		browserOpened = true
		return nil
	})

	_, err = flow.Run(context.Background())
	require.Error(t, err)

	var portErr *PortInUseError
	require.ErrorAs(t, err, &portErr)
	assert.False(t, browserOpened, "browser must not be opened when the port cannot be bound")
	assert.Equal(t, FlowStateError, flow.State())
}

func TestFlow_Run_ExchangeFailure(t *testing.T) {
	rejectingServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "code expired",
		})
	}))
	defer rejectingServer.Close()

	client := NewClient(ClientConfig{
		ClientID:  "client-123",
		Endpoints: Endpoints{Token: rejectingServer.URL},
	})

	opener := browserStub(t, func(state, redirectURI string) string {
		return url.Values{"code": {"stale"}, "state": {state}}.Encode()
	})

	flow := NewFlow(FlowConfig{
		Client:  client,
		Port:    freePort(t),
		Timeout: 5 * time.Second,
		OpenURL: opener,
	})

	_, err := flow.Run(context.Background())
	require.Error(t, err)

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "invalid_grant", rejection.Code)
	assert.Equal(t, FlowStateError, flow.State())
}

func TestFlow_OnAuthURL(t *testing.T) {
	opener := browserStub(t, func(state, redirectURI string) string {
		return url.Values{"code": {"ABC123"}, "state": {state}}.Encode()
	})

	flow, _ := newFlowFixture(t, freePort(t), opener)

	var reported string
	flow.OnAuthURL = func(authURL string) { reported = authURL }

	_, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, reported, "response_type=code")
	assert.Contains(t, reported, "client_id=client-123")
}

func TestFlowState_String(t *testing.T) {
	testCases := map[FlowState]string{
		FlowStateIdle:                  "idle",
		FlowStateAwaitingAuthorization: "awaiting_authorization",
		FlowStateCodeReceived:          "code_received",
		FlowStateExchanging:            "exchanging",
		FlowStateComplete:              "complete",
		FlowStateError:                 "error",
		FlowState(42):                  "unknown",
	}

	for state, expected := range testCases {
		assert.Equal(t, expected, state.String())
	}
}
