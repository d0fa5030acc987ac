package oauth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// FlowState represents the current state of an authorization flow.
type FlowState int

const (
	// FlowStateIdle means the flow has not been started.
	FlowStateIdle FlowState = iota

	// FlowStateAwaitingAuthorization means the listener is up and the
	// browser has been pointed at the authorization URL.
	FlowStateAwaitingAuthorization

	// FlowStateCodeReceived means the callback delivered an authorization code.
	FlowStateCodeReceived

	// FlowStateExchanging means the code is being exchanged for tokens.
	FlowStateExchanging

	// FlowStateComplete means a token pair was obtained.
	FlowStateComplete

	// FlowStateError means the flow failed while waiting or exchanging.
	FlowStateError
)

// String returns the string representation of the flow state.
func (s FlowState) String() string {
	switch s {
	case FlowStateIdle:
		return "idle"
	case FlowStateAwaitingAuthorization:
		return "awaiting_authorization"
	case FlowStateCodeReceived:
		return "code_received"
	case FlowStateExchanging:
		return "exchanging"
	case FlowStateComplete:
		return "complete"
	case FlowStateError:
		return "error"
	default:
		return "unknown"
	}
}

// Flow orchestrates one browser-based authorization attempt: it starts
// the callback listener, opens the authorization URL, waits for the
// single redirect, verifies the state nonce and exchanges the code for
// tokens. At most one authorization request is outstanding per Flow.
type Flow struct {
	client  *Client
	port    int
	timeout time.Duration
	scopes  []string
	openURL func(string) error

	// OnAuthURL, if set, is invoked with the authorization URL right
	// after the browser launch is attempted, so callers can show it to
	// users whose browser did not open.
	OnAuthURL func(authURL string)

	mu    sync.Mutex
	state FlowState
}

// FlowConfig configures an authorization flow.
type FlowConfig struct {
	// Client performs the code exchange. Required.
	Client *Client

	// Port is the local callback listener port. 0 means DefaultCallbackPort.
	Port int

	// Timeout bounds the wait for the callback. 0 means DefaultCallbackTimeout.
	Timeout time.Duration

	// Scopes are the requested scopes. Empty means DefaultScopes.
	Scopes []string

	// OpenURL opens a URL in the user's browser. Defaults to OpenBrowser;
	// tests inject a stub here.
	OpenURL func(string) error
}

// NewFlow creates a flow in the idle state.
func NewFlow(cfg FlowConfig) *Flow {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultCallbackTimeout
	}

	openURL := cfg.OpenURL
	if openURL == nil {
		openURL = OpenBrowser
	}

	return &Flow{
		client:  cfg.Client,
		port:    cfg.Port,
		timeout: timeout,
		scopes:  cfg.Scopes,
		openURL: openURL,
		state:   FlowStateIdle,
	}
}

// State returns the current flow state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s FlowState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// Run executes the flow end to end and returns the token response.
// Every failure path returns a typed error from the taxonomy in
// errors.go; the listener is closed before Run returns, on success and
// on every error path alike.
func (f *Flow) Run(ctx context.Context) (*TokenResponse, error) {
	// Bind the listener before anything else so a busy port is reported
	// without launching a browser.
	server := NewCallbackServer(f.port)
	redirectURI, err := server.Start(ctx)
	if err != nil {
		f.setState(FlowStateError)
		return nil, err
	}
	defer server.Stop()

	request, err := NewAuthorizationRequest(f.scopes, redirectURI)
	if err != nil {
		f.setState(FlowStateError)
		return nil, err
	}

	authURL, err := f.client.AuthorizationURL(request)
	if err != nil {
		f.setState(FlowStateError)
		return nil, err
	}

	f.setState(FlowStateAwaitingAuthorization)

	if err := f.openURL(authURL); err != nil {
		// Not fatal: the user can open the URL manually.
		slog.Warn("could not open browser", "error", err.Error())
	}
	if f.OnAuthURL != nil {
		f.OnAuthURL(authURL)
	}

	slog.Debug("waiting for authorization callback",
		"redirect_uri", redirectURI,
		"scopes", request.Scopes,
		"timeout", f.timeout.String(),
	)

	waitCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	result, err := server.WaitForCallback(waitCtx)
	if err != nil {
		f.setState(FlowStateError)
		server.Stop()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrCallbackTimeout
		}
		return nil, err
	}

	if result.IsError() {
		f.setState(FlowStateError)
		return nil, &AuthorizationError{
			Code:        result.Error,
			Description: result.ErrorDescription,
		}
	}

	if result.State != request.State {
		slog.Warn("state mismatch on callback, rejecting",
			"expected_len", len(request.State),
			"received_len", len(result.State),
		)
		f.setState(FlowStateError)
		return nil, ErrStateMismatch
	}

	f.setState(FlowStateCodeReceived)
	f.setState(FlowStateExchanging)

	token, err := f.client.Exchange(ctx, result.Code, redirectURI)
	if err != nil {
		f.setState(FlowStateError)
		return nil, err
	}

	slog.Debug("authorization flow complete",
		"token_type", token.TokenType,
		"expires_in", token.ExpiresIn,
		"has_refresh_token", token.RefreshToken != "",
	)

	f.setState(FlowStateComplete)
	return token, nil
}
