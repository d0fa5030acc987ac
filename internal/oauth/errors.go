package oauth

import (
	"errors"
	"fmt"
)

// ErrCallbackTimeout is returned when no authorization callback arrives
// within the configured wait window. The callback listener is always
// closed before this error is returned.
var ErrCallbackTimeout = errors.New("timed out waiting for authorization callback")

// ErrStateMismatch is returned when the state parameter on the callback
// does not match the one generated for the authorization request.
var ErrStateMismatch = errors.New("state parameter mismatch on callback")

// AuthorizationError is reported when the provider redirects back with an
// error parameter instead of an authorization code (user denied consent,
// invalid scope, etc.).
type AuthorizationError struct {
	// Code is the provider error code, e.g. "access_denied".
	Code string

	// Description is the optional human-readable error_description.
	Description string
}

// Error implements the error interface.
func (e *AuthorizationError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization failed: %s - %s", e.Code, e.Description)
	}
	return fmt.Sprintf("authorization failed: %s", e.Code)
}

// TransportError wraps a network-level failure of a token endpoint call
// (DNS, connection refused, timeout). It is distinct from RejectionError,
// which means the provider answered but refused the request.
type TransportError struct {
	// Op names the operation that failed, e.g. "exchange" or "refresh".
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectionError is reported when the token endpoint answers with a
// non-2xx status. Code and Description carry the decoded OAuth error
// payload when the provider supplied one.
type RejectionError struct {
	// Op names the operation that was rejected, e.g. "exchange" or "refresh".
	Op string

	// StatusCode is the HTTP status returned by the provider.
	StatusCode int

	// Code is the OAuth error code from the response body, if present.
	Code string

	// Description is the OAuth error_description, if present.
	Description string
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	if e.Code != "" {
		if e.Description != "" {
			return fmt.Sprintf("%s rejected with status %d: %s - %s", e.Op, e.StatusCode, e.Code, e.Description)
		}
		return fmt.Sprintf("%s rejected with status %d: %s", e.Op, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s rejected with status %d", e.Op, e.StatusCode)
}

// PortInUseError is reported when the callback listener cannot bind its
// local port. It is surfaced before any browser is opened.
type PortInUseError struct {
	// Addr is the address the listener tried to bind.
	Addr string
	Err  error
}

// Error implements the error interface.
func (e *PortInUseError) Error() string {
	return fmt.Sprintf("cannot bind callback listener on %s: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying bind error.
func (e *PortInUseError) Unwrap() error {
	return e.Err
}
