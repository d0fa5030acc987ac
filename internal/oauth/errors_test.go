package oauth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizationError_Error(t *testing.T) {
	err := &AuthorizationError{Code: "access_denied"}
	assert.Equal(t, "authorization failed: access_denied", err.Error())

	err = &AuthorizationError{Code: "access_denied", Description: "User denied the request"}
	assert.Equal(t, "authorization failed: access_denied - User denied the request", err.Error())
}

func TestRejectionError_Error(t *testing.T) {
	testCases := []struct {
		name     string
		err      *RejectionError
		expected string
	}{
		{
			name:     "status only",
			err:      &RejectionError{Op: "exchange", StatusCode: 500},
			expected: "exchange rejected with status 500",
		},
		{
			name:     "with code",
			err:      &RejectionError{Op: "refresh", StatusCode: 400, Code: "invalid_grant"},
			expected: "refresh rejected with status 400: invalid_grant",
		},
		{
			name:     "with code and description",
			err:      &RejectionError{Op: "exchange", StatusCode: 401, Code: "invalid_client", Description: "client authentication failed"},
			expected: "exchange rejected with status 401: invalid_client - client authentication failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Op: "exchange", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "exchange request failed")

	wrapped := fmt.Errorf("running flow: %w", err)
	var transport *TransportError
	assert.ErrorAs(t, wrapped, &transport)
	assert.Equal(t, "exchange", transport.Op)
}

func TestPortInUseError_Unwrap(t *testing.T) {
	cause := errors.New("address already in use")
	err := &PortInUseError{Addr: "localhost:8914", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "localhost:8914")
}
