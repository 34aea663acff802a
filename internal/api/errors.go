// Package api provides error types for server responses.
package api

import (
	"errors"
	"fmt"
)

// ErrSessionExpired indicates the server answered 401 on a listing call:
// the login session is stale and the user must re-authenticate. Callers
// must surface this distinctly from generic listing failures.
var ErrSessionExpired = errors.New("session expired")

// ServerError is a non-2xx response carrying a server-supplied message
// when the body parsed as structured data, else a generic description.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server rejected request: status %d", e.StatusCode)
}

// TransportError is a network-level failure (connection error, abort,
// timeout) before any usable response arrived. Surfaced verbatim; the
// retry path is resubmission by the user, never automatic.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsSessionExpired reports whether err carries the stale-session signal.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}
