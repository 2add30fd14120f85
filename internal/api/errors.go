package api

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned when an operation requires authentication but
// no token is stored. Callers short-circuit on it client-side; an
// unauthenticated request is never put on the wire.
var ErrNoToken = errors.New("no session token")

// AuthError indicates the server rejected the bearer token (HTTP 401).
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// DecodeError indicates the server responded with 2xx but the body did
// not match the expected shape. Callers treat it as an empty result,
// never a crash.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err (or any error in its chain) is a
// DecodeError.
func IsDecodeError(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr)
}
