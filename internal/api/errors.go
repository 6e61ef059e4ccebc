package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized marks a request the service rejected for missing or
// expired credentials. Session initialization treats it as fatal.
var ErrUnauthorized = errors.New("api: unauthorized")

// Error is a semantic failure reported by the remote account service.
// Network-level failures are returned as plain wrapped errors and are
// distinguishable because they do not unwrap to *Error.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s (http %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("api: %s: %s", e.Code, e.Message)
}

// IsRemoteError reports whether err carries a service-side error payload,
// as opposed to a transport failure or decode failure.
func IsRemoteError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}
