package ticketapi

import (
	"errors"
	"fmt"
)

// RemoteError is returned for every failed call to the ticket service,
// whether the request never completed or the service answered with a
// non-success status.
type RemoteError struct {
	// Op is the logical operation, e.g. "allTickets" or "updateById".
	Op string

	// Method is the HTTP verb used.
	Method string

	// StatusCode is the response status, or 0 if no response was received.
	StatusCode int

	// Body is the raw response body for non-success statuses.
	Body string

	// Err is the underlying transport or decoding error, if any.
	Err error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("ticket service %s (%s)", e.Op, e.Method)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemoteError reports whether err (or any error in its chain) is a RemoteError.
func IsRemoteError(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr)
}
