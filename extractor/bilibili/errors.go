package bilibili

import (
	"errors"
	"fmt"
)

// ErrContentUnavailable signals that no source produced any stream candidate.
// It is a terminal condition, not a transient fetch failure.
var ErrContentUnavailable = errors.New("no playable source found")

// APIError carries a structured provider error verbatim: either a message
// or a numeric code, as returned by the endpoint.
type APIError struct {
	Message string
	Code    int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bilibili said: %s", e.Message)
	}
	return fmt.Sprintf("bilibili returned error %d", e.Code)
}
