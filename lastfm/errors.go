package lastfm

import (
	"errors"
	"fmt"
)

// ErrMalformed indicates a response that could not be parsed as JSON at all.
// This is an assumption violation on our side of the API contract, not a user
// mistake.
var ErrMalformed = errors.New("last.fm returned an unreadable response")

// ErrListNotFound indicates a response in which the expected item list is
// absent or not a list. Like [ErrMalformed] this points at a schema
// assumption gone stale.
var ErrListNotFound = errors.New("last.fm response is missing the expected list")

// ServiceError is an error reported by the Last.fm API itself, e.g. an
// unknown user or track. The message is shown to the user verbatim.
type ServiceError struct {
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("last.fm error %d", e.Code)
	}
	return e.Message
}
