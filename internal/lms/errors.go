package lms

import (
	"errors"
	"fmt"
)

// AuthError is returned when the identity endpoint rejects an
// authentication attempt. Body retains the response for diagnostics.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("LMS authentication rejected: status %d: %s", e.Status, e.Body)
}

// RejectedError is returned when the offer endpoint answers with a
// non-2xx status that is not an auth failure.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("LMS rejected publish: status %d: %s", e.Status, e.Body)
}

// ErrAuthRetryExhausted is returned when the single re-authentication and
// retry cycle after a 401/403 also fails.
var ErrAuthRetryExhausted = errors.New("publish failed after re-authentication retry")
