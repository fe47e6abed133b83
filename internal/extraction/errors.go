package extraction

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the text-generation service answers
// with no choices.
var ErrEmptyResponse = errors.New("text-generation service returned an empty response")

// MalformedJSONError is returned when the reply content cannot be parsed
// as a JSON offer record. Raw retains the content for diagnostics.
type MalformedJSONError struct {
	Raw string
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON in extraction reply: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// ServiceError is returned when the text-generation service rejects the
// request (non-200 status, auth failure, rate limit).
type ServiceError struct {
	Status int
	Body   string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("text-generation service error: status %d: %s", e.Status, e.Body)
}
