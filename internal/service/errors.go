package service

import (
	"errors"
	"fmt"
)

// ErrMissingFields is returned when a required contact field is empty.
var ErrMissingFields = errors.New("all fields are required")

// ErrInvalidEmail is returned when the email field is not a single valid address.
var ErrInvalidEmail = errors.New("invalid email address")

// ErrInvalidSubject is returned when the subject contains a line break.
var ErrInvalidSubject = errors.New("subject must be a single line")

// PersistenceError means the submission log could not be read or written.
// Nothing was relayed.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("save submission: %v", e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// RelayError means the email relay failed. The submission at Index is logged as failed.
type RelayError struct {
	Index int
	Err   error
}

func (e *RelayError) Error() string { return fmt.Sprintf("relay submission %d: %v", e.Index, e.Err) }
func (e *RelayError) Unwrap() error { return e.Err }
