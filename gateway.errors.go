package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSubmitInFlight is returned by a form action while a submission is pending.
var ErrSubmitInFlight = errors.New("a submission is already in progress")

// TransportError reports a network failure, a timeout or an unexpected
// backend status. Status is zero when no response was received.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: backend answered %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError reports a payload rejected by the backend.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: rejected by backend: %s", e.Op, e.Message)
}

// NotFoundError reports an id unknown to the backend.
type NotFoundError struct {
	Op string
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: record %d not found", e.Op, e.ID)
}

// ClientValidationError reports a draft rejected before any backend call.
type ClientValidationError struct {
	Fields []string
	Reason string
}

func (e *ClientValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return strings.Join(e.Fields, ", ") + ": " + e.Reason
}
