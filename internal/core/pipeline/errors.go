// Package pipeline contains the pure business rules shared by the pipeline
// stages: the error taxonomy, stage names, and the retry policy. This is part
// of the Functional Core - no I/O, only pure functions.
package pipeline

import (
	"errors"
	"fmt"
)

// Stage names recorded on the session when a stage fails terminally.
const (
	StageTranscription = "transcription"
	StageReport        = "report"
)

// NotFoundError indicates a required entity is missing. Never retried.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError indicates the request conflicts with current state, such as
// uploading audio to a session that already has an attachment. Never retried.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// ValidationError indicates a malformed request (oversized file, missing
// field). Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// BusinessError indicates a failure caused by invalid input or state that no
// amount of retrying fixes, such as an empty transcript. A business error
// marks the stage failed immediately and bypasses the retry budget.
type BusinessError struct {
	Reason string
}

func (e *BusinessError) Error() string {
	return e.Reason
}

// TransientError wraps a failure from an external dependency that is expected
// to succeed on retry (provider, network, storage).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable infrastructure failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsBusiness reports whether err is a BusinessError.
func IsBusiness(err error) bool {
	var b *BusinessError
	return errors.As(err, &b)
}

// IsRetryable reports whether a stage failure should consume a retry attempt.
// Business, validation, conflict, and not-found errors are terminal; anything
// else is treated as transient infrastructure failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsBusiness(err) || IsValidation(err) || IsConflict(err) || IsNotFound(err) {
		return false
	}
	return true
}
