package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrJudgmentNotFound is returned when a pending judgment id does not exist
	ErrJudgmentNotFound = errors.New("pending judgment not found")

	// ErrJudgmentNotPending is returned when confirm/reject hits a record
	// that already left the PENDING state
	ErrJudgmentNotPending = errors.New("judgment is no longer pending")

	// ErrUnknownEntityType is returned when no judge strategy is registered
	// for a record's entity-type tag
	ErrUnknownEntityType = errors.New("no judge strategy for entity type")

	// ErrClassifierFailure is returned when the classifier request fails
	ErrClassifierFailure = errors.New("classifier request failed")
)
