package domain

import "errors"

// Sentinel errors for the application. Handlers map these to HTTP status
// codes; services and stores wrap them with context via fmt.Errorf and %w.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("resource already exists")
	ErrInternal     = errors.New("internal server error")

	// ErrDuplicateRequest means a connection request already exists for the
	// unordered user pair, in either direction and in any status.
	ErrDuplicateRequest = errors.New("request already exists for this pair")

	// ErrAlreadyReviewed means the request left the pending state; review is
	// write-once.
	ErrAlreadyReviewed = errors.New("request already reviewed")

	// ErrSelfRequest means a user tried to submit a request on themselves.
	ErrSelfRequest = errors.New("cannot send request to yourself")

	// ErrNotConnected means the two users have no accepted connection, so no
	// chat exists between them.
	ErrNotConnected = errors.New("users are not connected")

	// ErrTransient means the store was unavailable or contended; the caller
	// may retry the whole operation.
	ErrTransient = errors.New("store temporarily unavailable")
)
