// Package apperrors holds the error taxonomy shared by the ledger client, the
// cache store and the portal services. Callers wrap these sentinels with
// context using github.com/pkg/errors and classify them with errors.Is.
package apperrors

import (
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrValidation marks missing or malformed required input. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrNotAuthorized marks a violated authorization rule. Never retried.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNotFound marks a lookup that matched nothing in either store.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyResolved marks a transition attempted on a terminal request.
	ErrAlreadyResolved = errors.New("already resolved")
	// ErrTimeout marks a remote call that exceeded its bound. The remote
	// action may still complete later.
	ErrTimeout = errors.New("ledger call timed out")
	// ErrRemoteRejected marks a remote revert or denial.
	ErrRemoteRejected = errors.New("ledger rejected the operation")
	// ErrRemoteUnavailable marks an unreachable transport.
	ErrRemoteUnavailable = errors.New("ledger unavailable")
	// ErrCorruptState marks a cache collection that failed to deserialize.
	ErrCorruptState = errors.New("corrupt cache state")
)

// Validation wraps ErrValidation with a message.
func Validation(msg string) error {
	return errors.Wrap(ErrValidation, msg)
}

// NotAuthorized wraps ErrNotAuthorized with a message.
func NotAuthorized(msg string) error {
	return errors.Wrap(ErrNotAuthorized, msg)
}

// NotFound wraps ErrNotFound with a message.
func NotFound(msg string) error {
	return errors.Wrap(ErrNotFound, msg)
}

// AlreadyResolved wraps ErrAlreadyResolved with a message.
func AlreadyResolved(msg string) error {
	return errors.Wrap(ErrAlreadyResolved, msg)
}

// Rejected wraps ErrRemoteRejected with the remote's reason, verbatim.
func Rejected(reason string) error {
	return errors.Wrap(ErrRemoteRejected, reason)
}

// IsTransient reports whether err is a remote failure that a read should
// absorb by falling back to the cache.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRemoteUnavailable) ||
		errors.Is(err, ErrRemoteRejected)
}

// HTTPStatus maps an error to the status code the portal answers with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrRemoteRejected):
		return http.StatusBadGateway
	case errors.Is(err, ErrRemoteUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
