package apperrors

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrappedSentinelsKeepTheirKind(t *testing.T) {
	err := errors.Wrap(Validation("date is required"), "submit request")

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotAuthorized))
	assert.Contains(t, err.Error(), "date is required")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		Validation("x"):                         http.StatusBadRequest,
		NotAuthorized("x"):                      http.StatusForbidden,
		NotFound("x"):                           http.StatusNotFound,
		AlreadyResolved("x"):                    http.StatusConflict,
		errors.Wrap(ErrTimeout, "x"):            http.StatusGatewayTimeout,
		Rejected("execution reverted"):          http.StatusBadGateway,
		errors.Wrap(ErrRemoteUnavailable, "x"):  http.StatusServiceUnavailable,
		errors.New("something else went wrong"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.Wrap(ErrTimeout, "getPatientAppointments")))
	assert.True(t, IsTransient(errors.Wrap(ErrRemoteUnavailable, "dial")))
	assert.False(t, IsTransient(Validation("x")))
}
