package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{NotFound("doctor", nil), http.StatusNotFound},
		{InvalidInput("bad slot date", nil), http.StatusBadRequest},
		{Unauthorized("not your appointment"), http.StatusForbidden},
		{Conflict("slot already booked"), http.StatusConflict},
		{Upstream("gateway down", nil), http.StatusBadGateway},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.StatusCode())
	}
}

func TestFromUnwrapsWrappedAppError(t *testing.T) {
	orig := Conflict("slot already booked")
	wrapped := fmt.Errorf("booking failed: %w", orig)

	got := From(wrapped)
	assert.Equal(t, ErrConflict, got.Code)
	assert.Equal(t, "slot already booked", got.Message)
}

func TestFromWrapsUnknownErrorAsInternal(t *testing.T) {
	got := From(errors.New("driver: bad connection"))
	assert.Equal(t, ErrInternal, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode())
	assert.Equal(t, "internal server error", got.Message)
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := NotFound("appointment", errors.New("sql: no rows in result set"))
	assert.Contains(t, err.Error(), "appointment not found")
	assert.Contains(t, err.Error(), "no rows")
	assert.ErrorContains(t, err.Unwrap(), "no rows")
}
