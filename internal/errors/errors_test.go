package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeInternal, "failed to query bills")

	assert.True(t, Is(err, cause))
	assert.Equal(t, ErrCodeInternal, Code(err))
	assert.Contains(t, err.Error(), "failed to query bills")
}

func TestCodeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, Code(stderrors.New("plain")))
	assert.Equal(t, ErrCode(""), Code(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("amount", "must be positive"), http.StatusBadRequest},
		{NotFound("bill", "b-1"), http.StatusNotFound},
		{New(ErrCodeConflict, "credit exceeds balance"), http.StatusConflict},
		{New(ErrCodeUnauthorized, "no token"), http.StatusUnauthorized},
		{New(ErrCodeUnavailable, "engine down"), http.StatusServiceUnavailable},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "for %v", tt.err)
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("bill", "b-42")

	require.Error(t, err)
	assert.Equal(t, ErrCodeNotFound, Code(err))
	assert.Contains(t, err.Error(), "bill")
	assert.Contains(t, err.Error(), "b-42")
}
