package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", New(ErrInvalidInput, http.StatusConflict, "x"), http.StatusConflict},
		{"wrapped invalid input", fmt.Errorf("decoding: %w", ErrInvalidInput), http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"store down", fmt.Errorf("sadd: %w", ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"publish", ErrPublishFailed, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatusCode(tc.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrStoreUnavailable, http.StatusServiceUnavailable, "redis %s", "down")
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.Equal(t, "filter store unavailable: redis down", err.Error())
}
