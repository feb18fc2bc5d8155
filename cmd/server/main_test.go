package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	get := func(h http.HandlerFunc) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		return rec
	}

	// Memory backend has no connection to check.
	rec := get(healthHandler(nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = get(healthHandler(func(context.Context) error { return nil }))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(healthHandler(func(context.Context) error { return errors.New("connection refused") }))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
