package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/leagueos/internal/apiclient"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestResponders(t *testing.T) {
	testCases := []struct {
		name    string
		respond func(w http.ResponseWriter, r *http.Request)
		status  int
		message string
	}{
		{"bad request", func(w http.ResponseWriter, r *http.Request) { BadRequest(w, r, "Invalid club id", nil) }, http.StatusBadRequest, "Invalid club id"},
		{"not found", func(w http.ResponseWriter, r *http.Request) { NotFound(w, r, "Attempt not found", errors.New("no rows")) }, http.StatusNotFound, "Attempt not found"},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { Unauthorized(w, r, "Missing bearer token") }, http.StatusUnauthorized, "Missing bearer token"},
		{"forbidden", func(w http.ResponseWriter, r *http.Request) { Forbidden(w, r, "Admin access required", nil) }, http.StatusForbidden, "Admin access required"},
		{"internal", func(w http.ResponseWriter, r *http.Request) { InternalServerError(w, r, "journal down", errors.New("disk")) }, http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.respond(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.message, decode(t, rec).Error)
		})
	}
}

func TestUpstream(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"transport failure", errors.New("dial tcp: refused"), http.StatusBadGateway, "Failed to load seasons"},
		{"not found passes through", fmt.Errorf("wrapped: %w", &apiclient.APIError{Status: 404, Kind: league.ServerErrorGeneric, Message: "Club not found"}), http.StatusNotFound, "Club not found"},
		{"unauthorized passes through", &apiclient.APIError{Status: 401, Message: "Token expired"}, http.StatusUnauthorized, "Token expired"},
		{"server error is a bad gateway", &apiclient.APIError{Status: 500, Message: "boom"}, http.StatusBadGateway, "Failed to load seasons"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Upstream(rec, httptest.NewRequest(http.MethodGet, "/", nil), "Failed to load seasons", tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.message, decode(t, rec).Error)
		})
	}
}
