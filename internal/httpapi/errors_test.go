package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/apperr"
)

func TestKindStatusMapping(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.InvalidInput:    http.StatusBadRequest,
		apperr.BusinessRule:    http.StatusBadRequest,
		apperr.Unauthenticated: http.StatusUnauthorized,
		apperr.Forbidden:       http.StatusForbidden,
		apperr.NotFound:        http.StatusNotFound,
		apperr.Conflict:        http.StatusConflict,
		apperr.RateLimited:     http.StatusTooManyRequests,
		apperr.Transient:       http.StatusServiceUnavailable,
		apperr.Internal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kindStatus(kind))
	}
}

func TestWriteErrorSuppressesInternalDetailOutsideDevelopment(t *testing.T) {
	s := &Server{env: "production"}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/events/1", nil)

	s.writeError(rec, req, apperr.Wrap(apperr.Internal, "lookup failed", assertError("pool: connection refused")))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotContains(t, resp.Message, "connection refused")
}

func TestWriteErrorKeepsDetailInDevelopment(t *testing.T) {
	s := &Server{env: "development"}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/events/1", nil)

	s.writeError(rec, req, apperr.New(apperr.NotFound, "event not found"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "event not found", resp.Message)
}

type assertError string

func (e assertError) Error() string { return string(e) }
