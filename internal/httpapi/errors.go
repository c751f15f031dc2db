package httpapi

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/apperr"
)

// kindStatus maps an apperr.Kind to its HTTP status code.
func kindStatus(k apperr.Kind) int {
	switch k {
	case apperr.InvalidInput, apperr.BusinessRule:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	case apperr.Transient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err into the error envelope. Detailed messages
// are withheld outside development mode so internal stack detail
// never reaches the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kindStatus(kind)

	message := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		message = ae.Message
	}
	if status == http.StatusInternalServerError && s.env != "development" {
		message = "an unexpected error occurred"
	}

	logger := zerolog.Ctx(r.Context())
	if status >= 500 {
		logger.Error().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")
	} else if status >= 400 {
		logger.Warn().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request rejected")
	}

	writeJSON(w, status, Response{Success: false, Message: message})
}
