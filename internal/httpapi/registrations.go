package httpapi

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/apperr"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/registration"
)

type registerRequest struct {
	UserID int64 `json:"user_id,omitempty"`
}

type registerResponse struct {
	Outcome        string `json:"outcome"`
	RegistrationID int64  `json:"registration_id,omitempty"`
}

// registerOutcomeStatus maps a RegisterOutcome to an HTTP status.
// Created/Reactivated succeed; every other outcome is a rejection
// communicated through the envelope, not a generic 500.
func registerOutcomeStatus(o registration.RegisterOutcome) int {
	switch o {
	case registration.Created:
		return http.StatusCreated
	case registration.Reactivated:
		return http.StatusOK
	case registration.AlreadyRegistered, registration.EventFull, registration.EventPast:
		return http.StatusBadRequest
	case registration.EventNotFound, registration.UserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func registerOutcomeMessage(o registration.RegisterOutcome) string {
	switch o {
	case registration.Created:
		return "registered"
	case registration.Reactivated:
		return "registration reactivated"
	case registration.AlreadyRegistered:
		return "already registered for this event"
	case registration.EventFull:
		return "event has reached maximum capacity"
	case registration.EventPast:
		return "event has already started or ended"
	case registration.EventNotFound:
		return "event not found"
	case registration.UserNotFound:
		return "user not found"
	default:
		return o.String()
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, apperr.New(apperr.InvalidInput, "invalid event id"))
		return
	}

	principal := PrincipalFromContext(r.Context())
	targetUserID := principal.UserID

	var body registerRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			s.writeError(w, r, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
			return
		}
	}
	if body.UserID != 0 && body.UserID != principal.UserID {
		if !principal.Elevated {
			s.writeError(w, r, apperr.New(apperr.Forbidden, "elevated capability required to register another user"))
			return
		}
		targetUserID = body.UserID
	}

	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		key = newIdempotencyKey()
	} else if cached, status, ok := s.idempotency.get(key); ok {
		writeData(w, status, cached)
		return
	}

	outcome, regID, err := s.regs.Register(r.Context(), targetUserID, eventID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := registerOutcomeStatus(outcome)
	resp := registerResponse{Outcome: outcome.String(), RegistrationID: regID}
	s.idempotency.put(key, resp, status)

	if status >= http.StatusBadRequest {
		writeJSON(w, status, Response{Success: false, Message: registerOutcomeMessage(outcome), Data: resp})
		return
	}
	writeDataMessage(w, status, registerOutcomeMessage(outcome), resp)
}

// cancelOutcomeStatus renders Forbidden as 400 rather than the
// general Forbidden->403 status: cancelling someone else's
// registration is communicated as "only cancel your own", a
// business-rule-shaped rejection rather than an identity-shaped one.
func cancelOutcomeStatus(o registration.CancelOutcome) int {
	switch o {
	case registration.Cancelled:
		return http.StatusOK
	case registration.NotRegistered, registration.CancelEventPast, registration.Forbidden:
		return http.StatusBadRequest
	case registration.CancelEventNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func cancelOutcomeMessage(o registration.CancelOutcome) string {
	switch o {
	case registration.Cancelled:
		return "registration cancelled"
	case registration.NotRegistered:
		return "not registered for this event"
	case registration.CancelEventPast:
		return "event has already started or ended"
	case registration.Forbidden:
		return "you can only cancel your own registration"
	case registration.CancelEventNotFound:
		return "event not found"
	default:
		return o.String()
	}
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, apperr.New(apperr.InvalidInput, "invalid event id"))
		return
	}
	targetUserID, err := pathID(r, "userId")
	if err != nil {
		s.writeError(w, r, apperr.New(apperr.InvalidInput, "invalid user id"))
		return
	}

	principal := PrincipalFromContext(r.Context())
	outcome, err := s.regs.Cancel(r.Context(), principal.UserID, targetUserID, eventID, principal.Elevated)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := cancelOutcomeStatus(outcome)
	if status >= http.StatusBadRequest {
		writeJSON(w, status, Response{Success: false, Message: cancelOutcomeMessage(outcome)})
		return
	}
	writeMessage(w, status, cancelOutcomeMessage(outcome))
}
