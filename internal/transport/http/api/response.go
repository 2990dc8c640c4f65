package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hrconsole/internal/domain/auth"
	"hrconsole/internal/domain/leave"
	"hrconsole/internal/domain/masterdata"
	"hrconsole/internal/gateway"
	"hrconsole/internal/notify"
	"hrconsole/internal/validation"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success      bool                 `json:"success"`
	Data         any                  `json:"data,omitempty"`
	Error        *Error               `json:"error,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
	RequestID    string               `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

// Screen answers a screen operation with the refreshed view and the toast the
// operation raised, if any.
func Screen(w http.ResponseWriter, data any, toast *notify.Notification, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Notification: toast, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

// FailScreen reports a failed screen operation. The view is still returned so
// the browser can redraw what the operation left behind.
func FailScreen(w http.ResponseWriter, err error, data any, toast *notify.Notification, requestID string) {
	status, code := StatusFor(err)
	apiErr := &Error{Code: code, Message: Message(err)}
	var verr *validation.Error
	if errors.As(err, &verr) {
		apiErr.Details = map[string]any{"fields": verr.Issues}
	}
	WriteJSON(w, status, Envelope{Success: false, Data: data, Error: apiErr, Notification: toast, RequestID: requestID})
}

// StatusFor maps a screen error onto an HTTP status and error code.
func StatusFor(err error) (int, string) {
	var (
		verr      *validation.Error
		domain    *gateway.DomainFailure
		transport *gateway.TransportError
		envelope  *gateway.EnvelopeError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, gateway.ErrNotLoggedIn):
		return http.StatusUnauthorized, "not_logged_in"
	case errors.Is(err, masterdata.ErrSubmitInFlight), errors.Is(err, auth.ErrLoginInFlight):
		return http.StatusConflict, "in_flight"
	case errors.Is(err, auth.ErrWrongStep):
		return http.StatusConflict, "wrong_step"
	case errors.Is(err, masterdata.ErrUnknownEntity),
		errors.Is(err, masterdata.ErrRecordNotFound),
		errors.Is(err, leave.ErrRowNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, masterdata.ErrUnknownField):
		return http.StatusBadRequest, "unknown_field"
	case errors.As(err, &domain):
		return http.StatusUnprocessableEntity, "gateway_rejected"
	case errors.As(err, &transport), errors.As(err, &envelope):
		return http.StatusBadGateway, "gateway_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// Message is the user-facing text for err.
func Message(err error) string {
	var (
		domain    *gateway.DomainFailure
		transport *gateway.TransportError
		envelope  *gateway.EnvelopeError
	)
	if errors.As(err, &domain) || errors.As(err, &transport) || errors.As(err, &envelope) {
		return gateway.UserMessage(err)
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
