package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/sovereign-client/internal/fakeserver/auth"
	"github.com/mcoot/sovereign-client/internal/fakeserver/world"
)

// ErrorResponse is the body of every non-command error
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// httpError combines an HTTP status code with a client-facing message
type httpError struct {
	status  int
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{OK: false, Error: he.message})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, "invalid credentials"}
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUserNotFound):
		return &httpError{http.StatusUnauthorized, "invalid token"}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, err.Error()}
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword):
		return &httpError{http.StatusBadRequest, err.Error()}

	// World errors
	case errors.Is(err, world.ErrMessageNotFound),
		errors.Is(err, world.ErrAttachmentNotFound),
		errors.Is(err, world.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, err.Error()}
	case errors.Is(err, world.ErrInvalidRecipient),
		errors.Is(err, world.ErrUnknownRecipient),
		errors.Is(err, world.ErrMessageToSelf),
		errors.Is(err, world.ErrEmptyBody),
		errors.Is(err, world.ErrNotReportable):
		return &httpError{http.StatusBadRequest, err.Error()}
	case errors.Is(err, world.ErrAttachmentTooLarge):
		return &httpError{http.StatusRequestEntityTooLarge, err.Error()}
	case errors.Is(err, world.ErrNoAdmin):
		return &httpError{http.StatusServiceUnavailable, err.Error()}

	default:
		return &httpError{http.StatusInternalServerError, "internal error"}
	}
}

// NewBadRequestError creates a 400 error
func NewBadRequestError(message string) error {
	return &httpError{http.StatusBadRequest, message}
}

// NewUnauthorizedError creates a 401 error
func NewUnauthorizedError(message string) error {
	return &httpError{http.StatusUnauthorized, message}
}

// NewForbiddenError creates a 403 error
func NewForbiddenError(message string) error {
	return &httpError{http.StatusForbidden, message}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, "internal error"}
}
