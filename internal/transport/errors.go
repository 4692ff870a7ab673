package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized matches any APIError carrying a 401 status
var ErrUnauthorized = errors.New("unauthorized")

// StatusTransportFailure marks errors where no usable response arrived
const StatusTransportFailure = 0

// APIError is a non-success exchange with the server
type APIError struct {
	// Status is the HTTP status, or StatusTransportFailure
	Status int
	// Message is human readable and safe to show as-is
	Message string
	// Code is the machine-readable error code when the server sent one
	Code string
	// Err is the underlying cause for transport failures
	Err error
}

func (e *APIError) Error() string {
	if e.Status == StatusTransportFailure {
		return e.Message
	}
	if e.Code != "" && e.Code != e.Message {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// IsUnauthorized reports whether err is, or wraps, a 401 APIError
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// errorEnvelope covers both {error:"msg"} and {ok:false, message, error:CODE}
// as well as the nested {error:{code,message}} form.
type errorEnvelope struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

type nestedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newAPIError builds an APIError from a non-success response body
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		var code string
		var nested nestedError
		if len(env.Error) > 0 {
			if err := json.Unmarshal(env.Error, &code); err != nil {
				if err := json.Unmarshal(env.Error, &nested); err == nil {
					code = nested.Code
				}
			}
		}

		switch {
		case env.Message != "":
			apiErr.Message = env.Message
			apiErr.Code = code
		case nested.Message != "":
			apiErr.Message = nested.Message
			apiErr.Code = nested.Code
		case code != "":
			apiErr.Message = code
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func transportFailure(msg string, err error) *APIError {
	return &APIError{
		Status:  StatusTransportFailure,
		Message: msg,
		Err:     err,
	}
}
