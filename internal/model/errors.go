package model

import "errors"

// Common errors used across the client
var (
	// Session errors
	ErrNotAuthenticated       = errors.New("not logged in")
	ErrPasswordChangeRequired = errors.New("password change required")
	ErrMissingToken           = errors.New("server did not return a session token")
	ErrSessionEnded           = errors.New("session ended before the command completed")

	// Message errors
	ErrEmptyDraft      = errors.New("recipient and body are required")
	ErrMessageNotFound = errors.New("message not found")
	ErrNothingToMark   = errors.New("no message ids given")
)
