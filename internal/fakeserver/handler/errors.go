package handler

import (
	"net/http"

	"github.com/mcoot/sovereign-client/internal/fakeserver/apierr"
)

// ErrorResponse is re-exported for handler tests
type ErrorResponse = apierr.ErrorResponse

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

func badRequest(message string) error {
	return apierr.NewBadRequestError(message)
}
