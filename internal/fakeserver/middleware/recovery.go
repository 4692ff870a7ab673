package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/sovereign-client/internal/fakeserver/apierr"
	"github.com/mcoot/sovereign-client/internal/middleware"
)

// Recovery creates panic recovery middleware that answers with the JSON
// error envelope
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
