package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/creatorhub/creatorhub-api/internal/pkg/errorhandler"
	"github.com/creatorhub/creatorhub-api/internal/pkg/logger"
)

// Recover turns a handler panic into a 500 envelope. http.ErrAbortHandler is re-raised.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}

			logger.FromContext(r.Context()).Error().
				Bytes("stack", debug.Stack()).
				Str("route", routePattern(r)).
				Msg("panic recovered")

			errorhandler.Internal(r.Context(), w, fmt.Errorf("panic: %v", rv))
		}()

		next.ServeHTTP(w, r)
	})
}
