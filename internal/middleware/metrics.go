package middleware

import (
	"net/http"

	"github.com/creatorhub/creatorhub-api/internal/pkg/metrics"
)

// Metrics records Prometheus request metrics labelled by the matched chi route pattern
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done := metrics.HTTPStarted()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		done(r.Method, routePattern(r), rec.status)
	})
}
