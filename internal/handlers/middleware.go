package handlers

import (
	"net/http"
	"time"

	"gitlab.com/casesync.net/internal/core/ports/primary"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LogRequests logs method, target, status and latency of every request.
func LogRequests(logger primary.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Debug("Handled request",
				"method", r.Method,
				"target", r.URL.RequestURI(),
				"status", rec.status,
				"duration", time.Since(start).String())
		})
	}
}
