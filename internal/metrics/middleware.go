package metrics

import (
	"net/http"
	"strings"
	"time"
)

// UnmatchedRoute labels requests no route accepted (404 and 405), so that
// arbitrary paths do not each open a new series.
const UnmatchedRoute = "other"

// responseWriter records the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Route returns the path of the ServeMux pattern that served r, or
// UnmatchedRoute. It is only meaningful once the mux has dispatched r.
func Route(r *http.Request) string {
	if r.Pattern == "" {
		return UnmatchedRoute
	}
	// patterns may carry a method: "POST /api/v1/valuations"
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

// HTTPMiddleware records request count, latency and in-flight requests. It
// must wrap the ServeMux directly: the route label is read from the pattern
// the mux stores on the request.
func HTTPMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reg.InFlightInc()
			defer reg.InFlightDec()

			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			reg.RecordRequest(r.Method, Route(r), rw.statusCode, time.Since(start).Seconds())
		})
	}
}
