package middleware

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fields := log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"ua":     r.Header.Get("User-Agent"),
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
				fields["trace_id"] = sc.TraceID().String()
			}
			log.WithFields(fields).Trace(" ====> request")
			next.ServeHTTP(w, r)
		})
	}
}
