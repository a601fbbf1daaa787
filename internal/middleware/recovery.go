package middleware

import (
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogsave/internal/telemetry/metrics"
)

// PanicRecovery turns a handler panic into a 500, logging the stack.
// metricsManager may be nil.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					// client went away, let net/http deal with it
					panic(r)
				}

				log.WithFields(log.Fields{
					"method": req.Method,
					"path":   req.URL.Path,
					"stack":  string(debug.Stack()),
				}).Errorf("http: panic serving request: %v", r)

				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				http.Error(respWriter, "internal server error", http.StatusInternalServerError)
			}()

			// handler call
			next.ServeHTTP(respWriter, req)
		})
	}
}
