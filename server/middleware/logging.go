package middleware

import (
	"net/http"
	"time"

	"github.com/skillsenselab/diard/logger"
)

// RequestLogger returns middleware that logs every request with method, path,
// status code, and duration. Probe paths are silently skipped so health checks
// do not flood the log.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbeEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      sw.status,
				"duration_ms": duration.Milliseconds(),
			}
			if r.ContentLength > 0 {
				fields["body_bytes"] = r.ContentLength
			}
			if id := r.Header.Get("X-Request-Id"); id != "" {
				fields["request_id"] = id
			}

			logByStatus(log, fields, sw.status)
		})
	}
}

func isProbeEndpoint(path string) bool {
	switch path {
	case "/health", "/alive", "/ready", "/info", "/metrics":
		return true
	}
	return false
}

// logByStatus logs request fields at the appropriate level based on the HTTP
// status code. If log is nil, the global logger is used.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	logErr := logger.Error
	logWarn := logger.Warn
	logInfo := logger.Info
	if log != nil {
		logErr = log.Error
		logWarn = log.Warn
		logInfo = log.Info
	}

	switch {
	case status >= 500:
		logErr("Request completed", fields)
	case status >= 400:
		logWarn("Request completed", fields)
	default:
		logInfo("Request completed", fields)
	}
}
