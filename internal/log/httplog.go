package log

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// statusRecorder captures the status code and body size written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// HTTPMiddleware logs one structured entry per request. Server errors are
// logged at error level, everything else at debug.
func HTTPMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, req)

			fields := []interface{}{
				"method", req.Method,
				"path", req.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"size", rec.size,
				"remote_addr", req.RemoteAddr,
				"user_agent", req.UserAgent(),
			}
			if rec.status >= http.StatusInternalServerError {
				logger.Errorw("request failed", fields...)
				return
			}
			logger.Debugw("request served", fields...)
		})
	}
}
