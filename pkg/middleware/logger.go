package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/openreal2sim/review-dashboard/pkg/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger returns a middleware that logs the start and the end of every HTTP request with zap.
// The end line is logged at a level derived from the response status.
func Logger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			// handlers may rewrite the URL
			path := r.URL.Path
			query := r.URL.RawQuery
			requestID := requestid.FromRequest(r)
			logger := zap.S().Named("http").Desugar()

			level := zapcore.InfoLevel
			if isHealthCheck(r.Method, path) {
				level = zapcore.DebugLevel
			}

			logger.Check(level, "Request started").Write(
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", path),
				zap.String("query", query),
				zap.String("ip", getClientIP(r)),
				zap.String("user-agent", r.UserAgent()),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			endFields := []zapcore.Field{
				zap.String("request_id", requestID),
				zap.Int("status", ww.Status()),
				zap.String("method", r.Method),
				zap.String("path", path),
				zap.String("query", query),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_bytes", ww.BytesWritten()),
			}

			msg := "Request completed"
			switch {
			case ww.Status() >= 500:
				logger.Error(msg, endFields...)
			case ww.Status() >= 400:
				logger.Warn(msg, endFields...)
			default:
				if ce := logger.Check(level, msg); ce != nil {
					ce.Write(endFields...)
				}
			}
		})
	}
}

func isHealthCheck(method string, path string) bool {
	return method == http.MethodGet && path == "/health"
}

// getClientIP extracts the real client IP from the proxy headers with RemoteAddr as fallback.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
