package middleware

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// sessionRecorder lets the logger see the session id resolved by an inner
// middleware.
type sessionRecorder struct {
	id string
}

const recorderKey contextKey = "sessionRecorder"

func withRecorder(ctx context.Context, rec *sessionRecorder) context.Context {
	return context.WithValue(ctx, recorderKey, rec)
}

func recordSession(ctx context.Context, sessionID string) {
	if rec, ok := ctx.Value(recorderKey).(*sessionRecorder); ok {
		rec.id = sessionID
	}
}

func LoggerMiddleware(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			rec := &sessionRecorder{}
			r = r.WithContext(withRecorder(r.Context(), rec))

			next.ServeHTTP(rw, r)

			sessionID := rec.id
			if sessionID == "" {
				sessionID = "anonymous"
			}

			entry := logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   clientIP(r),
				"status":   rw.statusCode,
				"duration": time.Since(start).String(),
				"session":  sessionID,
			})

			switch {
			case rw.statusCode >= 500:
				entry.Error("request failed")
			case rw.statusCode >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request handled")
			}
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
