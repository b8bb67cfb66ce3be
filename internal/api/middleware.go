package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/security"
)

type contextKey string

const actorKey contextKey = "actor"

// actorFrom returns the authenticated actor placed in the request context
// by the auth middleware.
func actorFrom(r *http.Request) domain.Actor {
	actor, _ := r.Context().Value(actorKey).(domain.Actor)
	return actor
}

// authMiddleware resolves the Bearer token to an actor and stores it in
// the request context. Requests without a valid token are rejected here;
// role checks stay in the policy layer.
func authMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, domain.Unauthenticated("missing bearer token"))
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, domain.Unauthenticated(err.Error()))
				return
			}
			ctx := context.WithValue(r.Context(), actorKey, claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs each request with method, path, status and latency.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// recoveryMiddleware recovers from handler panics and returns a 500.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("handler panic", "panic", rec, "stack", string(debug.Stack()))
				writeError(w, domain.Internal())
			}
		}()
		next.ServeHTTP(w, r)
	})
}
