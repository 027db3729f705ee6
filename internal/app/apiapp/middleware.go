package apiapp

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	httperrors "github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/errors"
)

const serverKeyHeader = "X-Server-Key"

func ApplyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestLogger(log))
}

// ServerAuthMiddleware gates the endpoints game servers call. Each server
// carries the fleet-wide shared secret in the X-Server-Key header.
func ServerAuthMiddleware(sharedSecret string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sharedSecret == "" {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "SERVER_AUTH_UNAVAILABLE",
					Message: "server authentication is not configured",
				})
				return
			}

			key := r.Header.Get(serverKeyHeader)
			if subtle.ConstantTimeCompare([]byte(key), []byte(sharedSecret)) != 1 {
				if log != nil {
					log.Debug("server key rejected", zap.String("path", r.URL.Path))
				}
				httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
					Code:    "FORBIDDEN",
					Message: "invalid server key",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// StaffAuthMiddleware gates the staff dashboard endpoints behind a bearer
// token.
func StaffAuthMiddleware(token string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "STAFF_AUTH_UNAVAILABLE",
					Message: "staff authentication is not configured",
				})
				return
			}

			presented, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				if log != nil {
					log.Debug("staff token rejected", zap.String("path", r.URL.Path))
				}
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "invalid staff token",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
