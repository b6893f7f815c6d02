package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dan9191/gold-savings/internal/auth"
	"github.com/Dan9191/gold-savings/internal/config"
	"github.com/sirupsen/logrus"
)

type contextKey struct{}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the resolved identity in the request context.
func AuthMiddleware(cfg *config.Config, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			id, err := auth.ParseToken(token, cfg.JWTSecret)
			if err != nil {
				log.WithField("path", r.URL.Path).Debugf("Rejected token: %v", err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(auth.Identity)
	return id, ok
}

// RequestLogger logs every request with method, path and status
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.WithFields(logrus.Fields{
				"method":    r.Method,
				"path":      r.URL.Path,
				"remote_ip": r.RemoteAddr,
				"status":    rec.status,
			}).Info("Request handled")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
