package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"meldeflow/pkg/apperrors"
	"meldeflow/pkg/platform/httputil"
)

// RequireAdminToken guards operational endpoints with a shared token. An empty
// configured token disables the surface entirely.
func RequireAdminToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				httputil.WriteError(w, apperrors.New(apperrors.CodeForbidden, "admin surface disabled"))
				return
			}
			provided := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				logger.WarnContext(r.Context(), "admin token rejected", "path", r.URL.Path)
				httputil.WriteError(w, apperrors.New(apperrors.CodeForbidden, "invalid admin token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
