package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"meldeflow/pkg/apperrors"
	"meldeflow/pkg/platform/httputil"
	"meldeflow/pkg/requestcontext"
)

// RequireClerk authenticates a reviewing officer via a bearer JWT and places
// the clerk identity (sub claim) into the request context so HITL overrides
// can attribute corrections to an actor.
func RequireClerk(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				httputil.WriteError(w, apperrors.New(apperrors.CodeUnauthorized, "clerk token required"))
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(signingKey), nil
			})
			if err != nil || !token.Valid {
				logger.WarnContext(r.Context(), "clerk token rejected", "error", err)
				httputil.WriteError(w, apperrors.New(apperrors.CodeUnauthorized, "invalid clerk token"))
				return
			}

			sub, _ := claims.GetSubject()
			if sub == "" {
				httputil.WriteError(w, apperrors.New(apperrors.CodeUnauthorized, "clerk token missing subject"))
				return
			}

			ctx := requestcontext.WithActorID(r.Context(), sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
