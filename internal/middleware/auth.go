package middleware

import (
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Authenticate requires a bearer token and stores its profile id in the request context.
func Authenticate(cfg config.AuthConfig, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			token := raw
			if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing credentials")
				return
			}

			claims, err := auth.ParseToken(cfg, token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid token")
				return
			}

			ctx := auth.WithProfileID(r.Context(), claims.ProfileID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
