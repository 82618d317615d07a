package middleware

import (
	"net/http"
	"strings"

	"rentals/pkg/auth"
	apperrors "rentals/pkg/errors"
	httputil "rentals/pkg/http"
	"rentals/pkg/logger"
)

type TokenParser interface {
	Parse(token string) (*auth.Actor, error)
}

// Authenticate resolves an optional bearer token into an auth.Actor.
// Requests without an Authorization header continue anonymously; a header
// that is present but invalid is rejected outright.
func Authenticate(parser TokenParser, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid authorization header"))
				return
			}

			actor, err := parser.Parse(strings.TrimSpace(raw))
			if err != nil {
				log.WithContext(r.Context()).Warn("Rejected bearer token",
					"path", r.URL.Path,
					"error", err,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := auth.WithActor(r.Context(), actor)
			ctx = logger.ContextWithActorID(ctx, actor.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
