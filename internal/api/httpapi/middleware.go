package httpapi

import (
	"net/http"
	"strings"

	"github.com/harborworks/marinedesk/internal/api/auth"
	apperrors "github.com/harborworks/marinedesk/internal/errors"
	"github.com/harborworks/marinedesk/internal/platform/requestctx"
)

// requireAuth verifies the bearer token and stores the caller identity on the
// request context. Requests without a valid token never reach a handler.
func requireAuth(cfg auth.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeError(w, err)
				return
			}
			caller, err := auth.VerifyToken(token, cfg)
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithIdentity(r.Context(), caller)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "authorization header is required")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "authorization header must be a bearer token")
	}
	return strings.TrimSpace(token), nil
}
