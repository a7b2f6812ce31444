package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimid "github.com/go-chi/chi/v5/middleware"

	"contactsvc/internal/common"
	"contactsvc/internal/logging"
	"contactsvc/internal/server/models"
)

// IdentityResolver turns a bearer access token into a user record.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (*models.User, error)
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

// Authenticator validates the bearer access token and sets the user in the
// request context (see UserFromContext).
type Authenticator struct {
	resolver IdentityResolver
}

func NewAuthenticator(resolver IdentityResolver) *Authenticator {
	return &Authenticator{resolver: resolver}
}

func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, common.ErrUnauthenticated)
			return
		}
		user, err := a.resolver.ResolveIdentity(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// requestLogger logs one line per request with the chi request id, status and
// duration.
func requestLogger(logger logging.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info(r.Context(), "request",
				"request_id", chimid.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
			)
		})
	}
}
