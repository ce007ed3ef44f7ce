package auth

import (
	"context"
	"net/http"
	"strings"

	"creditpool/core"
	"creditpool/handler/render"

	"github.com/fox-one/pkg/logger"
)

type userKey struct{}

// WithUser context with the authenticated user
func WithUser(ctx context.Context, user *core.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom the authenticated user, if any
func UserFrom(ctx context.Context) (*core.User, bool) {
	user, ok := ctx.Value(userKey{}).(*core.User)
	return user, ok && user != nil
}

// HandleAuthentication resolve the bearer token into a user; anonymous requests pass through
func HandleAuthentication(session core.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromContext(ctx)

			accessToken := getBearerToken(r)
			if accessToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := session.Login(ctx, accessToken)
			if err != nil {
				log.WithError(err).Debugln("parse access token")
				next.ServeHTTP(w, r)
				return
			}

			ctx = logger.WithContext(ctx, log.WithField("identity", user.Identity))
			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		}

		return http.HandlerFunc(fn)
	}
}

// RequireUser reject anonymous requests
func RequireUser(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFrom(r.Context()); !ok {
			render.Unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

func getBearerToken(r *http.Request) string {
	s := r.Header.Get("Authorization")
	return strings.TrimPrefix(s, "Bearer ")
}
