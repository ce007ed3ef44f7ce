package auth

import (
	"net/http"
	"time"

	"creditpool/core"
	"creditpool/handler/param"
	"creditpool/handler/render"

	"github.com/twitchtv/twirp"
)

// HandleRefresh exchange a valid token for a fresh one
func HandleRefresh(session core.Session, maxTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TTL string `json:"ttl,omitempty"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		ctx := r.Context()
		user, _ := UserFrom(ctx)

		ttl := maxTTL
		if body.TTL != "" {
			d, err := time.ParseDuration(body.TTL)
			if err != nil || d <= 0 {
				render.Error(w, twirp.InvalidArgumentError("ttl", "must be a positive duration"))
				return
			}

			if d < ttl {
				ttl = d
			}
		}

		token, err := session.Issue(ctx, user.Identity, ttl)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"token": token, "expires_in": int64(ttl / time.Second)})
	}
}
