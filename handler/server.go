package handler

import (
	"net/http"

	"creditpool/core"
	"creditpool/handler/auth"
	"creditpool/handler/render"
	"creditpool/handler/rest"

	"github.com/go-chi/chi"
	"github.com/twitchtv/twirp"
)

// Server server
type Server struct {
	cfg          *core.Config
	session      core.Session
	credits      core.CreditService
	pools        core.PoolService
	limits       core.LimitResolver
	transactions core.TransactionStore
}

// New new server function
func New(
	cfg *core.Config,
	session core.Session,
	credits core.CreditService,
	pools core.PoolService,
	limits core.LimitResolver,
	transactions core.TransactionStore,
) Server {
	return Server{
		cfg:          cfg,
		session:      session,
		credits:      credits,
		pools:        pools,
		limits:       limits,
		transactions: transactions,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.Use(auth.HandleAuthentication(s.session))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, twirp.NotFoundError("not found"))
	})

	r.With(auth.RequireUser).Post("/auth/refresh", auth.HandleRefresh(s.session, s.cfg.Session.TTL))
	r.Mount("/", rest.Handle(s.credits, s.pools, s.limits, s.transactions))

	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
