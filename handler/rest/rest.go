package rest

import (
	"errors"
	"net/http"

	"creditpool/core"
	"creditpool/handler/auth"
	"creditpool/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	credits core.CreditService,
	pools core.PoolService,
	limits core.LimitResolver,
	transactions core.TransactionStore,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/pool", poolHandler(pools))
	router.Get("/transactions", transactionsHandler(transactions))
	router.Route("/profiles/{identity}", func(r chi.Router) {
		r.Get("/", profileHandler(credits, pools))
		r.Get("/shares", sharesHandler(pools))
	})
	router.Get("/loans/{identity}", loanHandler(pools))
	router.Get("/collaterals/{identity}", collateralHandler(pools))
	router.Get("/limits/{identity}", limitHandler(pools, limits))

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Post("/genesis", genesisHandler(credits))
		r.Post("/deposit", amountHandler(pools.Deposit))
		r.Post("/withdraw", amountHandler(pools.Withdraw))
		r.Post("/borrow", amountHandler(pools.Borrow))
		r.Post("/repay", amountHandler(pools.Repay))
		r.Post("/collateral/deposit", amountHandler(pools.DepositCollateral))
		r.Post("/collateral/withdraw", amountHandler(pools.WithdrawCollateral))
		r.Post("/fees/withdraw", withdrawFeesHandler(pools))
	})

	return router
}
