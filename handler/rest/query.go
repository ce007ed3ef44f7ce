package rest

import (
	"net/http"

	"creditpool/core"
	"creditpool/handler/render"
	"creditpool/handler/views"

	"github.com/go-chi/chi"
)

func poolHandler(pools core.PoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool, err := pools.GetPool(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.PoolFrom(pool))
	}
}

func profileHandler(credits core.CreditService, pools core.PoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity := chi.URLParam(r, "identity")

		profile, err := credits.GetProfile(ctx, identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		breakdown, err := credits.GetScoreBreakdown(ctx, identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		limit, err := pools.GetBorrowLimit(ctx, identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		profile.Identity = identity
		render.JSON(w, views.Profile{
			CreditProfile: *profile,
			Breakdown:     breakdown,
			BorrowLimit:   limit,
		})
	}
}

func sharesHandler(pools core.PoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity := chi.URLParam(r, "identity")

		shares, err := pools.GetShares(ctx, identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		value, err := pools.GetShareValue(ctx, identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Share{Identity: identity, Shares: shares, Value: value})
	}
}

func loanHandler(pools core.PoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity := chi.URLParam(r, "identity")

		loan, err := pools.GetLoan(ctx, identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		due, err := pools.GetAmountDue(ctx, identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		loan.Identity = identity
		render.JSON(w, views.Loan{Loan: *loan, Due: due})
	}
}

func collateralHandler(pools core.PoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := chi.URLParam(r, "identity")
		amount, err := pools.GetCollateral(r.Context(), identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Collateral{Identity: identity, Amount: amount})
	}
}

func limitHandler(pools core.PoolService, limits core.LimitResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := chi.URLParam(r, "identity")
		limit, err := pools.GetBorrowLimit(r.Context(), identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Limit{Identity: identity, Policy: limits.Policy(), Limit: limit})
	}
}
