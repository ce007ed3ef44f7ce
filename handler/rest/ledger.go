package rest

import (
	"context"
	"errors"
	"net/http"

	"creditpool/core"
	"creditpool/handler/auth"
	"creditpool/handler/param"
	"creditpool/handler/render"

	"github.com/shopspring/decimal"
)

type amountOp func(ctx context.Context, identity string, amount decimal.Decimal) (*core.Receipt, error)

// amountHandler run a pool operation on behalf of the authenticated user
func amountHandler(op amountOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, _ := auth.UserFrom(ctx)

		var body struct {
			Amount string `json:"amount" valid:"int,required"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount, err := decimal.NewFromString(body.Amount)
		if err != nil {
			render.BadRequest(w, errors.New("amount must be an integer in base units"))
			return
		}

		receipt, err := op(ctx, user.Identity, amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, receipt)
	}
}

func genesisHandler(credits core.CreditService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, _ := auth.UserFrom(ctx)

		score, err := credits.CalculateGenesisScore(ctx, user.Identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"identity": user.Identity, "score": score})
	}
}

func withdrawFeesHandler(pools core.PoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, _ := auth.UserFrom(ctx)

		receipt, err := pools.WithdrawFees(ctx, user.Identity)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, receipt)
	}
}
