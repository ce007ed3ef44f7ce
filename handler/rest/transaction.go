package rest

import (
	"net/http"

	"creditpool/core"
	"creditpool/handler/render"

	"github.com/spf13/cast"
)

const maxTransactionLimit = 500

// response ledger notifications after the given id
func transactionsHandler(transactionStr core.TransactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		from := cast.ToInt64(query.Get("from"))
		limit := cast.ToInt(query.Get("limit"))
		if limit <= 0 || limit > maxTransactionLimit {
			limit = maxTransactionLimit
		}

		var (
			transactions []*core.Transaction
			err          error
		)

		if identity := query.Get("identity"); identity != "" {
			transactions, err = transactionStr.ListByIdentity(ctx, identity, from, limit)
		} else {
			transactions, err = transactionStr.List(ctx, from, limit)
		}

		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, transactions)
	}
}
