package hc

import (
	"net/http"
	"time"

	"creditpool/core"
	"creditpool/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Handle handle hc request, the ledger must answer a read for the check to pass
func Handle(ver string, ledgers core.LedgerStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(ver, ledgers))
	return r
}

func handle(version string, ledgers core.LedgerStore) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ledgers.View(r.Context(), func(tx core.LedgerTx) error {
			_, err := tx.FindPool(r.Context(), core.DefaultPoolID)
			return err
		}); err != nil {
			render.Error(w, err)
			return
		}

		uptime := time.Since(b).Truncate(time.Millisecond)
		render.JSON(w, render.H{
			"uptime":  uptime.String(),
			"version": version,
		})
	}
}
