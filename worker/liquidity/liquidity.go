package liquidity

import (
	"context"

	"creditpool/core"
	"creditpool/pkg/metrics"
	"creditpool/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Worker publishes pool aggregates and warns when available liquidity runs low
type Worker struct {
	*worker.BaseJob
	poolID  string
	ledgers core.LedgerStore
	// Threshold share of the pool value, in percent, below which idle liquidity is reported
	Threshold int64
}

// New new liquidity worker
func New(location, spec, poolID string, ledgers core.LedgerStore) (*Worker, error) {
	job, err := worker.NewBaseJob("liquidity", location, spec)
	if err != nil {
		return nil, err
	}

	w := &Worker{
		BaseJob:   job,
		poolID:    poolID,
		ledgers:   ledgers,
		Threshold: 10,
	}
	job.OnWork = w.onWork
	return w, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var pool *core.Pool
	if err := w.ledgers.View(ctx, func(tx core.LedgerTx) error {
		p, err := tx.FindPool(ctx, w.poolID)
		pool = p
		return err
	}); err != nil {
		log.WithError(err).Errorln("ledgers.FindPool")
		return err
	}

	metrics.Ledger().ObservePool(pool)

	if low(pool, w.Threshold) {
		log.WithField("available", pool.AvailableLiquidity()).
			WithField("borrowed", pool.TotalBorrowed).
			Warnln("available liquidity below threshold")
	}

	return nil
}

// low available liquidity under threshold percent of the pool value
func low(pool *core.Pool, threshold int64) bool {
	value := pool.Value()
	if !value.IsPositive() {
		return false
	}

	return pool.AvailableLiquidity().Mul(decimal.NewFromInt(100)).LessThan(value.Mul(decimal.NewFromInt(threshold)))
}
