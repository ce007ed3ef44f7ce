package txsender

import (
	"context"
	"errors"

	"creditpool/core"
	"creditpool/pkg/metrics"
	"creditpool/pkg/resthttp"
	"creditpool/worker"

	"github.com/fox-one/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	// Limit transfers delivered per round
	Limit = 20
	// MaxAttempts deliveries tried before a transfer is parked as failed
	MaxAttempts = 10
)

// Sender delivers queued transfers to the payout endpoint
type Sender struct {
	*worker.BaseJob
	transfers core.TransferStore
	payouts   core.PayoutService
}

// New new sender firing on spec
func New(location, spec string, transfers core.TransferStore, payouts core.PayoutService) (*Sender, error) {
	job, err := worker.NewBaseJob("txsender", location, spec)
	if err != nil {
		return nil, err
	}

	sender := &Sender{
		BaseJob:   job,
		transfers: transfers,
		payouts:   payouts,
	}
	job.OnWork = sender.onWork
	return sender, nil
}

func (w *Sender) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	transfers, err := w.transfers.ListPending(ctx, Limit)
	if err != nil {
		log.WithError(err).Errorln("transfers.ListPending")
		return err
	}

	var g errgroup.Group
	for _, transfer := range transfers {
		transfer := transfer
		g.Go(func() error {
			return w.handleTransfer(ctx, transfer)
		})
	}

	return g.Wait()
}

func (w *Sender) handleTransfer(ctx context.Context, transfer *core.Transfer) error {
	log := logger.FromContext(ctx).WithField("trace_id", transfer.TraceID)
	ctx = logger.WithContext(ctx, log)

	err := w.payouts.Payout(ctx, transfer)
	if err == nil {
		metrics.Ledger().ObserveTransfer(core.TransferStatusSent)
		if err := w.transfers.MarkSent(ctx, transfer); err != nil {
			log.WithError(err).Errorln("transfers.MarkSent")
			return err
		}

		return nil
	}

	if permanent(err) || transfer.Attempts+1 >= MaxAttempts {
		metrics.Ledger().ObserveTransfer(core.TransferStatusFailed)
		log.WithError(err).WithField("attempts", transfer.Attempts+1).Errorln("payouts.Payout: transfer failed")
		if err := w.transfers.MarkFailed(ctx, transfer); err != nil {
			log.WithError(err).Errorln("transfers.MarkFailed")
			return err
		}

		return nil
	}

	metrics.Ledger().ObserveTransfer(core.TransferStatusPending)
	log.WithError(err).Warnln("payouts.Payout")
	if err := w.transfers.MarkAttempt(ctx, transfer); err != nil {
		log.WithError(err).Errorln("transfers.MarkAttempt")
	}

	return err
}

// permanent reports whether the payout endpoint refused the transfer outright
func permanent(err error) bool {
	var se *resthttp.StatusError
	return errors.As(err, &se) && !se.Temporary()
}
