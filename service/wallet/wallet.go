package wallet

import (
	"context"
	"strings"

	"creditpool/core"
	"creditpool/pkg/resthttp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/logger"
)

// Config outbound transfer policy
type Config struct {
	// RequireHex only hex account addresses may receive transfers
	RequireHex bool
	Blocked    []string
}

// New new wallet service
func New(cfg Config) core.WalletService {
	blocked := make(map[string]bool, len(cfg.Blocked))
	for _, b := range cfg.Blocked {
		blocked[strings.ToLower(b)] = true
	}

	return &walletService{
		requireHex: cfg.RequireHex,
		blocked:    blocked,
	}
}

type walletService struct {
	requireHex bool
	blocked    map[string]bool
}

// Transfer validate the recipient and queue the transfer in the outbox of tx
func (s *walletService) Transfer(ctx context.Context, tx core.LedgerTx, transfer *core.Transfer) error {
	log := logger.FromContext(ctx).WithField("trace", transfer.TraceID)

	if !transfer.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	opponent := transfer.Opponent
	if opponent == "" || s.blocked[strings.ToLower(opponent)] {
		log.Infof("transfer to %q rejected", opponent)
		return core.ErrTransferRejected
	}

	if s.requireHex && !common.IsHexAddress(opponent) {
		log.Infof("transfer to %q rejected, not an account address", opponent)
		return core.ErrTransferRejected
	}

	transfer.Status = core.TransferStatusPending
	if err := tx.CreateTransfer(ctx, transfer); err != nil {
		log.WithError(err).Errorln("ledgers.CreateTransfer")
		return err
	}

	return nil
}

// NewPayout payout client posting transfers to endpoint
func NewPayout(endpoint string) core.PayoutService {
	return &payoutService{endpoint: endpoint}
}

type payoutService struct {
	endpoint string
}

func (s *payoutService) Payout(ctx context.Context, transfer *core.Transfer) error {
	if s.endpoint == "" {
		logger.FromContext(ctx).WithField("trace", transfer.TraceID).
			Infof("payout %s to %s (%s), no endpoint configured", transfer.Amount, transfer.Opponent, transfer.Action)
		return nil
	}

	_, err := resthttp.Execute(resthttp.WithRequestID(ctx, transfer.TraceID), "POST", s.endpoint, transfer, nil)
	return err
}
