package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus transfer status
type TransferStatus int

const (
	// TransferStatusPending queued, not yet delivered
	TransferStatusPending TransferStatus = iota
	// TransferStatusSent delivered to the payout endpoint
	TransferStatusSent
	// TransferStatusFailed rejected by the payout endpoint or out of attempts,
	// never retried
	TransferStatusFailed
)

// String label of the status
func (s TransferStatus) String() string {
	switch s {
	case TransferStatusPending:
		return "pending"
	case TransferStatusSent:
		return "sent"
	case TransferStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transfer outbound value transfer queued by a ledger operation
type Transfer struct {
	ID        int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	TraceID   string          `sql:"size:36;unique_index:idx_transfers_trace_id" json:"trace_id,omitempty"`
	Opponent  string          `sql:"size:64" json:"opponent,omitempty"`
	Amount    decimal.Decimal `sql:"type:decimal(65,0)" json:"amount,omitempty"`
	Action    ActionType      `json:"action,omitempty"`
	Memo      string          `sql:"size:140" json:"memo,omitempty"`
	Status    TransferStatus  `sql:"default:0;index:idx_transfers_status" json:"status"`
	Attempts  int             `sql:"default:0" json:"attempts"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at,omitempty"`
}

// TransferStore transfer outbox
type TransferStore interface {
	ListPending(ctx context.Context, limit int) ([]*Transfer, error)
	MarkSent(ctx context.Context, transfer *Transfer) error
	MarkAttempt(ctx context.Context, transfer *Transfer) error
	MarkFailed(ctx context.Context, transfer *Transfer) error
}

// WalletService moves value out of the pool. Transfer runs as the last step of
// a ledger operation; a returned error aborts the whole operation.
type WalletService interface {
	Transfer(ctx context.Context, tx LedgerTx, transfer *Transfer) error
}

// PayoutService delivers queued transfers to the settlement endpoint
type PayoutService interface {
	Payout(ctx context.Context, transfer *Transfer) error
}
