package memory

import (
	"context"
	"time"

	"creditpool/core"
)

type ledgerTx struct {
	state *state
}

func (tx *ledgerTx) FindProfile(_ context.Context, identity string) (*core.CreditProfile, error) {
	profile := tx.state.profiles[identity]
	return &profile, nil
}

func (tx *ledgerTx) SaveProfile(_ context.Context, profile *core.CreditProfile) error {
	touch(&profile.CreatedAt, &profile.UpdatedAt)
	profile.Version++
	tx.state.profiles[profile.Identity] = *profile
	return nil
}

func (tx *ledgerTx) FindPool(_ context.Context, id string) (*core.Pool, error) {
	pool := tx.state.pools[id]
	return &pool, nil
}

func (tx *ledgerTx) SavePool(_ context.Context, pool *core.Pool) error {
	touch(&pool.CreatedAt, &pool.UpdatedAt)
	pool.Version++
	tx.state.pools[pool.ID] = *pool
	return nil
}

func (tx *ledgerTx) FindShare(_ context.Context, identity string) (*core.Share, error) {
	share := tx.state.shares[identity]
	return &share, nil
}

func (tx *ledgerTx) SaveShare(_ context.Context, share *core.Share) error {
	touch(&share.CreatedAt, &share.UpdatedAt)
	share.Version++
	tx.state.shares[share.Identity] = *share
	return nil
}

func (tx *ledgerTx) FindLoan(_ context.Context, identity string) (*core.Loan, error) {
	loan := tx.state.loans[identity]
	return &loan, nil
}

func (tx *ledgerTx) SaveLoan(_ context.Context, loan *core.Loan) error {
	touch(&loan.CreatedAt, &loan.UpdatedAt)
	loan.Version++
	tx.state.loans[loan.Identity] = *loan
	return nil
}

func (tx *ledgerTx) FindCollateral(_ context.Context, identity string) (*core.Collateral, error) {
	collateral := tx.state.collaterals[identity]
	return &collateral, nil
}

func (tx *ledgerTx) SaveCollateral(_ context.Context, collateral *core.Collateral) error {
	touch(&collateral.CreatedAt, &collateral.UpdatedAt)
	collateral.Version++
	tx.state.collaterals[collateral.Identity] = *collateral
	return nil
}

func (tx *ledgerTx) CreateTransaction(_ context.Context, transaction *core.Transaction) error {
	var lastID int64
	if n := len(tx.state.transactions); n > 0 {
		lastID = tx.state.transactions[n-1].ID
	}

	transaction.ID = lastID + 1
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}

	tx.state.transactions = append(tx.state.transactions, *transaction)
	return nil
}

func (tx *ledgerTx) CreateTransfer(_ context.Context, transfer *core.Transfer) error {
	// trace id is unique, creating twice is a no-op
	for _, t := range tx.state.transfers {
		if t.TraceID == transfer.TraceID {
			return nil
		}
	}

	var lastID int64
	if n := len(tx.state.transfers); n > 0 {
		lastID = tx.state.transfers[n-1].ID
	}

	transfer.ID = lastID + 1
	touch(&transfer.CreatedAt, &transfer.UpdatedAt)
	tx.state.transfers = append(tx.state.transfers, *transfer)
	return nil
}

func touch(createdAt, updatedAt *time.Time) {
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}

	*updatedAt = now
}
