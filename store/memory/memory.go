// Package memory keeps the whole ledger in process. Every Tx works on a copy
// of the state and swaps it in only when the unit of work succeeds.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"creditpool/core"
)

type state struct {
	profiles     map[string]core.CreditProfile
	pools        map[string]core.Pool
	shares       map[string]core.Share
	loans        map[string]core.Loan
	collaterals  map[string]core.Collateral
	transactions []core.Transaction
	transfers    []core.Transfer
}

func newState() *state {
	return &state{
		profiles:    map[string]core.CreditProfile{},
		pools:       map[string]core.Pool{},
		shares:      map[string]core.Share{},
		loans:       map[string]core.Loan{},
		collaterals: map[string]core.Collateral{},
	}
}

func (s *state) clone() *state {
	c := &state{
		profiles:     make(map[string]core.CreditProfile, len(s.profiles)),
		pools:        make(map[string]core.Pool, len(s.pools)),
		shares:       make(map[string]core.Share, len(s.shares)),
		loans:        make(map[string]core.Loan, len(s.loans)),
		collaterals:  make(map[string]core.Collateral, len(s.collaterals)),
		transactions: s.transactions[:len(s.transactions):len(s.transactions)],
		transfers:    append([]core.Transfer(nil), s.transfers...),
	}

	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.pools {
		c.pools[k] = v
	}
	for k, v := range s.shares {
		c.shares[k] = v
	}
	for k, v := range s.loans {
		c.loans[k] = v
	}
	for k, v := range s.collaterals {
		c.collaterals[k] = v
	}

	return c
}

// Store in-memory ledger
type Store struct {
	mu    sync.RWMutex
	state *state
}

// New new in-memory store
func New() *Store {
	return &Store{
		state: newState(),
	}
}

// Tx run fn against a private copy, commit on success
func (s *Store) Tx(ctx context.Context, fn func(tx core.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&ledgerTx{state: work}); err != nil {
		return err
	}

	s.state = work
	return nil
}

// View run fn against the committed state. Writes made by fn are discarded.
func (s *Store) View(ctx context.Context, fn func(tx core.LedgerTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&ledgerTx{state: s.state.clone()})
}

// List transactions with id greater than fromID
func (s *Store) List(ctx context.Context, fromID int64, limit int) ([]*core.Transaction, error) {
	return s.listTransactions(fromID, limit, func(*core.Transaction) bool { return true }), nil
}

// ListByIdentity transactions of an identity with id greater than fromID
func (s *Store) ListByIdentity(ctx context.Context, identity string, fromID int64, limit int) ([]*core.Transaction, error) {
	return s.listTransactions(fromID, limit, func(t *core.Transaction) bool { return t.Identity == identity }), nil
}

func (s *Store) listTransactions(fromID int64, limit int, match func(*core.Transaction) bool) []*core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 500
	}

	txs := s.state.transactions
	idx := sort.Search(len(txs), func(i int) bool { return txs[i].ID > fromID })

	var result []*core.Transaction
	for ; idx < len(txs) && len(result) < limit; idx++ {
		t := txs[idx]
		if match(&t) {
			result = append(result, &t)
		}
	}

	return result
}

// ListPending pending transfers, oldest first
func (s *Store) ListPending(ctx context.Context, limit int) ([]*core.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*core.Transfer
	for _, t := range s.state.transfers {
		if len(result) >= limit {
			break
		}

		if t.Status == core.TransferStatusPending {
			t := t
			result = append(result, &t)
		}
	}

	return result, nil
}

// MarkSent mark transfer delivered
func (s *Store) MarkSent(ctx context.Context, transfer *core.Transfer) error {
	return s.updateTransfer(transfer.ID, func(t *core.Transfer) {
		t.Status = core.TransferStatusSent
		t.Attempts++
	})
}

// MarkAttempt count a failed delivery attempt
func (s *Store) MarkAttempt(ctx context.Context, transfer *core.Transfer) error {
	return s.updateTransfer(transfer.ID, func(t *core.Transfer) {
		t.Attempts++
	})
}

// MarkFailed take a transfer out of the pending queue for good
func (s *Store) MarkFailed(ctx context.Context, transfer *core.Transfer) error {
	return s.updateTransfer(transfer.ID, func(t *core.Transfer) {
		t.Status = core.TransferStatusFailed
		t.Attempts++
	})
}

// Transfer find a transfer by trace id
func (s *Store) Transfer(ctx context.Context, traceID string) (*core.Transfer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.state.transfers {
		if t.TraceID == traceID {
			t := t
			return &t, true
		}
	}

	return nil, false
}

func (s *Store) updateTransfer(id int64, fn func(t *core.Transfer)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for idx := range s.state.transfers {
		if t := &s.state.transfers[idx]; t.ID == id {
			fn(t)
			t.UpdatedAt = time.Now()
			return nil
		}
	}

	return nil
}
