package txsender

import (
	"context"
	"errors"
	"sync"
	"testing"

	"creditpool/core"
	"creditpool/pkg/resthttp"
	"creditpool/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayout struct {
	mu     sync.Mutex
	paid   []string
	reject string
	status int
}

func (p *fakePayout) Payout(ctx context.Context, transfer *core.Transfer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if transfer.Opponent == p.reject {
		if p.status > 0 {
			return &resthttp.StatusError{Status: p.status, Body: "rejected"}
		}
		return errors.New("rejected")
	}

	p.paid = append(p.paid, transfer.Opponent)
	return nil
}

func queueTransfers(t *testing.T, store *memory.Store, opponents ...string) {
	ctx := context.Background()
	require.NoError(t, store.Tx(ctx, func(tx core.LedgerTx) error {
		for _, opponent := range opponents {
			if err := tx.CreateTransfer(ctx, &core.Transfer{
				TraceID:  "trace-" + opponent,
				Opponent: opponent,
				Amount:   decimal.New(1, 0),
				Action:   core.ActionTypeWithdraw,
			}); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestSender(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	queueTransfers(t, store, "alice", "bob")

	payouts := &fakePayout{reject: "bob"}
	s, err := New("UTC", "@every 1h", store, payouts)
	require.NoError(t, err)

	assert.Error(t, s.onWork(ctx))
	assert.Equal(t, []string{"alice"}, payouts.paid)

	pending, _ := store.ListPending(ctx, Limit)
	require.Len(t, pending, 1)
	assert.Equal(t, "bob", pending[0].Opponent)
	assert.Equal(t, 1, pending[0].Attempts)

	payouts.reject = ""
	require.NoError(t, s.onWork(ctx))
	pending, _ = store.ListPending(ctx, Limit)
	assert.Len(t, pending, 0)
	assert.Equal(t, []string{"alice", "bob"}, payouts.paid)
}

func TestSenderRejectedTransfer(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	queueTransfers(t, store, "alice", "bob")

	payouts := &fakePayout{reject: "bob", status: 400}
	s, err := New("UTC", "@every 1h", store, payouts)
	require.NoError(t, err)

	require.NoError(t, s.onWork(ctx))
	assert.Equal(t, []string{"alice"}, payouts.paid)

	pending, _ := store.ListPending(ctx, Limit)
	assert.Len(t, pending, 0)

	bob, ok := store.Transfer(ctx, "trace-bob")
	require.True(t, ok)
	assert.Equal(t, core.TransferStatusFailed, bob.Status)
	assert.Equal(t, 1, bob.Attempts)

	// a failed transfer is never retried
	payouts.reject = ""
	require.NoError(t, s.onWork(ctx))
	assert.Equal(t, []string{"alice"}, payouts.paid)
}

func TestSenderRetriesServerErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	queueTransfers(t, store, "bob")

	payouts := &fakePayout{reject: "bob", status: 502}
	s, err := New("UTC", "@every 1h", store, payouts)
	require.NoError(t, err)

	for i := 1; i < MaxAttempts; i++ {
		assert.Error(t, s.onWork(ctx))
		bob, _ := store.Transfer(ctx, "trace-bob")
		assert.Equal(t, core.TransferStatusPending, bob.Status)
		assert.Equal(t, i, bob.Attempts)
	}

	require.NoError(t, s.onWork(ctx))
	bob, _ := store.Transfer(ctx, "trace-bob")
	assert.Equal(t, core.TransferStatusFailed, bob.Status)
	assert.Equal(t, MaxAttempts, bob.Attempts)

	pending, _ := store.ListPending(ctx, Limit)
	assert.Len(t, pending, 0)
}
