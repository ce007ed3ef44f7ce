package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"creditpool/core"
	"creditpool/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := New(Config{RequireHex: true, Blocked: []string{"0x000000000000000000000000000000000000dEaD"}})

	queue := func(opponent string, amount int64) error {
		return store.Tx(ctx, func(tx core.LedgerTx) error {
			return s.Transfer(ctx, tx, &core.Transfer{
				TraceID:  opponent,
				Opponent: opponent,
				Amount:   decimal.NewFromInt(amount),
				Action:   core.ActionTypeWithdraw,
			})
		})
	}

	assert.Equal(t, core.ErrTransferRejected, queue("alice", 1))
	assert.Equal(t, core.ErrTransferRejected, queue("0x000000000000000000000000000000000000dead", 1))
	assert.Equal(t, core.ErrInvalidAmount, queue("0x52908400098527886E0F7030069857D2E4169EE7", 0))
	require.NoError(t, queue("0x52908400098527886E0F7030069857D2E4169EE7", 1))

	pending, _ := store.ListPending(ctx, 10)
	require.Len(t, pending, 1)
	assert.Equal(t, core.TransferStatusPending, pending[0].Status)
}

func TestPayout(t *testing.T) {
	var got core.Transfer
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trace-1", r.Header.Get("X-Request-Id"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	transfer := &core.Transfer{TraceID: "trace-1", Opponent: "alice", Amount: decimal.NewFromInt(5), Action: core.ActionTypeBorrow}
	require.NoError(t, NewPayout(srv.URL).Payout(context.Background(), transfer))
	assert.Equal(t, "alice", got.Opponent)
	assert.Equal(t, core.ActionTypeBorrow, got.Action)

	assert.NoError(t, NewPayout("").Payout(context.Background(), transfer))
}
