package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"creditpool/core"
	"creditpool/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	properties := memory.NewPropertyStore()

	require.NoError(t, store.Tx(ctx, func(tx core.LedgerTx) error {
		for _, identity := range []string{"alice", "bob", "carol"} {
			if err := tx.CreateTransaction(ctx, core.NewTransaction(core.ActionTypeDeposit, "trace", identity, "1", nil)); err != nil {
				return err
			}
		}
		return nil
	}))

	var (
		received []string
		fail     bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		var body struct {
			Transactions []*core.Transaction `json:"transactions"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, tx := range body.Transactions {
			received = append(received, tx.Identity)
		}
	}))
	defer srv.Close()

	n, err := New("UTC", "@every 1h", srv.URL, 2, store, properties)
	require.NoError(t, err)

	require.NoError(t, n.onWork(ctx))
	assert.Equal(t, []string{"alice", "bob"}, received)
	checkpoint, _ := properties.Get(ctx, checkpointKey)
	assert.EqualValues(t, 2, checkpoint.Int64())

	// failed delivery keeps the checkpoint
	fail = true
	assert.Error(t, n.onWork(ctx))
	checkpoint, _ = properties.Get(ctx, checkpointKey)
	assert.EqualValues(t, 2, checkpoint.Int64())

	fail = false
	require.NoError(t, n.onWork(ctx))
	require.NoError(t, n.onWork(ctx))
	assert.Equal(t, []string{"alice", "bob", "carol"}, received)
}
