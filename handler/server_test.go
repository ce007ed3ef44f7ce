package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"creditpool/core"
	"creditpool/internal/interest"
	"creditpool/internal/scoring"
	"creditpool/pkg/number"
	"creditpool/service/balance"
	"creditpool/service/credit"
	"creditpool/service/limit"
	"creditpool/service/pool"
	"creditpool/service/session"
	"creditpool/service/wallet"
	"creditpool/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	sessions core.Session
}

func newTestServer(t *testing.T) *testServer {
	ctx := context.Background()
	store := memory.New()
	cfg := &core.Config{Admins: []string{"admin"}}
	cfg.Session.TTL = time.Hour

	credits := credit.New(credit.Config{
		Params: scoring.DefaultParams(),
		Tiers:  scoring.DefaultTierTable(),
		Admins: cfg.Admins,
	}, store, balance.NewStatic(nil))

	limits := limit.NewTiered(scoring.DefaultTierTable())
	pools := pool.New(pool.Config{Interest: interest.DefaultModel(), Admins: cfg.Admins}, store, credits, limits, wallet.New(wallet.Config{}), nil)
	capability, err := credits.AuthorizePool(ctx, "admin", core.DefaultPoolID)
	require.NoError(t, err)
	pools.SetCapability(capability)

	sessions := session.New(session.Config{Secret: "test", Issuer: "creditpool"})
	srv := New(cfg, sessions, credits, pools, limits, store)

	ts := httptest.NewServer(srv.HandleRestAPI())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path, identity, body string, out interface{}) int {
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	if identity != "" {
		token, err := s.sessions.Issue(context.Background(), identity, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func TestRestAPI(t *testing.T) {
	s := newTestServer(t)
	unit := number.Units("1").String()

	assert.Equal(t, http.StatusUnauthorized, s.do(t, "POST", "/deposit", "", `{"amount":"`+unit+`"}`, nil))

	var receipt core.Receipt
	require.Equal(t, http.StatusOK, s.do(t, "POST", "/deposit", "alice", `{"amount":"`+unit+`"}`, &receipt))
	assert.Equal(t, unit, receipt.Shares.String())

	var profile struct {
		Score       int    `json:"score"`
		BorrowLimit string `json:"borrow_limit"`
	}
	require.Equal(t, http.StatusOK, s.do(t, "GET", "/profiles/alice", "", "", &profile))
	assert.Equal(t, 400, profile.Score)
	assert.Equal(t, number.Units("0.1").String(), profile.BorrowLimit)

	var failure struct {
		Code int `json:"code"`
	}
	assert.Equal(t, http.StatusBadRequest, s.do(t, "POST", "/borrow", "alice", `{"amount":"`+number.Units("0.2").String()+`"}`, &failure))
	assert.Equal(t, int(core.ErrExceedsLimit), failure.Code)

	assert.Equal(t, http.StatusPreconditionFailed, s.do(t, "POST", "/borrow", "bob", `{"amount":"1"}`, &failure))
	assert.Equal(t, int(core.ErrProfileNotInitialized), failure.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, "POST", "/borrow", "alice", `{"amount":"0.5"}`, nil))

	require.Equal(t, http.StatusOK, s.do(t, "POST", "/borrow", "alice", `{"amount":"`+number.Units("0.05").String()+`"}`, &receipt))

	var poolView struct {
		TotalBorrowed      string `json:"total_borrowed"`
		AvailableLiquidity string `json:"available_liquidity"`
	}
	require.Equal(t, http.StatusOK, s.do(t, "GET", "/pool", "", "", &poolView))
	assert.Equal(t, number.Units("0.05").String(), poolView.TotalBorrowed)
	assert.Equal(t, number.Units("0.95").String(), poolView.AvailableLiquidity)

	var txs []*core.Transaction
	require.Equal(t, http.StatusOK, s.do(t, "GET", "/transactions?identity=alice&limit=50", "", "", &txs))
	require.NotEmpty(t, txs)
	assert.Equal(t, core.ActionTypeBorrow, txs[len(txs)-1].Action)

	assert.Equal(t, http.StatusForbidden, s.do(t, "POST", "/fees/withdraw", "alice", "", nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, "GET", "/nowhere", "", "", nil))
}

func TestRefreshToken(t *testing.T) {
	s := newTestServer(t)

	var body struct {
		Token string `json:"token"`
	}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, "POST", "/auth/refresh", "", "", nil))
	require.Equal(t, http.StatusOK, s.do(t, "POST", "/auth/refresh", "alice", `{"ttl":"10m"}`, &body))

	user, err := s.sessions.Login(context.Background(), body.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Identity)
}
