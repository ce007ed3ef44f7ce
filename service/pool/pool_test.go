package pool

import (
	"context"
	"fmt"
	"testing"
	"time"

	"creditpool/core"
	"creditpool/internal/interest"
	"creditpool/internal/scoring"
	"creditpool/pkg/number"
	"creditpool/service/attestation"
	"creditpool/service/balance"
	"creditpool/service/credit"
	"creditpool/service/limit"
	"creditpool/service/price"
	"creditpool/service/wallet"
	"creditpool/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin = "admin"
	alice = "alice"
	bob   = "bob"
	carol = "carol"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type rejectWallet struct{}

func (rejectWallet) Transfer(ctx context.Context, tx core.LedgerTx, transfer *core.Transfer) error {
	return core.ErrTransferRejected
}

type fixture struct {
	ctx     context.Context
	store   *memory.Store
	oracle  *balance.Static
	credits core.CreditService
	pool    core.PoolService
	clock   *fakeClock
}

type option func(f *fixture, wallets *core.WalletService, limits *core.LimitResolver)

func withWallet(w core.WalletService) option {
	return func(_ *fixture, wallets *core.WalletService, _ *core.LimitResolver) {
		*wallets = w
	}
}

func withLTV(verified ...string) option {
	return func(_ *fixture, _ *core.WalletService, limits *core.LimitResolver) {
		*limits = limit.NewLTV(scoring.DefaultLTVTable(), attestation.NewStatic(verified...), price.NewStatic(decimal.NewFromInt(3000)))
	}
}

func newFixture(t *testing.T, opts ...option) *fixture {
	f := &fixture{
		ctx:    context.Background(),
		store:  memory.New(),
		oracle: balance.NewStatic(nil),
		clock:  &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	f.credits = credit.New(credit.Config{
		Params: scoring.DefaultParams(),
		Tiers:  scoring.DefaultTierTable(),
		Admins: []string{admin},
	}, f.store, f.oracle)

	var (
		wallets = wallet.New(wallet.Config{})
		limits  = limit.NewTiered(scoring.DefaultTierTable())
	)
	for _, opt := range opts {
		opt(f, &wallets, &limits)
	}

	f.pool = New(Config{
		PoolID:   core.DefaultPoolID,
		Interest: interest.DefaultModel(),
		Admins:   []string{admin},
	}, f.store, f.credits, limits, wallets, f.clock)

	capability, err := f.credits.AuthorizePool(f.ctx, admin, core.DefaultPoolID)
	require.NoError(t, err)
	f.pool.SetCapability(capability)
	return f
}

func (f *fixture) genesis(t *testing.T, identity, units string) {
	f.oracle.Set(identity, number.Units(units))
	_, err := f.credits.CalculateGenesisScore(f.ctx, identity)
	require.NoError(t, err)
}

func (f *fixture) deposit(t *testing.T, identity string, amount decimal.Decimal) *core.Receipt {
	r, err := f.pool.Deposit(f.ctx, identity, amount)
	require.NoError(t, err)
	return r
}

func (f *fixture) poolState(t *testing.T) *core.Pool {
	pool, err := f.pool.GetPool(f.ctx)
	require.NoError(t, err)
	return pool
}

func (f *fixture) seedPool(t *testing.T, pool *core.Pool) {
	require.NoError(t, f.store.Tx(f.ctx, func(tx core.LedgerTx) error {
		pool.ID = core.DefaultPoolID
		return tx.SavePool(f.ctx, pool)
	}))
}

func TestDepositMintsShares(t *testing.T) {
	f := newFixture(t)

	r := f.deposit(t, alice, number.Units("1"))
	assert.Equal(t, number.Units("1").String(), r.Shares.String())

	r = f.deposit(t, bob, number.Units("1"))
	assert.Equal(t, number.Units("1").String(), r.Shares.String())

	pool := f.poolState(t)
	assert.Equal(t, number.Units("2").String(), pool.TotalShares.String())
	assert.Equal(t, number.Units("2").String(), pool.Balance.String())

	shares, _ := f.pool.GetShares(f.ctx, bob)
	assert.Equal(t, number.Units("1").String(), shares.String())

	// deposits feed the deposit boost
	score, _ := f.credits.GetCreditScore(f.ctx, alice)
	assert.Equal(t, 400, score)

	_, err := f.pool.Deposit(f.ctx, alice, decimal.Zero)
	assert.Equal(t, core.ErrInvalidAmount, err)
	_, err = f.pool.Deposit(f.ctx, alice, decimal.NewFromFloat(0.5))
	assert.Equal(t, core.ErrInvalidAmount, err)
	_, err = f.pool.Deposit(f.ctx, "", decimal.NewFromInt(1))
	assert.Equal(t, core.ErrInvalidIdentity, err)
}

func TestDepositDustAndEmptyPool(t *testing.T) {
	f := newFixture(t)

	f.seedPool(t, &core.Pool{TotalShares: decimal.NewFromInt(1), Balance: decimal.NewFromInt(10)})
	_, err := f.pool.Deposit(f.ctx, alice, decimal.NewFromInt(5))
	assert.Equal(t, core.ErrDustDeposit, err)

	// nothing minted, no profile created
	shares, _ := f.pool.GetShares(f.ctx, alice)
	assert.True(t, shares.IsZero())
	ok, _ := f.credits.IsProfileInitialized(f.ctx, alice)
	assert.False(t, ok)

	r := f.deposit(t, alice, decimal.NewFromInt(10))
	assert.Equal(t, "1", r.Shares.String())

	f = newFixture(t)
	f.seedPool(t, &core.Pool{TotalShares: decimal.NewFromInt(10)})
	_, err = f.pool.Deposit(f.ctx, alice, decimal.NewFromInt(5))
	assert.Equal(t, core.ErrPoolEmpty, err)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, bob, number.Units("1"))

	_, err := f.pool.Withdraw(f.ctx, bob, number.Units("2"))
	assert.Equal(t, core.ErrInsufficientShares, err)
	_, err = f.pool.Withdraw(f.ctx, bob, decimal.Zero)
	assert.Equal(t, core.ErrInvalidAmount, err)

	r, err := f.pool.Withdraw(f.ctx, bob, number.Units("0.4"))
	require.NoError(t, err)
	assert.Equal(t, number.Units("0.4").String(), r.Amount.String())

	pool := f.poolState(t)
	assert.Equal(t, number.Units("0.6").String(), pool.TotalShares.String())
	assert.Equal(t, number.Units("0.6").String(), pool.Balance.String())

	pending, _ := f.store.ListPending(f.ctx, 10)
	require.Len(t, pending, 1)
	assert.Equal(t, bob, pending[0].Opponent)
	assert.Equal(t, core.ActionTypeWithdraw, pending[0].Action)
	assert.Equal(t, number.Units("0.4").String(), pending[0].Amount.String())
}

func TestWithdrawLimitedByLiquidity(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, bob, number.Units("0.2"))
	f.genesis(t, alice, "1")

	_, err := f.pool.Borrow(f.ctx, alice, number.Units("0.1"))
	require.NoError(t, err)

	_, err = f.pool.Withdraw(f.ctx, bob, number.Units("0.2"))
	assert.Equal(t, core.ErrInsufficientLiquidity, err)

	_, err = f.pool.Withdraw(f.ctx, bob, number.Units("0.1"))
	assert.NoError(t, err)

	liquidity, _ := f.pool.GetAvailableLiquidity(f.ctx)
	assert.True(t, liquidity.IsZero())
}

func TestBorrowPreconditions(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, bob, number.Units("0.05"))

	_, err := f.pool.Borrow(f.ctx, alice, number.Units("0.01"))
	assert.Equal(t, core.ErrProfileNotInitialized, err)

	// score 500 resolves to the low tier, 0.1 unit
	f.genesis(t, alice, "1")
	limit, _ := f.pool.GetBorrowLimit(f.ctx, alice)
	assert.Equal(t, number.Units("0.1").String(), limit.String())

	_, err = f.pool.Borrow(f.ctx, alice, number.Units("0.1").Add(decimal.NewFromInt(1)))
	assert.Equal(t, core.ErrExceedsLimit, err)

	_, err = f.pool.Borrow(f.ctx, alice, number.Units("0.1"))
	assert.Equal(t, core.ErrInsufficientLiquidity, err)

	_, err = f.pool.Borrow(f.ctx, alice, decimal.Zero)
	assert.Equal(t, core.ErrInvalidAmount, err)

	// score below 200 disables borrowing
	f.genesis(t, carol, "0.01")
	_, err = f.pool.Borrow(f.ctx, carol, decimal.NewFromInt(1))
	assert.Equal(t, core.ErrExceedsLimit, err)

	_, err = f.pool.Borrow(f.ctx, alice, number.Units("0.05"))
	require.NoError(t, err)

	_, err = f.pool.Borrow(f.ctx, alice, decimal.NewFromInt(1))
	assert.Equal(t, core.ErrLoanActive, err)

	loan, _ := f.pool.GetLoan(f.ctx, alice)
	assert.True(t, loan.Active)
	assert.Equal(t, number.Units("0.05").String(), loan.Principal.String())
	assert.Equal(t, f.clock.Now(), loan.StartTime)

	profile, _ := f.credits.GetProfile(f.ctx, alice)
	assert.Equal(t, number.Units("0.05").String(), profile.TotalBorrowed.String())
}

func TestBorrowRepayImmediately(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, bob, number.Units("1"))
	f.genesis(t, alice, "1.5")

	principal := number.Units("0.1")
	_, err := f.pool.Borrow(f.ctx, alice, principal)
	require.NoError(t, err)

	due, err := f.pool.GetAmountDue(f.ctx, alice)
	require.NoError(t, err)
	assert.True(t, due.Interest.IsZero())
	assert.Equal(t, principal.String(), due.Total.String())

	_, err = f.pool.Repay(f.ctx, alice, principal.Sub(decimal.NewFromInt(1)))
	assert.Equal(t, core.ErrInsufficientRepayment, err)

	r, err := f.pool.Repay(f.ctx, alice, principal)
	require.NoError(t, err)
	assert.True(t, r.Interest.IsZero())
	assert.True(t, r.Refund.IsZero())

	loan, _ := f.pool.GetLoan(f.ctx, alice)
	assert.False(t, loan.Active)

	_, err = f.pool.Repay(f.ctx, alice, principal)
	assert.Equal(t, core.ErrNoActiveLoan, err)

	pool := f.poolState(t)
	assert.Equal(t, number.Units("1").String(), pool.Balance.String())
	assert.True(t, pool.TotalBorrowed.IsZero())
	assert.True(t, pool.TreasuryFees.IsZero())

	// repayment boost is driven by the principal
	breakdown, _ := f.credits.GetScoreBreakdown(f.ctx, alice)
	assert.Equal(t, core.ScoreBreakdown{Genesis: 500, Deposit: 0, Repayment: 100, Total: 600}, *breakdown)

	// the borrow transfer is the only one queued
	pending, _ := f.store.ListPending(f.ctx, 10)
	require.Len(t, pending, 1)
	assert.Equal(t, core.ActionTypeBorrow, pending[0].Action)
}

func TestRepayWithInterest(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, bob, number.Units("1"))
	f.genesis(t, alice, "1")

	_, err := f.pool.Borrow(f.ctx, alice, number.Units("0.1"))
	require.NoError(t, err)

	f.clock.Advance(time.Duration(interest.SecondsPerYear) * time.Second)

	due, _ := f.pool.GetAmountDue(f.ctx, alice)
	assert.Equal(t, number.Units("0.005").String(), due.Interest.String())
	assert.Equal(t, number.Units("0.001").String(), due.TreasuryFee.String())
	assert.Equal(t, number.Units("0.004").String(), due.LPInterest.String())

	r, err := f.pool.Repay(f.ctx, alice, number.Units("0.2"))
	require.NoError(t, err)
	assert.Equal(t, number.Units("0.105").String(), r.Amount.String())
	assert.Equal(t, number.Units("0.095").String(), r.Refund.String())

	pool := f.poolState(t)
	assert.Equal(t, number.Units("1.005").String(), pool.Balance.String())
	assert.Equal(t, number.Units("0.001").String(), pool.TreasuryFees.String())

	fees, _ := f.pool.TreasuryFees(f.ctx)
	assert.Equal(t, number.Units("0.001").String(), fees.String())

	// lp interest stays with the liquidity providers
	value, _ := f.pool.GetShareValue(f.ctx, bob)
	assert.Equal(t, number.Units("1.004").String(), value.String())

	pending, _ := f.store.ListPending(f.ctx, 10)
	require.Len(t, pending, 2)
	assert.Equal(t, core.ActionTypeRepayRefund, pending[1].Action)
	assert.Equal(t, number.Units("0.095").String(), pending[1].Amount.String())

	// treasury fees never leave through lp withdrawals
	_, err = f.pool.Withdraw(f.ctx, bob, number.Units("1"))
	require.NoError(t, err)
	pool = f.poolState(t)
	assert.Equal(t, pool.TreasuryFees.String(), pool.Balance.String())
}

func TestWithdrawFees(t *testing.T) {
	f := newFixture(t)

	_, err := f.pool.WithdrawFees(f.ctx, admin)
	assert.Equal(t, core.ErrNoFees, err)

	f.deposit(t, bob, number.Units("1"))
	f.genesis(t, alice, "1")
	_, err = f.pool.Borrow(f.ctx, alice, number.Units("0.1"))
	require.NoError(t, err)
	f.clock.Advance(time.Duration(interest.SecondsPerYear) * time.Second)
	_, err = f.pool.Repay(f.ctx, alice, number.Units("0.105"))
	require.NoError(t, err)

	_, err = f.pool.WithdrawFees(f.ctx, alice)
	assert.Equal(t, core.ErrUnauthorized, err)

	r, err := f.pool.WithdrawFees(f.ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, number.Units("0.001").String(), r.Amount.String())

	pool := f.poolState(t)
	assert.True(t, pool.TreasuryFees.IsZero())
	assert.Equal(t, number.Units("1.004").String(), pool.Balance.String())

	_, err = f.pool.WithdrawFees(f.ctx, admin)
	assert.Equal(t, core.ErrNoFees, err)
}

func TestSharePriceNeverDecreases(t *testing.T) {
	f := newFixture(t)
	f.genesis(t, alice, "1")
	f.genesis(t, carol, "1")

	price := func() (decimal.Decimal, decimal.Decimal) {
		pool := f.poolState(t)
		return pool.Value(), pool.TotalShares
	}

	check := func(step string, prevValue, prevShares decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
		value, shares := price()
		// value/shares >= prevValue/prevShares
		assert.True(t, value.Mul(prevShares).GreaterThanOrEqual(prevValue.Mul(shares)), step)
		return value, shares
	}

	f.deposit(t, bob, number.Units("0.7"))
	value, shares := price()

	steps := []func(){
		func() { _, _ = f.pool.Borrow(f.ctx, alice, decimal.NewFromInt(33333333333333333)) },
		func() { f.clock.Advance(97 * 24 * time.Hour) },
		func() { f.deposit(t, carol, decimal.NewFromInt(123456789012345678)) },
		func() { _, _ = f.pool.Borrow(f.ctx, carol, decimal.NewFromInt(77777777777777777)) },
		func() { f.clock.Advance(13*time.Hour + 7*time.Second) },
		func() { _, _ = f.pool.Repay(f.ctx, alice, number.Units("1")) },
		func() { f.deposit(t, bob, decimal.NewFromInt(999999999999)) },
		func() { f.clock.Advance(200 * 24 * time.Hour) },
		func() { _, _ = f.pool.Repay(f.ctx, carol, number.Units("1")) },
		func() { f.deposit(t, alice, decimal.NewFromInt(3)) },
	}

	for idx, step := range steps {
		step()
		value, shares = check(fmt.Sprintf("step %d", idx), value, shares)
	}

	pool := f.poolState(t)
	assert.True(t, pool.TotalBorrowed.IsZero())
	assert.True(t, pool.TreasuryFees.IsPositive())
}

func TestTransferRejectionRollsBack(t *testing.T) {
	f := newFixture(t, withWallet(rejectWallet{}))
	f.deposit(t, bob, number.Units("1"))
	f.genesis(t, alice, "1")

	before, _ := f.store.List(f.ctx, 0, 100)
	poolBefore := f.poolState(t)

	_, err := f.pool.Borrow(f.ctx, alice, number.Units("0.1"))
	assert.Equal(t, core.ErrTransferRejected, err)

	loan, _ := f.pool.GetLoan(f.ctx, alice)
	assert.False(t, loan.Active)

	profile, _ := f.credits.GetProfile(f.ctx, alice)
	assert.True(t, profile.TotalBorrowed.IsZero())

	poolAfter := f.poolState(t)
	assert.Equal(t, poolBefore.Balance.String(), poolAfter.Balance.String())
	assert.Equal(t, poolBefore.TotalBorrowed.String(), poolAfter.TotalBorrowed.String())

	_, err = f.pool.Withdraw(f.ctx, bob, number.Units("1"))
	assert.Equal(t, core.ErrTransferRejected, err)
	shares, _ := f.pool.GetShares(f.ctx, bob)
	assert.Equal(t, number.Units("1").String(), shares.String())

	after, _ := f.store.List(f.ctx, 0, 100)
	assert.Equal(t, len(before), len(after))
}

type reentrantWallet struct {
	core.WalletService
	pool core.PoolService
	err  error
}

func (w *reentrantWallet) Transfer(ctx context.Context, tx core.LedgerTx, transfer *core.Transfer) error {
	_, w.err = w.pool.Deposit(ctx, carol, number.Units("1"))
	return w.WalletService.Transfer(ctx, tx, transfer)
}

func TestReentrantCallRejected(t *testing.T) {
	w := &reentrantWallet{WalletService: wallet.New(wallet.Config{})}
	f := newFixture(t, withWallet(w))
	w.pool = f.pool

	f.deposit(t, bob, number.Units("1"))
	_, err := f.pool.Withdraw(f.ctx, bob, number.Units("0.5"))
	require.NoError(t, err)
	assert.Equal(t, core.ErrReentrantCall, w.err)

	shares, _ := f.pool.GetShares(f.ctx, carol)
	assert.True(t, shares.IsZero())
}

func TestMissingCapability(t *testing.T) {
	f := newFixture(t)
	f.pool.SetCapability(nil)

	_, err := f.pool.Deposit(f.ctx, bob, number.Units("1"))
	assert.Equal(t, core.ErrUnauthorized, err)

	pool := f.poolState(t)
	assert.True(t, pool.Balance.IsZero())
	assert.True(t, pool.TotalShares.IsZero())
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, bob, number.Units("1"))

	txs, err := f.store.ListByIdentity(f.ctx, bob, 0, 10)
	require.NoError(t, err)

	var actions []core.ActionType
	for _, tx := range txs {
		actions = append(actions, tx.Action)
	}

	assert.Equal(t, []core.ActionType{
		core.ActionTypeProfileInitialized,
		core.ActionTypeScoreUpdated,
		core.ActionTypeDeposit,
	}, actions)
}

func TestLTVBorrow(t *testing.T) {
	f := newFixture(t, withLTV(alice))
	f.deposit(t, carol, decimal.NewFromInt(10000))
	f.genesis(t, alice, "0")
	f.genesis(t, bob, "0")

	_, err := f.pool.Borrow(f.ctx, alice, decimal.NewFromInt(1))
	assert.Equal(t, core.ErrExceedsLimit, err)

	for _, identity := range []string{alice, bob} {
		_, err := f.pool.DepositCollateral(f.ctx, identity, number.Units("1"))
		require.NoError(t, err)
	}

	limit, _ := f.pool.GetBorrowLimit(f.ctx, alice)
	assert.Equal(t, "2400", limit.String())
	limit, _ = f.pool.GetBorrowLimit(f.ctx, bob)
	assert.Equal(t, "1500", limit.String())

	_, err = f.pool.Borrow(f.ctx, alice, decimal.NewFromInt(2401))
	assert.Equal(t, core.ErrExceedsLimit, err)
	_, err = f.pool.Borrow(f.ctx, alice, decimal.NewFromInt(2400))
	assert.NoError(t, err)

	_, err = f.pool.Borrow(f.ctx, bob, decimal.NewFromInt(1501))
	assert.Equal(t, core.ErrExceedsLimit, err)
	_, err = f.pool.Borrow(f.ctx, bob, decimal.NewFromInt(1500))
	assert.NoError(t, err)

	_, err = f.pool.WithdrawCollateral(f.ctx, alice, number.Units("1"))
	assert.Equal(t, core.ErrCollateralLocked, err)

	_, err = f.pool.Repay(f.ctx, alice, decimal.NewFromInt(2400))
	require.NoError(t, err)

	_, err = f.pool.WithdrawCollateral(f.ctx, alice, number.Units("2"))
	assert.Equal(t, core.ErrInsufficientCollateral, err)
	_, err = f.pool.WithdrawCollateral(f.ctx, alice, number.Units("1"))
	require.NoError(t, err)

	collateral, _ := f.pool.GetCollateral(f.ctx, alice)
	assert.True(t, collateral.IsZero())

	pool := f.poolState(t)
	assert.Equal(t, number.Units("1").String(), pool.TotalCollateral.String())
}

func TestCollateralNeedsLTVPolicy(t *testing.T) {
	f := newFixture(t)

	_, err := f.pool.DepositCollateral(f.ctx, alice, number.Units("1"))
	assert.Equal(t, core.ErrPolicyMismatch, err)
	_, err = f.pool.WithdrawCollateral(f.ctx, alice, number.Units("1"))
	assert.Equal(t, core.ErrPolicyMismatch, err)
}
