package pool

import (
	"context"
	"errors"
	"sync"

	"creditpool/core"
	"creditpool/internal/interest"
	"creditpool/pkg/id"
	"creditpool/pkg/metrics"
	"creditpool/pkg/number"

	"github.com/fox-one/pkg/logger"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

// Config pool ledger parameters
type Config struct {
	PoolID   string
	Interest interest.Model
	// Admins identities allowed to withdraw treasury fees
	Admins []string
}

type poolService struct {
	config  Config
	ledgers core.LedgerStore
	credits core.CreditService
	limits  core.LimitResolver
	wallets core.WalletService
	clock   core.Clock

	// serializes every mutating operation
	mu sync.Mutex

	capMu      sync.RWMutex
	capability *core.Capability
}

// New new pool ledger
func New(
	cfg Config,
	ledgers core.LedgerStore,
	credits core.CreditService,
	limits core.LimitResolver,
	wallets core.WalletService,
	clock core.Clock,
) core.PoolService {
	if cfg.PoolID == "" {
		cfg.PoolID = core.DefaultPoolID
	}

	if clock == nil {
		clock = core.SystemClock
	}

	return &poolService{
		config:  cfg,
		ledgers: ledgers,
		credits: credits,
		limits:  limits,
		wallets: wallets,
		clock:   clock,
	}
}

// SetCapability hand over the capability issued by the credit ledger
func (s *poolService) SetCapability(capability *core.Capability) {
	s.capMu.Lock()
	s.capability = capability
	s.capMu.Unlock()
}

func (s *poolService) currentCapability() *core.Capability {
	s.capMu.RLock()
	defer s.capMu.RUnlock()

	return s.capability
}

func (s *poolService) isAdmin(identity string) bool {
	for _, a := range s.config.Admins {
		if a == identity {
			return true
		}
	}

	return false
}

type inFlightKey struct{}

// run one mutating operation: reject re-entry, serialize, execute fn in a single ledger unit of work
func (s *poolService) run(ctx context.Context, op, identity string, fn func(ctx context.Context, tx core.LedgerTx, r *core.Receipt) error) (*core.Receipt, error) {
	if inflight, ok := ctx.Value(inFlightKey{}).(string); ok {
		logger.FromContext(ctx).Infof("%s rejected, %s in progress", op, inflight)
		return nil, core.ErrReentrantCall
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = context.WithValue(ctx, inFlightKey{}, op)
	log := logger.FromContext(ctx).WithField("op", op).WithField("identity", identity)
	ctx = logger.WithContext(ctx, log)

	receipt := &core.Receipt{TraceID: id.GenTraceID()}
	var pool *core.Pool
	err := s.ledgers.Tx(ctx, func(tx core.LedgerTx) error {
		if err := fn(ctx, tx, receipt); err != nil {
			return err
		}

		p, err := s.loadPool(ctx, tx)
		pool = p
		return err
	})

	metrics.Ledger().ObserveOperation(op, err)
	if err != nil {
		var code core.ErrorCode
		if errors.As(err, &code) {
			log.Infof("rejected: %v", err)
		} else {
			log.WithError(err).Errorln("ledgers.Tx")
		}

		return nil, err
	}

	metrics.Ledger().ObservePool(pool)
	log.Infof("%s %s done, trace %s", op, receipt.Amount, receipt.TraceID)
	return receipt, nil
}

func (s *poolService) loadPool(ctx context.Context, tx core.LedgerTx) (*core.Pool, error) {
	pool, err := tx.FindPool(ctx, s.config.PoolID)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.FindPool")
		return nil, err
	}

	if pool.ID == "" {
		pool.ID = s.config.PoolID
	}

	return pool, nil
}

func (s *poolService) savePool(ctx context.Context, tx core.LedgerTx, pool *core.Pool) error {
	if err := tx.SavePool(ctx, pool); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.SavePool")
		return err
	}

	return nil
}

func (s *poolService) notify(ctx context.Context, tx core.LedgerTx, action core.ActionType, traceID, identity string, amount decimal.Decimal, extra core.TransactionExtraData) error {
	if err := tx.CreateTransaction(ctx, core.NewTransaction(action, traceID, identity, amount.String(), extra)); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.CreateTransaction")
		return err
	}

	return nil
}

// transfer queue value out, always the last step of an operation
func (s *poolService) transfer(ctx context.Context, tx core.LedgerTx, action core.ActionType, traceID, opponent string, amount decimal.Decimal) error {
	return s.wallets.Transfer(ctx, tx, &core.Transfer{
		TraceID:  foxuuid.Modify(traceID, action.String()),
		Opponent: opponent,
		Amount:   amount,
		Action:   action,
		Memo:     action.String(),
	})
}

func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && number.IsInteger(amount)
}
