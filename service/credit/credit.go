package credit

import (
	"context"
	"fmt"
	"sync"

	"creditpool/core"
	"creditpool/internal/scoring"
	"creditpool/pkg/id"
	"creditpool/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Config credit ledger parameters
type Config struct {
	Params scoring.Params
	Tiers  scoring.TierTable
	// Admins identities allowed to authorize pools
	Admins []string
}

type creditService struct {
	config  Config
	ledgers core.LedgerStore
	oracle  core.BalanceOracle

	mu         sync.Mutex
	capability *core.Capability
}

// New new credit ledger
func New(cfg Config, ledgers core.LedgerStore, oracle core.BalanceOracle) core.CreditService {
	return &creditService{
		config:  cfg,
		ledgers: ledgers,
		oracle:  oracle,
	}
}

func (s *creditService) isAdmin(identity string) bool {
	for _, a := range s.config.Admins {
		if a == identity {
			return true
		}
	}

	return false
}

// AuthorizePool issue a new capability for poolID, revoking the previous one
func (s *creditService) AuthorizePool(ctx context.Context, caller, poolID string) (*core.Capability, error) {
	log := logger.FromContext(ctx).WithField("pool", poolID)

	if caller == "" || !s.isAdmin(caller) {
		log.Infof("authorize pool rejected, caller %s is not admin", caller)
		return nil, core.ErrUnauthorized
	}

	capability := core.NewCapability(poolID, id.GenTraceID())
	if err := s.ledgers.Tx(ctx, func(tx core.LedgerTx) error {
		extra := core.NewTransactionExtra().Put("pool_id", poolID)
		return tx.CreateTransaction(ctx, core.NewTransaction(core.ActionTypePoolAuthorized, id.GenTraceID(), caller, "0", extra))
	}); err != nil {
		log.WithError(err).Errorln("ledgers.CreateTransaction")
		return nil, err
	}

	s.mu.Lock()
	s.capability = capability
	s.mu.Unlock()

	log.Infoln("pool authorized")
	return capability, nil
}

func (s *creditService) verify(capability *core.Capability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capability == nil || capability.Token() == "" || capability.Token() != s.capability.Token() {
		return core.ErrUnauthorized
	}

	return nil
}

// CalculateGenesisScore refresh the balance tier from the oracle and recompute the score.
// The first call initializes the profile; repeated calls with an unchanged balance are no-ops.
func (s *creditService) CalculateGenesisScore(ctx context.Context, identity string) (int, error) {
	log := logger.FromContext(ctx).WithField("identity", identity)

	if identity == "" {
		return 0, core.ErrInvalidIdentity
	}

	balance, err := s.oracle.BalanceOf(ctx, identity)
	if err != nil {
		log.WithError(err).Errorln("oracle.BalanceOf")
		return 0, fmt.Errorf("read balance of %s: %w", identity, err)
	}

	genesis := s.config.Params.GenesisScore(balance)

	var score int
	err = s.ledgers.Tx(ctx, func(tx core.LedgerTx) error {
		profile, err := s.loadProfile(ctx, tx, identity)
		if err != nil {
			return err
		}

		profile.GenesisScore = genesis
		if err := s.recompute(ctx, tx, profile, "genesis", balance); err != nil {
			return err
		}

		score = profile.Score
		return nil
	})

	metrics.Ledger().ObserveOperation("genesis_score", err)
	if err != nil {
		return 0, err
	}

	log.Debugf("genesis score %d, score %d", genesis, score)
	return score, nil
}

// UpdateScoreAfterDeposit add amount to the deposit total, initializing the profile if needed
func (s *creditService) UpdateScoreAfterDeposit(ctx context.Context, tx core.LedgerTx, capability *core.Capability, identity string, amount decimal.Decimal) error {
	if err := s.verify(capability); err != nil {
		return err
	}

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	profile, err := s.loadProfile(ctx, tx, identity)
	if err != nil {
		return err
	}

	profile.TotalDeposited = profile.TotalDeposited.Add(amount)
	return s.recompute(ctx, tx, profile, "deposit", amount)
}

// UpdateScoreAfterRepayment add amount to the repayment total
func (s *creditService) UpdateScoreAfterRepayment(ctx context.Context, tx core.LedgerTx, capability *core.Capability, identity string, amount decimal.Decimal) error {
	if err := s.verify(capability); err != nil {
		return err
	}

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	profile, err := tx.FindProfile(ctx, identity)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.FindProfile")
		return err
	}

	if !profile.Initialized {
		return core.ErrProfileNotInitialized
	}

	profile.TotalRepaid = profile.TotalRepaid.Add(amount)
	return s.recompute(ctx, tx, profile, "repayment", amount)
}

// RecordBorrow add amount to the borrowed total, the score is left untouched
func (s *creditService) RecordBorrow(ctx context.Context, tx core.LedgerTx, capability *core.Capability, identity string, amount decimal.Decimal) error {
	if err := s.verify(capability); err != nil {
		return err
	}

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	profile, err := tx.FindProfile(ctx, identity)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.FindProfile")
		return err
	}

	if !profile.Initialized {
		return core.ErrProfileNotInitialized
	}

	profile.TotalBorrowed = profile.TotalBorrowed.Add(amount)
	if err := tx.SaveProfile(ctx, profile); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.SaveProfile")
		return err
	}

	return nil
}

// loadProfile find the profile, initializing it with a zero genesis score when missing
func (s *creditService) loadProfile(ctx context.Context, tx core.LedgerTx, identity string) (*core.CreditProfile, error) {
	if identity == "" {
		return nil, core.ErrInvalidIdentity
	}

	profile, err := tx.FindProfile(ctx, identity)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.FindProfile")
		return nil, err
	}

	if profile.Initialized {
		return profile, nil
	}

	profile.Identity = identity
	profile.Initialized = true
	if err := tx.CreateTransaction(ctx, core.NewTransaction(core.ActionTypeProfileInitialized, "", identity, "0", nil)); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.CreateTransaction")
		return nil, err
	}

	return profile, nil
}

// recompute rebuild the score from its components, save the profile and emit a score event
func (s *creditService) recompute(ctx context.Context, tx core.LedgerTx, profile *core.CreditProfile, reason string, amount decimal.Decimal) error {
	breakdown := s.breakdown(profile)
	profile.Score = breakdown.Total

	if err := tx.SaveProfile(ctx, profile); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.SaveProfile")
		return err
	}

	extra := core.NewTransactionExtraFrom(breakdown).
		Put("reason", reason).
		Put("total_deposited", profile.TotalDeposited).
		Put("total_repaid", profile.TotalRepaid)
	if err := tx.CreateTransaction(ctx, core.NewTransaction(core.ActionTypeScoreUpdated, "", profile.Identity, amount.String(), extra)); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.CreateTransaction")
		return err
	}

	metrics.Ledger().ObserveScore(profile.Score)
	return nil
}

func (s *creditService) breakdown(profile *core.CreditProfile) *core.ScoreBreakdown {
	deposit, repayment, total := s.config.Params.Breakdown(profile.GenesisScore, profile.TotalDeposited, profile.TotalRepaid)
	return &core.ScoreBreakdown{
		Genesis:   profile.GenesisScore,
		Deposit:   deposit,
		Repayment: repayment,
		Total:     total,
	}
}
