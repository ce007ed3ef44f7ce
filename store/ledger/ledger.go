package ledger

import (
	"context"
	"errors"

	"creditpool/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

var errReadOnly = errors.New("ledger: read only")

type ledgerStore struct {
	db *db.DB
}

// New new sql backed ledger store
func New(db *db.DB) core.LedgerStore {
	return &ledgerStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		for _, model := range []interface{}{
			core.CreditProfile{},
			core.Pool{},
			core.Share{},
			core.Loan{},
			core.Collateral{},
		} {
			if err := db.Update().Model(model).AutoMigrate(model).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *ledgerStore) Tx(ctx context.Context, fn func(tx core.LedgerTx) error) error {
	return s.db.Tx(func(tx *db.DB) error {
		return fn(&ledgerTx{db: tx.Update(), lock: true})
	})
}

func (s *ledgerStore) View(ctx context.Context, fn func(tx core.LedgerTx) error) error {
	err := s.db.Tx(func(tx *db.DB) error {
		if err := fn(&ledgerTx{db: tx.Update()}); err != nil {
			return err
		}

		// roll back whatever fn wrote
		return errReadOnly
	})

	if errors.Is(err, errReadOnly) {
		return nil
	}

	return err
}

type ledgerTx struct {
	db   *gorm.DB
	lock bool
}

func (tx *ledgerTx) query() *gorm.DB {
	if tx.lock {
		return tx.db.Set("gorm:query_option", "FOR UPDATE")
	}

	return tx.db
}

func (tx *ledgerTx) first(out interface{}, query string, args ...interface{}) error {
	if err := tx.query().Where(query, args...).First(out).Error; err != nil && !store.IsErrNotFound(err) {
		return err
	}

	return nil
}

func (tx *ledgerTx) FindProfile(ctx context.Context, identity string) (*core.CreditProfile, error) {
	var profile core.CreditProfile
	if err := tx.first(&profile, "identity = ?", identity); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (tx *ledgerTx) SaveProfile(ctx context.Context, profile *core.CreditProfile) error {
	version := profile.Version
	profile.Version++

	if version == 0 {
		return tx.db.Create(profile).Error
	}

	return checkUpdate(tx.db.Model(profile).Where("identity = ? AND version = ?", profile.Identity, version).Updates(map[string]interface{}{
		"score":           profile.Score,
		"genesis_score":   profile.GenesisScore,
		"total_borrowed":  profile.TotalBorrowed,
		"total_repaid":    profile.TotalRepaid,
		"total_deposited": profile.TotalDeposited,
		"initialized":     profile.Initialized,
		"version":         profile.Version,
	}))
}

func (tx *ledgerTx) FindPool(ctx context.Context, id string) (*core.Pool, error) {
	var pool core.Pool
	if err := tx.first(&pool, "id = ?", id); err != nil {
		return nil, err
	}

	return &pool, nil
}

func (tx *ledgerTx) SavePool(ctx context.Context, pool *core.Pool) error {
	version := pool.Version
	pool.Version++

	if version == 0 {
		return tx.db.Create(pool).Error
	}

	return checkUpdate(tx.db.Model(pool).Where("id = ? AND version = ?", pool.ID, version).Updates(map[string]interface{}{
		"balance":          pool.Balance,
		"total_shares":     pool.TotalShares,
		"treasury_fees":    pool.TreasuryFees,
		"total_borrowed":   pool.TotalBorrowed,
		"total_collateral": pool.TotalCollateral,
		"version":          pool.Version,
	}))
}

func (tx *ledgerTx) FindShare(ctx context.Context, identity string) (*core.Share, error) {
	var share core.Share
	if err := tx.first(&share, "identity = ?", identity); err != nil {
		return nil, err
	}

	return &share, nil
}

func (tx *ledgerTx) SaveShare(ctx context.Context, share *core.Share) error {
	version := share.Version
	share.Version++

	if version == 0 {
		return tx.db.Create(share).Error
	}

	return checkUpdate(tx.db.Model(share).Where("identity = ? AND version = ?", share.Identity, version).Updates(map[string]interface{}{
		"shares":  share.Shares,
		"version": share.Version,
	}))
}

func (tx *ledgerTx) FindLoan(ctx context.Context, identity string) (*core.Loan, error) {
	var loan core.Loan
	if err := tx.first(&loan, "identity = ?", identity); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (tx *ledgerTx) SaveLoan(ctx context.Context, loan *core.Loan) error {
	version := loan.Version
	loan.Version++

	if version == 0 {
		return tx.db.Create(loan).Error
	}

	return checkUpdate(tx.db.Model(loan).Where("identity = ? AND version = ?", loan.Identity, version).Updates(map[string]interface{}{
		"principal":  loan.Principal,
		"start_time": loan.StartTime,
		"active":     loan.Active,
		"version":    loan.Version,
	}))
}

func (tx *ledgerTx) FindCollateral(ctx context.Context, identity string) (*core.Collateral, error) {
	var collateral core.Collateral
	if err := tx.first(&collateral, "identity = ?", identity); err != nil {
		return nil, err
	}

	return &collateral, nil
}

func (tx *ledgerTx) SaveCollateral(ctx context.Context, collateral *core.Collateral) error {
	version := collateral.Version
	collateral.Version++

	if version == 0 {
		return tx.db.Create(collateral).Error
	}

	return checkUpdate(tx.db.Model(collateral).Where("identity = ? AND version = ?", collateral.Identity, version).Updates(map[string]interface{}{
		"amount":  collateral.Amount,
		"version": collateral.Version,
	}))
}

func (tx *ledgerTx) CreateTransaction(ctx context.Context, transaction *core.Transaction) error {
	return tx.db.Create(transaction).Error
}

func (tx *ledgerTx) CreateTransfer(ctx context.Context, transfer *core.Transfer) error {
	transfer.Status = core.TransferStatusPending
	return tx.db.Where("trace_id = ?", transfer.TraceID).FirstOrCreate(transfer).Error
}

func checkUpdate(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
