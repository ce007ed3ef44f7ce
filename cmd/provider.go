package cmd

import (
	"context"

	"creditpool/config"
	"creditpool/core"
	"creditpool/service/attestation"
	"creditpool/service/balance"
	"creditpool/service/credit"
	"creditpool/service/limit"
	"creditpool/service/pool"
	"creditpool/service/price"
	"creditpool/service/session"
	"creditpool/service/wallet"
	"creditpool/store/ledger"
	"creditpool/store/memory"
	"creditpool/store/transaction"
	"creditpool/store/transfer"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type stores struct {
	ledgers      core.LedgerStore
	transactions core.TransactionStore
	transfers    core.TransferStore
	properties   property.Store
	close        func() error
}

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideStores() *stores {
	if cfg.App.Store == "memory" {
		logrus.Warnln("memory store: ledger state is lost on exit")
		s := memory.New()
		return &stores{
			ledgers:      s,
			transactions: s,
			transfers:    s,
			properties:   memory.NewPropertyStore(),
			close:        func() error { return nil },
		}
	}

	database := provideDatabase()
	return &stores{
		ledgers:      ledger.New(database),
		transactions: transaction.New(database),
		transfers:    transfer.New(database),
		properties:   providePropertyStore(database),
		close:        database.Close,
	}
}

func providePropertyStore(database *db.DB) property.Store {
	return propertystore.New(database)
}

func provideBalanceOracle(ctx context.Context) core.BalanceOracle {
	if cfg.Oracle.Endpoint == "" {
		return balance.NewStatic(cfg.Oracle.Balances)
	}

	oracle, err := balance.Dial(ctx, cfg.Oracle.Endpoint)
	if err != nil {
		panic(err)
	}

	return oracle
}

func provideAttestations() core.AttestationService {
	if cfg.Attestation.Endpoint == "" {
		return attestation.NewStatic(cfg.Attestation.Verified...)
	}

	return attestation.New(attestation.Config{
		Endpoint: cfg.Attestation.Endpoint,
		CacheTTL: cfg.Attestation.CacheTTL,
		Capacity: cfg.Attestation.Capacity,
		Attempts: cfg.Attestation.Attempts,
	})
}

func provideCreditService(ctx context.Context, ledgers core.LedgerStore) core.CreditService {
	params, err := config.ScoringParams(&cfg)
	if err != nil {
		panic(err)
	}

	return credit.New(credit.Config{
		Params: params,
		Tiers:  config.TierTable(&cfg),
		Admins: cfg.Admins,
	}, ledgers, provideBalanceOracle(ctx))
}

func provideLimitResolver() core.LimitResolver {
	resolver, err := limit.New(
		cfg.Ledger.Policy,
		config.TierTable(&cfg),
		config.LTVTable(&cfg),
		provideAttestations(),
		price.NewStatic(cfg.Price.USD),
	)
	if err != nil {
		panic(err)
	}

	return resolver
}

func provideWalletService() core.WalletService {
	return wallet.New(wallet.Config{
		RequireHex: cfg.Ledger.RequireHexIdentity,
		Blocked:    cfg.Wallet.Blocked,
	})
}

// providePoolService pool wired to the credit ledger and authorized by the owner
func providePoolService(ctx context.Context, ledgers core.LedgerStore, credits core.CreditService, limits core.LimitResolver) core.PoolService {
	pools := pool.New(pool.Config{
		PoolID:   cfg.Ledger.PoolID,
		Interest: config.InterestModel(&cfg),
		Admins:   cfg.Admins,
	}, ledgers, credits, limits, provideWalletService(), core.SystemClock)

	capability, err := credits.AuthorizePool(ctx, cfg.Owner(), cfg.Ledger.PoolID)
	if err != nil {
		logrus.WithError(err).Warnln("pool not authorized, score updates will be rejected")
	} else {
		pools.SetCapability(capability)
	}

	return pools
}

func provideSession() core.Session {
	return session.New(session.Config{
		Secret:   cfg.Session.Secret,
		Issuer:   cfg.Session.Issuer,
		Capacity: cfg.Session.Capacity,
		Admins:   cfg.Admins,
	})
}
