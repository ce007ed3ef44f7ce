package core

import (
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config creditpool config
type Config struct {
	App         App         `json:"app"`
	DB          db.Config   `json:"db"`
	Ledger      Ledger      `json:"ledger"`
	Scoring     Scoring     `json:"scoring"`
	Interest    Interest    `json:"interest"`
	Oracle      Oracle      `json:"oracle"`
	Attestation Attestation `json:"attestation"`
	Price       Price       `json:"price"`
	Wallet      WalletCfg   `json:"wallet"`
	Notifier    Notifier    `json:"notifier"`
	Session     SessionCfg  `json:"session"`
	Admins      []string    `json:"admins"`
}

// IsAdmin check if the identity is admin
func (c *Config) IsAdmin(identity string) bool {
	if len(c.Admins) <= 0 {
		return false
	}

	for _, a := range c.Admins {
		if a == identity {
			return true
		}
	}

	return false
}

// Owner the first admin, used to authorize the pool at boot
func (c *Config) Owner() string {
	if len(c.Admins) == 0 {
		return ""
	}

	return c.Admins[0]
}

// App app config
type App struct {
	Location string `json:"location"`
	// Store "db" for the sql store, "memory" for an in-process ledger
	Store string `json:"store"`
}

// Ledger ledger config
type Ledger struct {
	PoolID string      `json:"pool_id"`
	Policy LimitPolicy `json:"policy"`
	// RequireHexIdentity only accept 0x prefixed account addresses
	RequireHexIdentity bool `json:"require_hex_identity"`
}

// Scoring score and limit tables, amounts in base units
type Scoring struct {
	GenesisTiers   []decimal.Decimal `json:"genesis_tiers"`
	DepositQuantum decimal.Decimal   `json:"deposit_quantum"`
	RepayQuantum   decimal.Decimal   `json:"repay_quantum"`
	LimitTop       decimal.Decimal   `json:"limit_top"`
	LimitMid       decimal.Decimal   `json:"limit_mid"`
	LimitLow       decimal.Decimal   `json:"limit_low"`
	VerifiedLTV    int64             `json:"verified_ltv"`
	UnverifiedLTV  int64             `json:"unverified_ltv"`
}

// Interest interest config
type Interest struct {
	RateBps        int64 `json:"rate_bps"`
	TreasuryFeeBps int64 `json:"treasury_fee_bps"`
	SecondsPerYear int64 `json:"seconds_per_year"`
}

// Oracle balance oracle config
type Oracle struct {
	// Endpoint json-rpc endpoint of the chain node, empty for static balances
	Endpoint string `json:"endpoint"`
	// Balances static balances keyed by identity
	Balances map[string]decimal.Decimal `json:"balances"`
}

// Attestation attestation registry config
type Attestation struct {
	Endpoint string        `json:"endpoint"`
	CacheTTL time.Duration `json:"cache_ttl"`
	Capacity int           `json:"capacity"`
	Attempts uint          `json:"attempts"`
	// Verified static allow list used when no endpoint is configured
	Verified []string `json:"verified"`
}

// Price injected collateral price
type Price struct {
	USD decimal.Decimal `json:"usd"`
}

// WalletCfg payout config
type WalletCfg struct {
	Endpoint string   `json:"endpoint"`
	Blocked  []string `json:"blocked"`
}

// Notifier notification webhook config
type Notifier struct {
	Endpoint string `json:"endpoint"`
	Batch    int    `json:"batch"`
}

// SessionCfg jwt session config
type SessionCfg struct {
	Secret   string        `json:"secret"`
	Issuer   string        `json:"issuer"`
	TTL      time.Duration `json:"ttl"`
	Capacity int           `json:"capacity"`
}
