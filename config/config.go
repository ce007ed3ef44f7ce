package config

import (
	"fmt"
	"time"

	"creditpool/core"
	"creditpool/internal/interest"
	"creditpool/internal/scoring"

	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file, CREDITPOOL_ prefixed env vars override the file
func Load(configFile string, cfg *core.Config) error {
	configUtil.AutomaticLoadEnv("CREDITPOOL")
	if configFile != "" {
		if err := configUtil.LoadYaml(configFile, cfg); err != nil {
			return err
		}
	}

	defaultConfig(cfg)
	return validate(cfg)
}

func defaultConfig(cfg *core.Config) {
	if cfg.App.Location == "" {
		cfg.App.Location = "UTC"
	}

	if cfg.App.Store == "" {
		cfg.App.Store = "memory"
	}

	if cfg.Ledger.PoolID == "" {
		cfg.Ledger.PoolID = core.DefaultPoolID
	}

	if cfg.Ledger.Policy == "" {
		cfg.Ledger.Policy = core.LimitPolicyTiered
	}

	params := scoring.DefaultParams()
	if len(cfg.Scoring.GenesisTiers) == 0 {
		cfg.Scoring.GenesisTiers = params.GenesisTiers[:]
	}

	if cfg.Scoring.DepositQuantum.IsZero() {
		cfg.Scoring.DepositQuantum = params.DepositQuantum
	}

	if cfg.Scoring.RepayQuantum.IsZero() {
		cfg.Scoring.RepayQuantum = params.RepayQuantum
	}

	tiers := scoring.DefaultTierTable()
	if cfg.Scoring.LimitTop.IsZero() && cfg.Scoring.LimitMid.IsZero() && cfg.Scoring.LimitLow.IsZero() {
		cfg.Scoring.LimitTop = tiers.Top
		cfg.Scoring.LimitMid = tiers.Mid
		cfg.Scoring.LimitLow = tiers.Low
	}

	if cfg.Scoring.VerifiedLTV == 0 {
		cfg.Scoring.VerifiedLTV = scoring.VerifiedLTV
	}

	if cfg.Scoring.UnverifiedLTV == 0 {
		cfg.Scoring.UnverifiedLTV = scoring.UnverifiedLTV
	}

	if cfg.Interest.RateBps == 0 && cfg.Interest.TreasuryFeeBps == 0 {
		cfg.Interest.RateBps = interest.DefaultRateBps
		cfg.Interest.TreasuryFeeBps = interest.DefaultTreasuryFeeBps
	}

	if cfg.Interest.SecondsPerYear == 0 {
		cfg.Interest.SecondsPerYear = interest.SecondsPerYear
	}

	if cfg.Attestation.CacheTTL == 0 {
		cfg.Attestation.CacheTTL = time.Minute
	}

	if cfg.Attestation.Capacity == 0 {
		cfg.Attestation.Capacity = 1024
	}

	if cfg.Notifier.Batch == 0 {
		cfg.Notifier.Batch = 100
	}

	if cfg.Session.Issuer == "" {
		cfg.Session.Issuer = "creditpool"
	}

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 24 * time.Hour
	}

	if cfg.Session.Capacity == 0 {
		cfg.Session.Capacity = 1024
	}
}

func validate(cfg *core.Config) error {
	if _, err := ScoringParams(cfg); err != nil {
		return err
	}

	if err := TierTable(cfg).Validate(); err != nil {
		return err
	}

	if err := InterestModel(cfg).Validate(); err != nil {
		return err
	}

	switch cfg.App.Store {
	case "memory", "db":
	default:
		return fmt.Errorf("unknown store %q", cfg.App.Store)
	}

	return nil
}

// ScoringParams score calculator parameters
func ScoringParams(cfg *core.Config) (scoring.Params, error) {
	var params scoring.Params
	if n := len(cfg.Scoring.GenesisTiers); n != len(params.GenesisTiers) {
		return params, fmt.Errorf("expect %d genesis tiers, got %d", len(params.GenesisTiers), n)
	}

	for idx, tier := range cfg.Scoring.GenesisTiers {
		if idx > 0 && !tier.LessThan(cfg.Scoring.GenesisTiers[idx-1]) {
			return params, fmt.Errorf("genesis tiers must be strictly descending")
		}

		params.GenesisTiers[idx] = tier
	}

	if !cfg.Scoring.DepositQuantum.IsPositive() || !cfg.Scoring.RepayQuantum.IsPositive() {
		return params, fmt.Errorf("boost quanta must be positive")
	}

	params.DepositQuantum = cfg.Scoring.DepositQuantum
	params.RepayQuantum = cfg.Scoring.RepayQuantum
	return params, nil
}

// TierTable tiered borrow limits
func TierTable(cfg *core.Config) scoring.TierTable {
	return scoring.TierTable{
		Top: cfg.Scoring.LimitTop,
		Mid: cfg.Scoring.LimitMid,
		Low: cfg.Scoring.LimitLow,
	}
}

// LTVTable ltv percentages
func LTVTable(cfg *core.Config) scoring.LTVTable {
	return scoring.LTVTable{
		Verified:   cfg.Scoring.VerifiedLTV,
		Unverified: cfg.Scoring.UnverifiedLTV,
	}
}

// InterestModel interest model
func InterestModel(cfg *core.Config) interest.Model {
	return interest.Model{
		RateBps:        cfg.Interest.RateBps,
		TreasuryFeeBps: cfg.Interest.TreasuryFeeBps,
		SecondsPerYear: cfg.Interest.SecondsPerYear,
	}
}
