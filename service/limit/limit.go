package limit

import (
	"context"
	"fmt"

	"creditpool/core"
	"creditpool/internal/scoring"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// New resolver for policy
func New(policy core.LimitPolicy, tiers scoring.TierTable, ltv scoring.LTVTable, attestations core.AttestationService, prices core.PriceFeed) (core.LimitResolver, error) {
	switch policy {
	case core.LimitPolicyTiered, "":
		return NewTiered(tiers), nil
	case core.LimitPolicyLTV:
		return NewLTV(ltv, attestations, prices), nil
	default:
		return nil, fmt.Errorf("unknown limit policy %q", policy)
	}
}

type tiered struct {
	tiers scoring.TierTable
}

// NewTiered credit score mapped onto a tier table
func NewTiered(tiers scoring.TierTable) core.LimitResolver {
	return &tiered{tiers: tiers}
}

func (r *tiered) Policy() core.LimitPolicy {
	return core.LimitPolicyTiered
}

func (r *tiered) Limit(ctx context.Context, tx core.LedgerTx, identity string) (decimal.Decimal, error) {
	profile, err := tx.FindProfile(ctx, identity)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("ledgers.FindProfile")
		return decimal.Zero, err
	}

	if !profile.Initialized {
		return decimal.Zero, nil
	}

	return r.tiers.Limit(profile.Score), nil
}

type ltv struct {
	table        scoring.LTVTable
	attestations core.AttestationService
	prices       core.PriceFeed
}

// NewLTV collateral value times the attestation selected ltv
func NewLTV(table scoring.LTVTable, attestations core.AttestationService, prices core.PriceFeed) core.LimitResolver {
	return &ltv{
		table:        table,
		attestations: attestations,
		prices:       prices,
	}
}

func (r *ltv) Policy() core.LimitPolicy {
	return core.LimitPolicyLTV
}

// Limit floor(collateral value * ltv / 100) in whole USD. The figure is
// compared as is against borrow amounts, which are in base units, so one
// unit of collateral at 3000 USD with an 80% ltv allows borrowing 2400 base
// units, not 2400 units.
func (r *ltv) Limit(ctx context.Context, tx core.LedgerTx, identity string) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("identity", identity)

	collateral, err := tx.FindCollateral(ctx, identity)
	if err != nil {
		log.WithError(err).Errorln("ledgers.FindCollateral")
		return decimal.Zero, err
	}

	if !collateral.Amount.IsPositive() {
		return decimal.Zero, nil
	}

	price, err := r.prices.Price(ctx)
	if err != nil {
		log.WithError(err).Errorln("prices.Price")
		return decimal.Zero, err
	}

	verified, err := r.attestations.IsVerified(ctx, identity)
	if err != nil {
		log.WithError(err).Errorln("attestations.IsVerified")
		return decimal.Zero, err
	}

	value := scoring.CollateralValue(collateral.Amount, price)
	return scoring.MaxBorrow(value, r.table.LTV(verified)), nil
}
