package balance

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"creditpool/core"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

type chainOracle struct {
	client *ethclient.Client
}

// Dial balance oracle backed by a json-rpc node
func Dial(ctx context.Context, endpoint string) (core.BalanceOracle, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	return &chainOracle{client: client}, nil
}

// BalanceOf latest balance in wei
func (o *chainOracle) BalanceOf(ctx context.Context, identity string) (decimal.Decimal, error) {
	if !common.IsHexAddress(identity) {
		return decimal.Zero, core.ErrInvalidIdentity
	}

	wei, err := o.client.BalanceAt(ctx, common.HexToAddress(identity), nil)
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromBigInt(wei, 0), nil
}

// Static fixed balances, unknown identities hold nothing
type Static struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
}

// NewStatic new static oracle
func NewStatic(balances map[string]decimal.Decimal) *Static {
	s := &Static{balances: map[string]decimal.Decimal{}}
	for identity, v := range balances {
		s.balances[Normalize(identity)] = v
	}

	return s
}

// Set set balance
func (s *Static) Set(identity string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[Normalize(identity)] = balance
}

// BalanceOf balance
func (s *Static) BalanceOf(ctx context.Context, identity string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balances[Normalize(identity)], nil
}

// Normalize checksum hex addresses, anything else is kept trimmed
func Normalize(identity string) string {
	identity = strings.TrimSpace(identity)
	if common.IsHexAddress(identity) {
		return common.HexToAddress(identity).Hex()
	}

	return identity
}
