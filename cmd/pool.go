package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"creditpool/core"
	"creditpool/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "pool ledger commands, amounts in base units unless --units is set",
}

type poolOp func(pools core.PoolService) func(ctx context.Context, identity string, amount decimal.Decimal) (*core.Receipt, error)

func poolAmountCmd(use, short string, op poolOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <identity> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(cmd, args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s := provideStores()
			defer s.close()

			credits := provideCreditService(ctx, s.ledgers)
			pools := providePoolService(ctx, s.ledgers, credits, provideLimitResolver())
			receipt, err := op(pools)(ctx, args[0], amount)
			if err != nil {
				return err
			}

			return printJSON(cmd, receipt)
		},
	}
}

func parseAmount(cmd *cobra.Command, s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if units, _ := cmd.Flags().GetBool("units"); units {
		amount = number.Units(s)
	}

	return amount, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}

	cmd.Println(string(data))
	return nil
}

var poolShowCmd = &cobra.Command{
	Use:   "show",
	Short: "print pool aggregates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := provideStores()
		defer s.close()

		credits := provideCreditService(ctx, s.ledgers)
		pools := providePoolService(ctx, s.ledgers, credits, provideLimitResolver())
		pool, err := pools.GetPool(ctx)
		if err != nil {
			return err
		}

		return printJSON(cmd, map[string]interface{}{
			"pool":                pool,
			"value":               pool.Value(),
			"available_liquidity": pool.AvailableLiquidity(),
		})
	},
}

var poolFeesCmd = &cobra.Command{
	Use:   "withdraw-fees <caller>",
	Short: "withdraw accumulated treasury fees to the caller",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := provideStores()
		defer s.close()

		credits := provideCreditService(ctx, s.ledgers)
		pools := providePoolService(ctx, s.ledgers, credits, provideLimitResolver())
		receipt, err := pools.WithdrawFees(ctx, args[0])
		if err != nil {
			return err
		}

		return printJSON(cmd, receipt)
	},
}

func init() {
	amountCmds := []*cobra.Command{
		poolAmountCmd("deposit", "deposit liquidity and mint shares", func(p core.PoolService) func(context.Context, string, decimal.Decimal) (*core.Receipt, error) {
			return p.Deposit
		}),
		poolAmountCmd("withdraw", "burn shares and withdraw their value", func(p core.PoolService) func(context.Context, string, decimal.Decimal) (*core.Receipt, error) {
			return p.Withdraw
		}),
		poolAmountCmd("borrow", "open a loan", func(p core.PoolService) func(context.Context, string, decimal.Decimal) (*core.Receipt, error) {
			return p.Borrow
		}),
		poolAmountCmd("repay", "repay the active loan in full", func(p core.PoolService) func(context.Context, string, decimal.Decimal) (*core.Receipt, error) {
			return p.Repay
		}),
		poolAmountCmd("deposit-collateral", "deposit collateral for the ltv policy", func(p core.PoolService) func(context.Context, string, decimal.Decimal) (*core.Receipt, error) {
			return p.DepositCollateral
		}),
		poolAmountCmd("withdraw-collateral", "withdraw collateral while no loan is active", func(p core.PoolService) func(context.Context, string, decimal.Decimal) (*core.Receipt, error) {
			return p.WithdrawCollateral
		}),
	}

	for _, c := range amountCmds {
		c.Flags().Bool("units", false, "amount is in whole units")
		poolCmd.AddCommand(c)
	}

	poolCmd.AddCommand(poolShowCmd, poolFeesCmd)
	rootCmd.AddCommand(poolCmd)
}
