package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "credit ledger commands",
}

var scoreGenesisCmd = &cobra.Command{
	Use:   "genesis <identity>",
	Short: "calculate the genesis score from the current wallet balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := provideStores()
		defer s.close()

		credits := provideCreditService(ctx, s.ledgers)
		score, err := credits.CalculateGenesisScore(ctx, args[0])
		if err != nil {
			return err
		}

		cmd.Println(score)
		return nil
	},
}

var scoreShowCmd = &cobra.Command{
	Use:   "show <identity>",
	Short: "print the credit profile and score breakdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := provideStores()
		defer s.close()

		credits := provideCreditService(ctx, s.ledgers)
		profile, err := credits.GetProfile(ctx, args[0])
		if err != nil {
			return err
		}

		breakdown, err := credits.GetScoreBreakdown(ctx, args[0])
		if err != nil {
			return err
		}

		limit, err := credits.GetBorrowLimit(ctx, args[0])
		if err != nil {
			return err
		}

		data, _ := json.MarshalIndent(map[string]interface{}{
			"profile":      profile,
			"breakdown":    breakdown,
			"borrow_limit": limit,
		}, "", "    ")
		cmd.Println(string(data))
		return nil
	},
}

func init() {
	scoreCmd.AddCommand(scoreGenesisCmd, scoreShowCmd)
	rootCmd.AddCommand(scoreCmd)
}
