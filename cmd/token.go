package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <identity>",
	Short: "issue an api access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl <= 0 {
			ttl = cfg.Session.TTL
		}

		token, err := provideSession().Issue(cmd.Context(), args[0], ttl)
		if err != nil {
			return err
		}

		cmd.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().Duration("ttl", time.Duration(0), "token ttl, default to session.ttl")
}
