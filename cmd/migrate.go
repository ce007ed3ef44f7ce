package cmd

import (
	"fmt"

	"github.com/fox-one/pkg/store/db"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"migrate-ledger"},
	Short:   "create or update the ledger, outbox and checkpoint tables",
	Long: `Create or update the tables backing the credit ledger: profiles, pools,
shares, loans, collaterals, the transaction log, the transfer outbox and
worker checkpoints. Has no effect when the app runs on the memory store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.App.Store == "memory" {
			logrus.Warnln("memory store configured, nothing to migrate")
			return nil
		}

		database := provideDatabase()
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			return fmt.Errorf("migrate ledger tables: %w", err)
		}

		logrus.Infoln("ledger tables migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
