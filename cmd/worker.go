package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"creditpool/service/wallet"
	"creditpool/worker"
	"creditpool/worker/liquidity"
	"creditpool/worker/notifier"
	"creditpool/worker/txsender"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "creditpool job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := logger.FromContext(ctx)
		s := provideStores()
		defer s.close()

		sender, err := txsender.New(cfg.App.Location, "@every 1s", s.transfers, wallet.NewPayout(cfg.Wallet.Endpoint))
		if err != nil {
			log.WithError(err).Fatalln("txsender.New")
		}

		n, err := notifier.New(cfg.App.Location, "@every 5s", cfg.Notifier.Endpoint, cfg.Notifier.Batch, s.transactions, s.properties)
		if err != nil {
			log.WithError(err).Fatalln("notifier.New")
		}

		watcher, err := liquidity.New(cfg.App.Location, "@every 30s", cfg.Ledger.PoolID, s.ledgers)
		if err != nil {
			log.WithError(err).Fatalln("liquidity.New")
		}

		jobs := []worker.IJob{sender, n, watcher}
		for _, job := range jobs {
			_ = job.Start()
		}

		log.Infoln("workers started")
		<-ctx.Done()

		for _, job := range jobs {
			_ = job.Stop()
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
