package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/stake-rescue/internal/rescueconfig"
	"github.com/lisanmuaddib/stake-rescue/pkg/journal"
	"github.com/lisanmuaddib/stake-rescue/pkg/logging"
	"github.com/lisanmuaddib/stake-rescue/pkg/notify"
	"github.com/lisanmuaddib/stake-rescue/pkg/rescue"
	"github.com/lisanmuaddib/stake-rescue/pkg/wallet"
)

func main() {
	// Load .env and the environment; the logger is needed to report errors
	config, err := rescueconfig.Load()
	log := logging.NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	log.WithFields(config.LogFields()).Info("Configuration loaded")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	client, err := wallet.NewClient(ctx, log, config.WalletConfig(), config.PrivateKey)
	if err != nil {
		log.WithError(err).Fatal("Failed to create wallet client")
	}
	defer client.Close()

	flow, err := rescueconfig.ConfigureFlow(rescueconfig.FlowConfig{
		Client: client,
		Config: config,
		Logger: log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to configure transaction flow")
	}

	notifier := notify.NewNtfyNotifier(notify.Config{
		URL:    config.NtfyURL,
		Title:  "stake-rescue",
		Logger: log,
	})

	trigger, err := rescue.NewTrigger(client, flow, notifier, config.TriggerConfig(), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create trigger")
	}

	if store := journal.OpenOrWarn(log, config.DatabaseURL, client.Address().Hex(), client.ChainID().Int64()); store != nil {
		defer store.Close()
		trigger.WithJournal(store)
	}

	report, err := trigger.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		log.Info("Stopped before the deadline")
		return
	case errors.Is(err, rescue.ErrAlreadyExecuted):
		return
	}
	if err != nil {
		log.WithError(err).Fatal("Transaction flow stopped with error")
	}

	for _, outcome := range report.Outcomes {
		fields := logrus.Fields{
			"run_id": report.RunID,
			"step":   outcome.Step,
			"status": outcome.Status,
		}
		if outcome.TxHash != nil {
			fields["tx_hash"] = outcome.TxHash.Hex()
		}
		log.WithFields(fields).Info("Step result")
	}
	log.Info("Rescue complete")
}
