package main

import (
	"context"
	"os"
	"os/signal"
	"herbarium/internal/app/deps"
	"herbarium/internal/app/services"
	"herbarium/internal/core/domain/logging"
	deleteexpiredtokens "herbarium/internal/core/services/delete_expired_tokens"
	"syscall"
	"time"
)

func main() {
	deps, shutdownDeps := deps.InitDeps()
	log := deps.Logger
	defer shutdownDeps()

	services := services.InitServices(deps)

	ticker := time.NewTicker(deps.Config.TokenSweepPeriod)
	defer ticker.Stop()

	stopCh, closeCh := createChannel()
	defer closeCh()

	log.Info(
		context.Background(),
		"Starting periodic token sweeper.",
		logging.Entry("periodMinutes", (deps.Config.TokenSweepPeriod).Minutes()),
	)

loop:
	for {
		select {
		case <-stopCh:
			log.Info(context.Background(), "Stopping periodic token sweeper.")
			break loop
		case <-ticker.C:
			_, err := services.DeleteExpiredTokens.Run(context.Background(), deleteexpiredtokens.Input{})
			if err != nil {
				log.Error(context.Background(), "Token sweep returned an error.", logging.Entry("err", err))
			}
		}
	}
}

func createChannel() (chan os.Signal, func()) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	return stopCh, func() {
		close(stopCh)
	}
}
