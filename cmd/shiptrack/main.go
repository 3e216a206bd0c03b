// cmd/shiptrack/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata" // --timezone works on hosts without a zoneinfo database

	"github.com/rs/zerolog/log"

	"github.com/law-makers/shiptrack/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancelling lets the current ship close its browser and the run
	// return a partial summary. A second signal exits immediately.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn().Msg("Interrupt received, shutting down gracefully...")
		cancel()
		<-sigCh
		os.Exit(130)
	}()

	cli.Execute(ctx)
}
