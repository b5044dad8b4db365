// Package main provides the entry point for the Nešvęsk Vienas API server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/config"
	"github.com/nesvesk-vienas/nesvesk-server/internal/di"
	"github.com/nesvesk-vienas/nesvesk-server/internal/logger"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	cfg := do.MustInvoke[*config.Config](injector)

	log.Info("Matching hosts and guests",
		"environment", cfg.App.Environment,
		"data", cfg.Data.BasePath,
		"email_enabled", cfg.EmailEnabled())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// HTTP stops before the outbox workers, so no new invitation or message
	// lands after the last poll. Jobs cut off mid-send go back to pending
	// when the dispatcher starts again.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Linksmų švenčių!")
}
