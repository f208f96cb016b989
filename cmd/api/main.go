// Package main provides the entry point for the ReelMates sync core.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/reelmates/reelmates-core/internal/di"
	"github.com/reelmates/reelmates-core/internal/logger"
	"github.com/reelmates/reelmates-core/internal/service"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap all services and kick off the startup sync sequence
	if err := di.Bootstrap(ctx, injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully...")
	cancel()

	// Drain in-flight background reconciliations before anything closes
	// under them.
	syncSvc := do.MustInvoke[*service.SyncService](injector)
	syncSvc.Wait()

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Goodbye")
}
