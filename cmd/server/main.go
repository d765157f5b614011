// Package main runs the marinedesk HTTP API server.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborworks/marinedesk/internal/app"
	"github.com/harborworks/marinedesk/internal/platform/config"
	"github.com/harborworks/marinedesk/internal/platform/otel"
)

func main() {
	log.SetPrefix("marinedesk: ")
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, "marinedesk")
	if err != nil {
		config.Exitf("setup tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	if err := app.Run(ctx); err != nil {
		config.Exitf("run server: %v", err)
	}
}
