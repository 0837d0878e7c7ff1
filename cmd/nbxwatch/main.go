package main

import (
	"context"
	"fmt"
	"os"

	"nbxwatch/internal/config"
	"nbxwatch/internal/handlers/cli"
	"nbxwatch/internal/pkg/logger"
	"nbxwatch/internal/pkg/telemetry"
)

func main() {
	ctx := context.Background()

	rt, err := config.LoadRuntime()
	if err != nil {
		fmt.Fprintln(os.Stderr, "nbxwatch:", err)
		os.Exit(1)
	}

	// Telemetry comes before the logger so the OTEL bridge core picks up
	// the provider.
	if rt.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, rt.ServiceName)
		if err != nil {
			fmt.Fprintln(os.Stderr, "nbxwatch: telemetry init:", err)
			os.Exit(1)
		}
		defer func() { _ = shutdown(ctx) }()
	}

	if err := logger.Init(logger.WithLevel(rt.LogLevel)); err != nil {
		fmt.Fprintln(os.Stderr, "nbxwatch: logger init:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := cli.Run(ctx, rt); err != nil {
		logger.Fatal(ctx, "nbxwatch terminated", "error", err)
	}
}
