package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/akilcn01-oss/Inventory-Management/internal/metrics"
)

func validMetricsPort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid metrics port %q", port)
	}
	return nil
}

// serveMetrics exposes the client and dispatch metrics on port until the returned func is called.
func serveMetrics(port string) func() {
	srv := metrics.StartMetricsServer(port)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("metrics server did not stop cleanly", slog.Any("err", err))
		}
	}
}
