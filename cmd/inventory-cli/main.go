package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akilcn01-oss/Inventory-Management/internal/client"
	"github.com/akilcn01-oss/Inventory-Management/internal/config"
	"github.com/akilcn01-oss/Inventory-Management/internal/dispatch"
	"github.com/akilcn01-oss/Inventory-Management/internal/logger"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	stopTimeout = 10 * time.Second
)

const usage = `Usage: inventory-cli [-config FILE] [-debug] [-workers N] [-metrics-port PORT] COMMAND [ARGS]

Commands:
  health                          check that the API is reachable
  list [-page N] [-category C] [-search S] [-low-stock]
  get ID
  create -name N -category C -quantity Q -price P [-description D]
  update ID [-name N] [-category C] [-quantity Q] [-price P] [-description D]
  delete ID
  stats                           dashboard statistics
  categories
  report full|low-stock [-dir DIR]
  settings [show | set KEY VALUE | reset]
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inventory-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", config.DefaultSettingsFile, "settings file")
	debug := fs.Bool("debug", false, "write debug logs to stderr")
	workers := fs.Int("workers", dispatch.DefaultPoolConfig().NumWorkers, "background workers")
	metricsPort := fs.String("metrics-port", "", "serve Prometheus metrics on this port while the command runs")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *metricsPort != "" {
		if err := validMetricsPort(*metricsPort); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			fs.Usage()
			return exitUsage
		}
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(logger.New(stderr, level))

	settings := config.NewSettings(*configPath)
	if err := settings.Load(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitError
	}

	command, commandArgs := fs.Arg(0), fs.Args()[1:]
	if command == "settings" {
		return settingsCommand(settings, commandArgs, stdout, stderr)
	}

	if *metricsPort != "" {
		defer serveMetrics(*metricsPort)()
	}

	apiClient, err := client.NewFromSettings(settings)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitError
	}
	defer apiClient.Close()

	pool := dispatch.NewPool(dispatch.PoolConfig{NumWorkers: *workers})
	if err := pool.Start(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitError
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := pool.Stop(stopCtx); err != nil {
			slog.Warn("worker pool did not stop cleanly", slog.Any("err", err))
		}
	}()

	loop := dispatch.NewLoop(0)
	dispatcher := dispatch.NewDispatcher(pool, loop)
	sh := newShell(client.NewAsync(apiClient, dispatcher), dispatcher, settings, loop, stdout, stderr)

	if err := sh.start(ctx, command, commandArgs); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	// this goroutine is the UI context from here on
	if err := loop.Run(ctx); err != nil {
		fmt.Fprintln(stderr, "Interrupted")
		return exitError
	}
	return sh.exitCode
}
