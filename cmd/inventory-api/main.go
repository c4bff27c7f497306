package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/akilcn01-oss/Inventory-Management/internal/config"
	httpAPI "github.com/akilcn01-oss/Inventory-Management/internal/http"
	"github.com/akilcn01-oss/Inventory-Management/internal/http/middleware"
	"github.com/akilcn01-oss/Inventory-Management/internal/logger"
	"github.com/akilcn01-oss/Inventory-Management/internal/metrics"
	"github.com/akilcn01-oss/Inventory-Management/internal/repository"
	"github.com/akilcn01-oss/Inventory-Management/internal/repository/sql"
	"github.com/akilcn01-oss/Inventory-Management/internal/service"
	sqspkg "github.com/akilcn01-oss/Inventory-Management/internal/sqs"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	productRepository, closeStore := openStore(ctx, conf)

	var publisher service.EventPublisher
	if conf.EventsEnabled() {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
		handleErr("creating SQS client", err)
		publisher = sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)
		slog.Info("Publishing product events", slog.String("queueURL", conf.AWS.SQSQueueURL))
	}

	productService := service.NewProductService(productRepository, publisher, conf.LowStockThreshold)

	limiter := middleware.NewRateLimiter(conf.RateLimit.RPS, conf.RateLimit.Burst)
	go limiter.Cleanup(ctx)

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           httpAPI.NewEngine(productService, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port), slog.String("storage", conf.Storage))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf.MetricsServer.Port)

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			slog.Info("Shutting down HTTP server")
			err := httpServer.Shutdown(ctx)
			cancel()
			if cerr := closeStore(); cerr != nil {
				err = errors.Join(err, cerr)
			}
			return err
		},
		"metrics-server": func(ctx context.Context) error {
			return metricsServer.Shutdown(ctx)
		},
	})

	exitCode := <-wait
	slog.Info("Inventory API stopped", slog.Int("exitCode", exitCode))
	os.Exit(exitCode)
}

// openStore returns the configured product repository and a function releasing it.
func openStore(ctx context.Context, conf *config.Config) (repository.ProductRepository, func() error) {
	if conf.Storage == config.StorageMemory {
		slog.Warn("Using in-memory storage, data is lost on restart")
		return repository.NewMemoryProductRepository(), func() error { return nil }
	}

	db, err := sql.StartDB(ctx, conf.Database, sql.DefaultMigrationsSource)
	handleErr("starting database", err)
	return sql.NewProductRepository(db), db.Close
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
