// Path: cmd/daemon/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"gh-trending/internal/config"
	"gh-trending/internal/delivery/rest"
	"gh-trending/internal/events"
	"gh-trending/internal/fetcher"
	"gh-trending/internal/report"
	"gh-trending/internal/service"
	"gh-trending/internal/storage"
	"gh-trending/internal/summarizer"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Structured logger
	logger, err := newLogger(cfg.Logging.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	// 3. Setup Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Initialize Database Connection
	sugar.Info("connecting to MongoDB")
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.URI))
	if err != nil {
		sugar.Fatalw("failed to connect to MongoDB", "error", err)
	}
	defer mongoClient.Disconnect(ctx)
	db := mongoClient.Database(cfg.Database.Name)

	// 5. Initialize Components
	sugar.Info("initializing components")
	broker := events.NewBroker()
	snapshotStore := storage.NewMongoSnapshotStore(mongoClient, db, cfg.Database)
	statusStore := storage.NewMongoStatusStorage(db, cfg.Database.StatusCollection)
	if err := snapshotStore.EnsureIndexes(ctx); err != nil {
		sugar.Fatalw("failed to ensure indexes", "error", err)
	}

	repoFetcher := fetcher.NewFetcher(cfg.Fetcher, sugar.Named("fetcher"))

	var detailSummarizer service.DetailSummarizer
	if cfg.Summarizer.APIKey != "" {
		detailSummarizer = summarizer.NewSummarizer(cfg.Summarizer, sugar.Named("summarizer"))
	} else {
		sugar.Warn("summarizer API key not set, running with cached details only")
	}

	var siteWriter service.SiteWriter
	if gen := report.NewSiteGenerator(cfg.Report, sugar.Named("site")); gen != nil {
		siteWriter = gen
	}

	// 6. Initialize the core service
	coreService := service.NewService(
		cfg.Watcher,
		cfg.Trends,
		cfg.Summarizer.TopNDetails,
		repoFetcher,
		detailSummarizer,
		snapshotStore,
		statusStore,
		siteWriter,
		broker,
		sugar.Named("service"),
	)

	// 7. Wire the mail sender to report events
	if mailer := report.NewMailer(cfg.Report, sugar.Named("mailer")); mailer != nil {
		go mailer.Listen(ctx, broker.Subscribe(service.EventReportReady))
	} else {
		sugar.Warn("email delivery not configured, reports will not be mailed")
	}

	// 8. Start the cycle loop in the background
	go func() {
		if err := coreService.Start(ctx); err != nil && err != context.Canceled {
			sugar.Errorw("core service error", "error", err)
			cancel() // Trigger shutdown on critical service error
		}
	}()

	// 9. Start the API server
	apiServer := rest.NewServer(cfg.Server.Port, coreService)
	go func() {
		sugar.Infow("API server starting", "port", cfg.Server.Port)
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("API server failed", "error", err)
		}
	}()

	// 10. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	sugar.Info("shutdown signal received, shutting down gracefully")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		sugar.Errorw("error during API server shutdown", "error", err)
	}
	coreService.Stop()

	sugar.Info("server shut down successfully")
}

// newLogger builds the zap logger for the configured mode.
func newLogger(mode string) (*zap.Logger, error) {
	if strings.EqualFold(mode, "prod") || strings.EqualFold(mode, "production") {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
