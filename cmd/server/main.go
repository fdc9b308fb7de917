package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"manifest-service/internal/infrastructure/config"
	"manifest-service/internal/infrastructure/oauth"
	"manifest-service/internal/infrastructure/persistence"
	"manifest-service/internal/infrastructure/router"
	"manifest-service/internal/interface/gmail"
	"manifest-service/internal/interface/repository"
	"manifest-service/internal/usecase"
	"manifest-service/pkg/logger"
	"manifest-service/pkg/manifest"
	"manifest-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Manifest Ingestion Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection for the email store
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Set up PostgreSQL connection for orders
	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up repositories
	emailRepo := repository.NewMongoEmailRepository(db)
	orderRepo, err := repository.NewGormOrderRepository(gormDB)
	if err != nil {
		log.Fatal("Failed to set up order repository", "error", err)
	}

	// Set up metrics
	appMetrics := metrics.NewMetrics("manifest_service")

	// Set up the manifest pipeline
	parser := manifest.NewParser(log)
	processor := usecase.NewManifestProcessor(emailRepo, orderRepo, parser, appMetrics, log)

	subjectRouter := router.NewSubjectRouter(log)
	subjectRouter.Register(usecase.NewManifestHandlerAdapter(processor, cfg.SubjectKeywords))
	orchestrator := usecase.NewEmailOrchestrator(emailRepo, subjectRouter, log)

	// Set up Gmail OAuth
	gmailOAuth := oauth.NewGmailOAuth(
		cfg.GmailClientID,
		cfg.GmailClientSecret,
		cfg.GmailRefreshToken,
		log,
	)
	tokenSource := gmailOAuth.GetTokenSource(ctx)

	// Set up Gmail service
	gmailService, err := gmail.NewGmailService(ctx, tokenSource, emailRepo, log, cfg.GmailPollInterval, cfg.SubjectKeywords)
	if err != nil {
		log.Fatal("Failed to create Gmail service", "error", err)
	}

	// Start Gmail polling in a goroutine
	go gmailService.StartPolling(ctx)

	// Start manifest processor in a goroutine
	go func() {
		processTicker := time.NewTicker(cfg.ProcessInterval)
		defer processTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Manifest processor stopped")
				return
			case <-processTicker.C:
				log.Debug("Processing pending manifest emails")
				if err := orchestrator.ProcessPendingEmails(ctx); err != nil {
					log.Error("Error processing manifest emails", "error", err)
				}
			}
		}
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Manifest Ingestion Service stopped")
}
