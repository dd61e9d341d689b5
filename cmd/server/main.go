package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skandahq/be-bills/internal/client"
	"github.com/skandahq/be-bills/internal/config"
	"github.com/skandahq/be-bills/internal/database"
	"github.com/skandahq/be-bills/internal/handler"
	"github.com/skandahq/be-bills/internal/logger"
	"github.com/skandahq/be-bills/internal/middleware"
	"github.com/skandahq/be-bills/internal/nats"
	"github.com/skandahq/be-bills/internal/ocr"
	"github.com/skandahq/be-bills/internal/repository"
	"github.com/skandahq/be-bills/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Environment: cfg.Service.Environment,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	})

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("environment", cfg.Service.Environment).
		Msg("Starting Bills Service")

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		Database:    cfg.Database.Database,
		SSLMode:     cfg.Database.SSLMode,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		MaxConnTime: cfg.Database.MaxConnTime,
		MaxIdleTime: cfg.Database.MaxIdleTime,
		HealthCheck: cfg.Database.HealthCheck,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Initialize NATS (optional; the service runs without notifications)
	var natsClient *nats.Client
	if cfg.NATS.Enabled {
		natsClient, err = nats.Connect(cfg.NATS.URL, cfg.Service.Name)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to NATS, notifications disabled")
		} else {
			defer natsClient.Close()
			log.Info().Str("url", cfg.NATS.URL).Msg("NATS connection established")
		}
	}
	notifier := client.NewNotificationPublisher(natsClient, log.Logger)

	// Initialize OCR engine provider. The engine sidecar loads its model
	// lazily; a failed probe is retried on the next bill upload.
	engineURL := cfg.OCR.EngineURL
	engineTimeout := cfg.OCR.EngineTimeout
	engine := ocr.NewEngineProvider(func(ctx context.Context) (ocr.Engine, error) {
		return client.NewOCREngineClient(engineURL, engineTimeout), nil
	})

	// Initialize repositories
	billRepo := repository.NewBillRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	verificationLogRepo := repository.NewVerificationLogRepository(db)
	vendorLinkRepo := repository.NewVendorLinkRepository(db)

	// Initialize services
	billService := service.NewBillService(
		billRepo, vendorRepo, vendorLinkRepo, engine, notifier,
		cfg.OCR.UploadDir, cfg.OCR.MatchThreshold, cfg.OCR.FuzzyMatching, log)
	verificationService := service.NewVerificationService(
		billRepo, vendorRepo, verificationLogRepo, notifier, log)
	creditService := service.NewCreditService(creditRepo, billRepo, log)
	vendorService := service.NewVendorService(vendorRepo, log)

	// Setup HTTP routes
	httpHandler := handler.NewHTTPHandler(billService, verificationService, creditService, vendorService, log)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Bill routes
	mux.HandleFunc("/api/v1/bills", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListBills(w, r)
		case http.MethodPost:
			httpHandler.CreateBill(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/bills/get", httpHandler.GetBill)
	mux.HandleFunc("/api/v1/bills/by-number", httpHandler.GetBillByNumber)
	mux.HandleFunc("/api/v1/bills/update", httpHandler.UpdateBill)
	mux.HandleFunc("/api/v1/bills/delete", httpHandler.DeleteBill)
	mux.HandleFunc("/api/v1/bills/upload", httpHandler.UploadBillImage)
	mux.HandleFunc("/api/v1/bills/verify", httpHandler.VerifyBill)
	mux.HandleFunc("/api/v1/bills/reverify", httpHandler.ReverifyBill)
	mux.HandleFunc("/api/v1/bills/adjudicate", httpHandler.AdjudicateBill)
	mux.HandleFunc("/api/v1/bills/audit", httpHandler.GetAuditTrail)
	mux.HandleFunc("/api/v1/bills/vendor-links", httpHandler.GetVendorLinkTrail)

	// Credit routes
	mux.HandleFunc("/api/v1/credits", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListCredits(w, r)
		case http.MethodPost:
			httpHandler.RecordCredit(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Vendor routes
	mux.HandleFunc("/api/v1/vendors", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListVendors(w, r)
		case http.MethodPost:
			httpHandler.CreateVendor(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/vendors/get", httpHandler.GetVendor)

	// Dashboard routes
	mux.HandleFunc("/api/v1/dashboard/summary", httpHandler.DashboardSummary)

	// Apply middleware. Upload and re-verification requests wait on the OCR
	// engine, so the request timeout must cover the engine timeout.
	var h http.Handler = mux
	h = middleware.RequestID(h)
	h = middleware.Logger(&log.Logger)(h)
	h = middleware.Recovery(&log.Logger)(h)
	h = middleware.CORS([]string{"*"})(h)
	h = middleware.Timeout(cfg.OCR.EngineTimeout + 30*time.Second)(h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
