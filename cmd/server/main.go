// Package main is the entry point for the parceldesk API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"parceldesk/internal/domain/catalogs/branch"
	"parceldesk/internal/domain/catalogs/driver"
	"parceldesk/internal/domain/catalogs/employee"
	"parceldesk/internal/domain/ledger"
	"parceldesk/internal/domain/manifest"
	"parceldesk/internal/domain/parcel"
	"parceldesk/internal/domain/payroll"
	v1 "parceldesk/internal/infrastructure/http/v1"
	"parceldesk/internal/infrastructure/storage/postgres"
	"parceldesk/internal/infrastructure/storage/postgres/catalog_repo"
	"parceldesk/internal/infrastructure/storage/postgres/document_repo"
	"parceldesk/internal/infrastructure/storage/postgres/ledger_repo"
	"parceldesk/pkg/logger"
	"parceldesk/pkg/sequence"
)

func main() {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting parceldesk server")

	// --- Database ---
	dbURL := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Sequence allocator ---
	allocator := sequence.New(pool)

	// --- Repositories ---
	branchRepo := catalog_repo.NewBranchRepo(txManager)
	driverRepo := catalog_repo.NewDriverRepo(txManager)
	employeeRepo := catalog_repo.NewEmployeeRepo(txManager)
	parcelRepo := document_repo.NewParcelRepo(txManager)
	manifestRepo := document_repo.NewManifestRepo(txManager)
	payslipRepo := document_repo.NewPayslipRepo(txManager)
	ledgerRepo := ledger_repo.NewLedgerRepo(txManager)

	// --- Services ---
	branchService := branch.NewService(branchRepo, txManager)
	driverService := driver.NewService(driverRepo, txManager)
	employeeService := employee.NewService(employeeRepo, txManager)

	recorder := ledger.NewRecorder(ledgerRepo, txManager)

	parcelService := parcel.NewService(parcelRepo, branchService, driverService,
		allocator, recorder, txManager)
	manifestService := manifest.NewService(manifestRepo, parcelService, branchService,
		driverService, allocator, recorder, txManager)
	payrollService := payroll.NewService(payslipRepo, employeeService, branchService,
		allocator, recorder, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		TxManager:          txManager,
		Logger:             log,
		BranchService:      branchService,
		DriverService:      driverService,
		EmployeeService:    employeeService,
		ParcelService:      parcelService,
		ManifestService:    manifestService,
		PayrollService:     payrollService,
		LedgerRepo:         ledgerRepo,
		IdempotencyEnabled: getEnv("IDEMPOTENCY_ENABLED", "true") == "true",
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute),
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
