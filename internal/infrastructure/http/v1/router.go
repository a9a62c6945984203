// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"parceldesk/internal/domain/catalogs/branch"
	"parceldesk/internal/domain/catalogs/driver"
	"parceldesk/internal/domain/catalogs/employee"
	"parceldesk/internal/domain/ledger"
	"parceldesk/internal/domain/manifest"
	"parceldesk/internal/domain/parcel"
	"parceldesk/internal/domain/payroll"
	"parceldesk/internal/infrastructure/http/v1/handlers"
	"parceldesk/internal/infrastructure/http/v1/middleware"
	"parceldesk/internal/infrastructure/storage/postgres"
	"parceldesk/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager drives transactions for the idempotency store
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// Services
	BranchService   *branch.Service
	DriverService   *driver.Service
	EmployeeService *employee.Service
	ParcelService   *parcel.Service
	ManifestService *manifest.Service
	PayrollService  *payroll.Service

	// LedgerRepo backs the read-only ledger endpoints
	LedgerRepo ledger.Repository

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	// IdempotencyTTL is how long completed keys replay before expiring
	IdempotencyTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no operator context required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	api.Use(middleware.UserContext())

	if cfg.IdempotencyEnabled {
		ttl := cfg.IdempotencyTTL
		if ttl <= 0 {
			ttl = 10 * time.Minute
		}
		store := postgres.NewIdempotencyStore(cfg.TxManager, ttl)
		api.Use(middleware.Idempotency(store))
	}

	registerCatalogRoutes(api, cfg)
	registerParcelRoutes(api, cfg)
	registerManifestRoutes(api, cfg)
	registerPayrollRoutes(api, cfg)
	registerLedgerRoutes(api, cfg)

	return router
}

// registerCatalogRoutes registers reference data endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- BRANCHES ---
	{
		handler := handlers.NewBranchHandler(baseHandler, cfg.BranchService)
		RegisterCatalogRoutes(catalogs.Group("/branches"), handler)
	}

	// --- DRIVERS ---
	{
		handler := handlers.NewDriverHandler(baseHandler, cfg.DriverService)
		RegisterCatalogRoutes(catalogs.Group("/drivers"), handler)
	}

	// --- EMPLOYEES ---
	{
		handler := handlers.NewEmployeeHandler(baseHandler, cfg.EmployeeService)
		RegisterCatalogRoutes(catalogs.Group("/employees"), handler)
	}
}

// registerParcelRoutes registers shipment endpoints.
func registerParcelRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewParcelHandler(baseHandler, cfg.ParcelService)

	parcels := rg.Group("/parcels")
	{
		parcels.GET("", handler.List)
		parcels.POST("", handler.Create)
		parcels.GET("/tracking/:number", handler.GetByTrackingNumber)
		parcels.GET("/:id", handler.Get)
		parcels.GET("/:id/history", handler.History)
		parcels.POST("/:id/transition", handler.Transition)
		parcels.POST("/:id/driver", handler.AssignDriver)
		parcels.POST("/:id/pay", handler.MarkPaid)
	}
}

// registerManifestRoutes registers delivery run endpoints.
func registerManifestRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewManifestHandler(baseHandler, cfg.ManifestService)

	manifests := rg.Group("/manifests")
	{
		manifests.GET("", handler.List)
		manifests.POST("", handler.Create)
		manifests.GET("/:id", handler.Get)
		manifests.GET("/:id/parcels", handler.Parcels)
		manifests.POST("/:id/parcels", handler.AddParcel)
		manifests.DELETE("/:id/parcels/:parcelId", handler.RemoveParcel)
		manifests.POST("/:id/advance", handler.Advance)
		manifests.POST("/:id/settle", handler.Settle)
		manifests.POST("/:id/cancel", handler.Cancel)
	}
}

// registerPayrollRoutes registers payslip endpoints.
func registerPayrollRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewPayrollHandler(baseHandler, cfg.PayrollService)

	payslips := rg.Group("/payslips")
	{
		payslips.GET("", handler.List)
		payslips.POST("", handler.Issue)
		payslips.GET("/:id", handler.Get)
	}
}

// registerLedgerRoutes registers read-only ledger endpoints.
func registerLedgerRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewLedgerHandler(baseHandler, cfg.LedgerRepo)

	ledgerGroup := rg.Group("/ledger")
	{
		ledgerGroup.GET("/cash-transactions", handler.CashTransactions)
		ledgerGroup.GET("/expenses", handler.Expenses)
		ledgerGroup.GET("/debts", handler.Debts)
	}
}
