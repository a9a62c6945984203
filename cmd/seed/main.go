// Package main provides a CLI tool for seeding the database with initial data.
// It provisions the sequence counters every deployment needs and, on request,
// a set of demo branches, drivers and employees.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
	"parceldesk/internal/domain/catalogs/branch"
	"parceldesk/internal/domain/catalogs/driver"
	"parceldesk/internal/domain/catalogs/employee"
	"parceldesk/internal/infrastructure/storage/postgres"
	"parceldesk/internal/infrastructure/storage/postgres/catalog_repo"
	"parceldesk/pkg/logger"
	"parceldesk/pkg/sequence"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	tenantKey := os.Getenv("SEED_TENANT_KEY")
	if tenantKey == "" {
		tenantKey = "main"
	}

	if err := provisionCounters(ctx, pool, tenantKey); err != nil {
		log.Fatalw("failed to provision counters", "error", err)
	}
	log.Infow("sequence counters provisioned", "tenant_key", tenantKey)

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, tenantKey); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// provisionCounters creates the three document counters for the tenant.
// Provision keeps the highest start on reruns, so the seed is safe to repeat.
func provisionCounters(ctx context.Context, pool *postgres.Pool, tenantKey string) error {
	allocator := sequence.New(pool)

	counters := []struct {
		name   string
		prefix string
		start  int64
	}{
		{sequence.CounterTracking, "GT", 100000},
		{sequence.CounterManifest, "MAN", 100000},
		{sequence.CounterPayslip, "PAY", 100000},
	}

	for _, c := range counters {
		if err := allocator.Provision(ctx, tenantKey, c.name, c.prefix, c.start); err != nil {
			return fmt.Errorf("provision %s: %w", c.name, err)
		}
	}

	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, tenantKey string) error {
	txManager := postgres.NewTxManager(pool)

	branchRepo := catalog_repo.NewBranchRepo(txManager)
	driverRepo := catalog_repo.NewDriverRepo(txManager)
	employeeRepo := catalog_repo.NewEmployeeRepo(txManager)

	branches := []*branch.Branch{
		branch.NewBranch("ALM", "Almaty Main Office", tenantKey),
		branch.NewBranch("AST", "Astana Branch", tenantKey),
	}

	branchIDs := make(map[string]id.ID, len(branches))
	for _, b := range branches {
		exists, err := branchRepo.ExistsByCode(ctx, b.Code)
		if err != nil {
			return fmt.Errorf("check branch %s: %w", b.Code, err)
		}
		if exists {
			existing, err := branchRepo.GetByCode(ctx, b.Code)
			if err != nil {
				return fmt.Errorf("load branch %s: %w", b.Code, err)
			}
			branchIDs[b.Code] = existing.ID
			log.Infow("branch already exists", "code", b.Code)
			continue
		}
		if err := branchRepo.Create(ctx, b); err != nil {
			return fmt.Errorf("create branch %s: %w", b.Code, err)
		}
		branchIDs[b.Code] = b.ID
		log.Infow("branch created", "code", b.Code, "name", b.Name)
	}

	drivers := []*driver.Driver{
		driver.NewDriver("DRV-001", "Bauyrzhan Seitov", branchIDs["ALM"]),
		driver.NewDriver("DRV-002", "Nurlan Akhmetov", branchIDs["AST"]),
	}
	for _, d := range drivers {
		exists, err := driverRepo.ExistsByCode(ctx, d.Code)
		if err != nil {
			return fmt.Errorf("check driver %s: %w", d.Code, err)
		}
		if exists {
			log.Infow("driver already exists", "code", d.Code)
			continue
		}
		if err := driverRepo.Create(ctx, d); err != nil {
			return fmt.Errorf("create driver %s: %w", d.Code, err)
		}
		log.Infow("driver created", "code", d.Code, "name", d.Name)
	}

	employees := []*employee.Employee{
		employee.NewEmployee("EMP-001", "Aigerim Nurlanova", branchIDs["ALM"], types.NewMoney(450000)),
		employee.NewEmployee("EMP-002", "Daniyar Omarov", branchIDs["AST"], types.NewMoney(380000)),
	}
	for _, e := range employees {
		exists, err := employeeRepo.ExistsByCode(ctx, e.Code)
		if err != nil {
			return fmt.Errorf("check employee %s: %w", e.Code, err)
		}
		if exists {
			log.Infow("employee already exists", "code", e.Code)
			continue
		}
		if err := employeeRepo.Create(ctx, e); err != nil {
			return fmt.Errorf("create employee %s: %w", e.Code, err)
		}
		log.Infow("employee created", "code", e.Code, "name", e.Name)
	}

	return nil
}
