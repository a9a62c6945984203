package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"parceldesk/internal/core/id"
	"parceldesk/internal/domain/catalogs/driver"
	"parceldesk/internal/infrastructure/storage/postgres"
)

const driverTable = "cat_drivers"

// DriverRepo implements driver.Repository.
type DriverRepo struct {
	*BaseCatalogRepo[*driver.Driver]
}

// NewDriverRepo creates a new driver repository.
func NewDriverRepo(txManager *postgres.TxManager) *DriverRepo {
	return &DriverRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*driver.Driver](
			txManager,
			driverTable,
			postgres.ExtractDBColumns[driver.Driver](),
			func() *driver.Driver { return &driver.Driver{} },
		),
	}
}

// ListByBranch returns active drivers of one branch.
func (r *DriverRepo) ListByBranch(ctx context.Context, branchID id.ID) ([]*driver.Driver, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"branch_id": branchID}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*driver.Driver
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by branch: %w", err)
	}

	return items, nil
}
