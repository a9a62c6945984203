package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"parceldesk/internal/core/id"
	"parceldesk/internal/domain"
	"parceldesk/internal/domain/payroll"
	"parceldesk/internal/infrastructure/storage/postgres"
)

const payslipTable = "doc_payslips"

// PayslipRepo implements payroll.Repository.
type PayslipRepo struct {
	*BaseDocumentRepo[*payroll.Payslip]
}

// NewPayslipRepo creates a new payslip repository.
func NewPayslipRepo(txManager *postgres.TxManager) *PayslipRepo {
	return &PayslipRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*payroll.Payslip](
			txManager,
			payslipTable,
			postgres.ExtractDBColumns[payroll.Payslip](),
			func() *payroll.Payslip { return &payroll.Payslip{} },
		),
	}
}

// List retrieves payslips with filtering and pagination.
func (r *PayslipRepo) List(ctx context.Context, filter payroll.Filter) (domain.ListResult[*payroll.Payslip], error) {
	result := domain.ListResult[*payroll.Payslip]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.EmployeeID != nil {
		q = q.Where(squirrel.Eq{"employee_id": *filter.EmployeeID})
	}
	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if filter.PeriodYear != nil {
		q = q.Where(squirrel.Eq{"period_year": *filter.PeriodYear})
	}
	if filter.PeriodMonth != nil {
		q = q.Where(squirrel.Eq{"period_month": *filter.PeriodMonth})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = q.OrderBy("period_year DESC, period_month DESC, number DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

// ExistsForPeriod reports whether the employee already has a payslip for the
// period.
func (r *PayslipRepo) ExistsForPeriod(ctx context.Context, employeeID id.ID, year, month int) (bool, error) {
	q := r.Builder().
		Select("1").
		From(payslipTable).
		Where(squirrel.Eq{"employee_id": employeeID}).
		Where(squirrel.Eq{"period_year": year}).
		Where(squirrel.Eq{"period_month": month}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists for period: %w", err)
	}

	return true, nil
}
