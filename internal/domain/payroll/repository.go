package payroll

import (
	"context"

	"parceldesk/internal/core/id"
	"parceldesk/internal/domain"
)

// Filter narrows payslip list queries.
type Filter struct {
	EmployeeID  *id.ID
	BranchID    *id.ID
	PeriodYear  *int
	PeriodMonth *int

	Limit  int
	Offset int
}

// DefaultFilter returns a filter with sane pagination.
func DefaultFilter() Filter {
	return Filter{Limit: 50}
}

// Repository persists payslips.
type Repository interface {
	Create(ctx context.Context, p *Payslip) error
	GetByID(ctx context.Context, payslipID id.ID) (*Payslip, error)
	List(ctx context.Context, filter Filter) (domain.ListResult[*Payslip], error)

	// ExistsForPeriod reports whether the employee already has a payslip for
	// the period.
	ExistsForPeriod(ctx context.Context, employeeID id.ID, year, month int) (bool, error)
}
