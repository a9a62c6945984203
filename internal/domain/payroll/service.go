package payroll

import (
	"context"
	"fmt"

	"parceldesk/internal/core/apperror"
	appctx "parceldesk/internal/core/context"
	"parceldesk/internal/core/entity"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/tx"
	"parceldesk/internal/core/types"
	"parceldesk/internal/domain"
	"parceldesk/internal/domain/catalogs/branch"
	"parceldesk/internal/domain/catalogs/employee"
	"parceldesk/internal/domain/ledger"
	"parceldesk/pkg/logger"
	"parceldesk/pkg/sequence"
)

// EmployeeDirectory resolves active employees.
type EmployeeDirectory interface {
	RequireActive(ctx context.Context, employeeID id.ID) (*employee.Employee, error)
}

// BranchDirectory resolves active branches.
type BranchDirectory interface {
	RequireActive(ctx context.Context, branchID id.ID) (*branch.Branch, error)
}

// NumberIssuer issues payslip numbers from tenant counters.
type NumberIssuer interface {
	IssueNext(ctx context.Context, tenantKey, counter string) (string, error)
}

// Recorder records ledger events.
type Recorder interface {
	Record(ctx context.Context, event ledger.Event) ([]ledger.EntryRef, error)
}

// Service provides business logic for payroll.
type Service struct {
	repo      Repository
	employees EmployeeDirectory
	branches  BranchDirectory
	numbers   NumberIssuer
	recorder  Recorder
	txManager tx.Manager
}

// NewService creates a payroll service.
func NewService(repo Repository, employees EmployeeDirectory, branches BranchDirectory,
	numbers NumberIssuer, recorder Recorder, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		branches:  branches,
		numbers:   numbers,
		recorder:  recorder,
		txManager: txManager,
	}
}

// IssueInput carries the fields accepted when issuing a payslip.
// Amount overrides the employee's monthly salary when set.
type IssueInput struct {
	EmployeeID  id.ID
	PeriodYear  int
	PeriodMonth int
	Amount      *types.Money
}

// Issue creates a payslip for the period and books the salary expense with
// its paired cash outflow. One payslip per employee per period.
func (s *Service) Issue(ctx context.Context, input IssueInput) (*Payslip, error) {
	emp, err := s.employees.RequireActive(ctx, input.EmployeeID)
	if err != nil {
		return nil, err
	}
	b, err := s.branches.RequireActive(ctx, emp.BranchID)
	if err != nil {
		return nil, err
	}

	amount := emp.MonthlySalary
	if input.Amount != nil {
		amount = *input.Amount
	}

	p := &Payslip{
		Document:    entity.NewDocument(),
		EmployeeID:  emp.ID,
		BranchID:    emp.BranchID,
		PeriodYear:  input.PeriodYear,
		PeriodMonth: input.PeriodMonth,
		Amount:      amount,
		Status:      StatusIssued,
	}
	p.CreatedBy = appctx.GetUserID(ctx)
	p.UpdatedBy = p.CreatedBy

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsForPeriod(ctx, emp.ID, input.PeriodYear, input.PeriodMonth)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewDuplicate("payslip", "period",
			fmt.Sprintf("%04d-%02d", input.PeriodYear, input.PeriodMonth))
	}

	number, err := s.numbers.IssueNext(ctx, b.TenantKey, sequence.CounterPayslip)
	if err != nil {
		return nil, err
	}
	p.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, ledger.PayslipIssued{
			PayslipID:  p.ID,
			Number:     p.Number,
			EmployeeID: p.EmployeeID,
			BranchID:   p.BranchID,
			Amount:     p.Amount,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payslip issued",
		"number", p.Number,
		"employee_id", p.EmployeeID.String(),
		"amount", p.Amount.String())

	return p, nil
}

// GetByID returns a payslip by ID.
func (s *Service) GetByID(ctx context.Context, payslipID id.ID) (*Payslip, error) {
	return s.repo.GetByID(ctx, payslipID)
}

// List returns payslips matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*Payslip], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultFilter().Limit
	}
	return s.repo.List(ctx, filter)
}
