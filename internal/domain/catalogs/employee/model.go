// Package employee provides the Employee catalog.
// Employees receive payslips; drivers are tracked separately because they
// also run manifests and earn per-parcel commission.
package employee

import (
	"context"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/entity"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
)

// Employee represents a back-office or warehouse employee.
type Employee struct {
	entity.Catalog

	// BranchID is the branch that pays the employee
	BranchID id.ID `db:"branch_id" json:"branchId"`

	// Position is a free-form job title
	Position string `db:"position" json:"position,omitempty"`

	// MonthlySalary is the contracted gross salary
	MonthlySalary types.Money `db:"monthly_salary" json:"monthlySalary"`

	// IsActive indicates if the employee is on the payroll
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewEmployee creates a new Employee with required fields.
func NewEmployee(code, name string, branchID id.ID, salary types.Money) *Employee {
	return &Employee{
		Catalog:       entity.NewCatalog(code, name),
		BranchID:      branchID,
		MonthlySalary: salary,
		IsActive:      true,
	}
}

// Validate implements entity.Validatable interface.
func (e *Employee) Validate(ctx context.Context) error {
	if err := e.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(e.BranchID) {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}

	if e.MonthlySalary.IsNegative() {
		return apperror.NewInvalidAmount("salary must not be negative").
			WithDetail("field", "monthlySalary")
	}

	return nil
}
