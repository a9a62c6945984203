// Package payroll provides salary payslips. Issuing a payslip books the
// salary expense and the matching cash outflow in the ledger.
package payroll

import (
	"context"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/entity"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
)

// Status of a payslip.
type Status string

const (
	StatusIssued Status = "issued"
)

// Payslip is a salary payment for one employee and one period.
type Payslip struct {
	entity.Document

	EmployeeID id.ID `db:"employee_id" json:"employeeId"`
	BranchID   id.ID `db:"branch_id" json:"branchId"`

	PeriodYear  int `db:"period_year" json:"periodYear"`
	PeriodMonth int `db:"period_month" json:"periodMonth"`

	Amount types.Money `db:"amount" json:"amount"`
	Status Status      `db:"status" json:"status"`
}

// Validate implements entity.Validatable interface.
func (p *Payslip) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.EmployeeID) {
		return apperror.NewValidation("employee is required").
			WithDetail("field", "employeeId")
	}
	if p.PeriodMonth < 1 || p.PeriodMonth > 12 {
		return apperror.NewValidation("period month must be 1..12").
			WithDetail("periodMonth", p.PeriodMonth)
	}
	if p.PeriodYear < 2000 {
		return apperror.NewValidation("period year is out of range").
			WithDetail("periodYear", p.PeriodYear)
	}
	if !p.Amount.IsPositive() {
		return apperror.NewInvalidAmount("payslip amount must be positive").
			WithDetail("amount", p.Amount.String())
	}
	return nil
}
