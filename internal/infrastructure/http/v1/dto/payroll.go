package dto

import (
	"time"

	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
	"parceldesk/internal/domain/payroll"
)

// --- Request DTOs ---

// IssuePayslipRequest is the request body for issuing a payslip.
// Amount is optional; when omitted the employee's contracted salary is used.
type IssuePayslipRequest struct {
	EmployeeID  string       `json:"employeeId" binding:"required,uuid"`
	PeriodYear  int          `json:"periodYear" binding:"required,min=2000"`
	PeriodMonth int          `json:"periodMonth" binding:"required,min=1,max=12"`
	Amount      *types.Money `json:"amount"`
}

// ToInput converts the DTO to a service input.
func (r *IssuePayslipRequest) ToInput() payroll.IssueInput {
	return payroll.IssueInput{
		EmployeeID:  id.MustParse(r.EmployeeID),
		PeriodYear:  r.PeriodYear,
		PeriodMonth: r.PeriodMonth,
		Amount:      r.Amount,
	}
}

// --- Response DTOs ---

// PayslipResponse is the response body for a payslip.
type PayslipResponse struct {
	ID          string      `json:"id"`
	Number      string      `json:"number"`
	Date        time.Time   `json:"date"`
	EmployeeID  string      `json:"employeeId"`
	BranchID    string      `json:"branchId"`
	PeriodYear  int         `json:"periodYear"`
	PeriodMonth int         `json:"periodMonth"`
	Amount      types.Money `json:"amount"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// FromPayslip creates response DTO from domain entity.
func FromPayslip(p *payroll.Payslip) *PayslipResponse {
	return &PayslipResponse{
		ID:          p.ID.String(),
		Number:      p.Number,
		Date:        p.Date,
		EmployeeID:  p.EmployeeID.String(),
		BranchID:    p.BranchID.String(),
		PeriodYear:  p.PeriodYear,
		PeriodMonth: p.PeriodMonth,
		Amount:      p.Amount,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
	}
}
