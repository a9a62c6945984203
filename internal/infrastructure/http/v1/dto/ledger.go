package dto

import (
	"time"

	"parceldesk/internal/core/types"
	"parceldesk/internal/domain/ledger"
)

// --- Response DTOs ---

// CashTransactionResponse is one cashbox movement.
type CashTransactionResponse struct {
	ID         string      `json:"id"`
	BranchID   string      `json:"branchId"`
	Direction  string      `json:"direction"`
	Category   string      `json:"category"`
	Amount     types.Money `json:"amount"`
	SourceType string      `json:"sourceType"`
	SourceID   string      `json:"sourceId"`
	Reversal   bool        `json:"reversal"`
	ReversesID *string     `json:"reversesId,omitempty"`
	Note       string      `json:"note,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	CreatedBy  string      `json:"createdBy,omitempty"`
}

// FromCashTransaction creates response DTO from a ledger row.
func FromCashTransaction(t *ledger.CashTransaction) *CashTransactionResponse {
	resp := &CashTransactionResponse{
		ID:         t.ID.String(),
		BranchID:   t.BranchID.String(),
		Direction:  string(t.Direction),
		Category:   string(t.Category),
		Amount:     t.Amount,
		SourceType: t.SourceType,
		SourceID:   t.SourceID.String(),
		Reversal:   t.Reversal,
		Note:       t.Note,
		CreatedAt:  t.CreatedAt,
		CreatedBy:  t.CreatedBy,
	}
	if t.ReversesID != nil {
		s := t.ReversesID.String()
		resp.ReversesID = &s
	}
	return resp
}

// ExpenseResponse is one expense row.
type ExpenseResponse struct {
	ID                string      `json:"id"`
	BranchID          string      `json:"branchId"`
	Category          string      `json:"category"`
	Amount            types.Money `json:"amount"`
	SourceType        string      `json:"sourceType"`
	SourceID          string      `json:"sourceId"`
	CashTransactionID string      `json:"cashTransactionId"`
	Note              string      `json:"note,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	CreatedBy         string      `json:"createdBy,omitempty"`
}

// FromExpense creates response DTO from a ledger row.
func FromExpense(e *ledger.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:                e.ID.String(),
		BranchID:          e.BranchID.String(),
		Category:          string(e.Category),
		Amount:            e.Amount,
		SourceType:        e.SourceType,
		SourceID:          e.SourceID.String(),
		CashTransactionID: e.CashTransactionID.String(),
		Note:              e.Note,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
	}
}

// DebtResponse is one debt row.
type DebtResponse struct {
	ID         string      `json:"id"`
	BranchID   string      `json:"branchId"`
	Debtor     string      `json:"debtor"`
	Amount     types.Money `json:"amount"`
	SourceType string      `json:"sourceType"`
	SourceID   string      `json:"sourceId"`
	Settled    bool        `json:"settled"`
	SettledAt  *time.Time  `json:"settledAt,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// FromDebt creates response DTO from a ledger row.
func FromDebt(d *ledger.Debt) *DebtResponse {
	return &DebtResponse{
		ID:         d.ID.String(),
		BranchID:   d.BranchID.String(),
		Debtor:     d.Debtor,
		Amount:     d.Amount,
		SourceType: d.SourceType,
		SourceID:   d.SourceID.String(),
		Settled:    d.Settled,
		SettledAt:  d.SettledAt,
		CreatedAt:  d.CreatedAt,
	}
}
