// Package ledger records the financial side effects of parcel, manifest and
// payroll events: cashbox transactions, expenses and the debt register.
//
// Rows are append-only. Corrections are compensating entries that point back
// at the row they reverse, so the audit trail stays intact.
package ledger

import (
	"time"

	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
)

// Direction of a cashbox movement.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Category classifies ledger rows.
type Category string

const (
	CategoryShippingIncome   Category = "shipping_income"
	CategoryDriverSalary     Category = "driver_salary"
	CategoryParcelCommission Category = "parcel_commission"
	CategoryDebtSettlement   Category = "debt_settlement"
)

// Source types linking ledger rows to the document that produced them.
const (
	SourceParcel   = "parcel"
	SourcePayslip  = "payslip"
	SourceManifest = "manifest"
)

// CashTransaction is one cashbox movement at a branch.
type CashTransaction struct {
	ID        id.ID       `db:"id" json:"id"`
	BranchID  id.ID       `db:"branch_id" json:"branchId"`
	Direction Direction   `db:"direction" json:"direction"`
	Category  Category    `db:"category" json:"category"`
	Amount    types.Money `db:"amount" json:"amount"`

	// Source document linkage
	SourceType string `db:"source_type" json:"sourceType"`
	SourceID   id.ID  `db:"source_id" json:"sourceId"`

	// Reversal marks a compensating entry; ReversesID points at the
	// original row.
	Reversal   bool   `db:"reversal" json:"reversal"`
	ReversesID *id.ID `db:"reverses_id" json:"reversesId,omitempty"`

	Note      string    `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

// Expense is a recognized cost at a branch. Salary and commission expenses
// always pair with exactly one CashTransaction of type Expense with matching
// amount and branch; CashTransactionID carries the pairing.
type Expense struct {
	ID       id.ID       `db:"id" json:"id"`
	BranchID id.ID       `db:"branch_id" json:"branchId"`
	Category Category    `db:"category" json:"category"`
	Amount   types.Money `db:"amount" json:"amount"`

	CashTransactionID id.ID `db:"cash_transaction_id" json:"cashTransactionId"`

	SourceType string `db:"source_type" json:"sourceType"`
	SourceID   id.ID  `db:"source_id" json:"sourceId"`

	Reversal   bool   `db:"reversal" json:"reversal"`
	ReversesID *id.ID `db:"reverses_id" json:"reversesId,omitempty"`

	Note      string    `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

// Debt is an outstanding receivable, typically a postpaid shipment.
type Debt struct {
	ID       id.ID       `db:"id" json:"id"`
	BranchID id.ID       `db:"branch_id" json:"branchId"`
	Debtor   string      `db:"debtor" json:"debtor"`
	Amount   types.Money `db:"amount" json:"amount"`

	SourceType string `db:"source_type" json:"sourceType"`
	SourceID   id.ID  `db:"source_id" json:"sourceId"`

	Settled   bool       `db:"settled" json:"settled"`
	SettledAt *time.Time `db:"settled_at" json:"settledAt,omitempty"`

	Note      string    `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

// EntryRef points at a ledger row created by Record.
type EntryRef struct {
	Kind string `json:"kind"` // cash_transaction | expense | debt
	ID   id.ID  `json:"id"`
}
