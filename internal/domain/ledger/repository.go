package ledger

import (
	"context"
	"time"

	"parceldesk/internal/core/id"
)

// Filter narrows ledger read queries.
type Filter struct {
	BranchID *id.ID
	Category *Category
	From     *time.Time
	To       *time.Time

	// OnlyOpen restricts debt queries to unsettled rows.
	OnlyOpen bool

	Limit  int
	Offset int
}

// DefaultFilter returns a filter with sane pagination.
func DefaultFilter() Filter {
	return Filter{Limit: 50}
}

// Repository persists ledger rows. Writes never update or delete existing
// rows except SettleDebt, which flips the settled flag.
type Repository interface {
	InsertCashTransaction(ctx context.Context, t *CashTransaction) error
	InsertExpense(ctx context.Context, e *Expense) error
	InsertDebt(ctx context.Context, d *Debt) error

	// SettleDebt marks a debt as settled at the given time.
	SettleDebt(ctx context.Context, debtID id.ID, at time.Time) error

	// ListCashTransactionsBySource returns all cash movements produced by one
	// source document, reversals included.
	ListCashTransactionsBySource(ctx context.Context, sourceType string, sourceID id.ID) ([]*CashTransaction, error)

	// ListOpenDebtsBySource returns unsettled debts produced by one source
	// document.
	ListOpenDebtsBySource(ctx context.Context, sourceType string, sourceID id.ID) ([]*Debt, error)

	ListCashTransactions(ctx context.Context, filter Filter) ([]*CashTransaction, error)
	ListExpenses(ctx context.Context, filter Filter) ([]*Expense, error)
	ListDebts(ctx context.Context, filter Filter) ([]*Debt, error)
}
