// Package ledger_repo provides the PostgreSQL implementation of the ledger
// repository. Cash transactions and expenses are append-only; debts are
// insert-then-settle.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/domain/ledger"
	"parceldesk/internal/infrastructure/storage/postgres"
)

const (
	cashTable    = "ledger_cash_transactions"
	expenseTable = "ledger_expenses"
	debtTable    = "ledger_debts"
)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager

	cashCols    []string
	expenseCols []string
	debtCols    []string
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager:   txManager,
		cashCols:    postgres.ExtractDBColumns[ledger.CashTransaction](),
		expenseCols: postgres.ExtractDBColumns[ledger.Expense](),
		debtCols:    postgres.ExtractDBColumns[ledger.Debt](),
	}
}

func (r *LedgerRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *LedgerRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *LedgerRepo) insert(ctx context.Context, table string, row any) error {
	q := r.builder().
		Insert(table).
		SetMap(postgres.StructToMap(row))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}

	return nil
}

// InsertCashTransaction appends one cashbox movement.
func (r *LedgerRepo) InsertCashTransaction(ctx context.Context, t *ledger.CashTransaction) error {
	return r.insert(ctx, cashTable, t)
}

// InsertExpense appends one expense row.
func (r *LedgerRepo) InsertExpense(ctx context.Context, e *ledger.Expense) error {
	return r.insert(ctx, expenseTable, e)
}

// InsertDebt appends one debt row.
func (r *LedgerRepo) InsertDebt(ctx context.Context, d *ledger.Debt) error {
	return r.insert(ctx, debtTable, d)
}

// SettleDebt marks a debt as settled. Settling twice is rejected as a
// conflict, which keeps payments idempotent at the caller.
func (r *LedgerRepo) SettleDebt(ctx context.Context, debtID id.ID, at time.Time) error {
	q := r.builder().
		Update(debtTable).
		Set("settled", true).
		Set("settled_at", at).
		Where(squirrel.Eq{"id": debtID}).
		Where(squirrel.Eq{"settled": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("settle debt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("debt is already settled or does not exist").
			WithDetail("debtId", debtID.String())
	}

	return nil
}

// ListCashTransactionsBySource returns all cash movements of one source
// document, oldest first, reversals included.
func (r *LedgerRepo) ListCashTransactionsBySource(ctx context.Context, sourceType string, sourceID id.ID) ([]*ledger.CashTransaction, error) {
	q := r.builder().
		Select(r.cashCols...).
		From(cashTable).
		Where(squirrel.Eq{"source_type": sourceType}).
		Where(squirrel.Eq{"source_id": sourceID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*ledger.CashTransaction
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list cash by source: %w", err)
	}

	return items, nil
}

// ListOpenDebtsBySource returns unsettled debts of one source document.
func (r *LedgerRepo) ListOpenDebtsBySource(ctx context.Context, sourceType string, sourceID id.ID) ([]*ledger.Debt, error) {
	q := r.builder().
		Select(r.debtCols...).
		From(debtTable).
		Where(squirrel.Eq{"source_type": sourceType}).
		Where(squirrel.Eq{"source_id": sourceID}).
		Where(squirrel.Eq{"settled": false}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*ledger.Debt
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list open debts by source: %w", err)
	}

	return items, nil
}

func applyFilter(q squirrel.SelectBuilder, filter ledger.Filter) squirrel.SelectBuilder {
	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"category": *filter.Category})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// ListCashTransactions returns cash movements matching the filter.
func (r *LedgerRepo) ListCashTransactions(ctx context.Context, filter ledger.Filter) ([]*ledger.CashTransaction, error) {
	q := applyFilter(r.builder().Select(r.cashCols...).From(cashTable), filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*ledger.CashTransaction
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list cash transactions: %w", err)
	}

	return items, nil
}

// ListExpenses returns expense rows matching the filter.
func (r *LedgerRepo) ListExpenses(ctx context.Context, filter ledger.Filter) ([]*ledger.Expense, error) {
	q := applyFilter(r.builder().Select(r.expenseCols...).From(expenseTable), filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*ledger.Expense
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	return items, nil
}

// ListDebts returns debt rows matching the filter.
func (r *LedgerRepo) ListDebts(ctx context.Context, filter ledger.Filter) ([]*ledger.Debt, error) {
	base := r.builder().Select(r.debtCols...).From(debtTable)
	if filter.OnlyOpen {
		base = base.Where(squirrel.Eq{"settled": false})
	}
	q := applyFilter(base, filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*ledger.Debt
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}

	return items, nil
}
