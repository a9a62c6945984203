package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
)

// memRepo keeps ledger rows in memory. Error injection simulates a failed
// insert mid-event.
type memRepo struct {
	cash     []*CashTransaction
	expenses []*Expense
	debts    []*Debt

	failCashInsert    bool
	failExpenseInsert bool
}

func (m *memRepo) InsertCashTransaction(_ context.Context, t *CashTransaction) error {
	if m.failCashInsert {
		return errors.New("insert cash_transaction: connection reset")
	}
	m.cash = append(m.cash, t)
	return nil
}

func (m *memRepo) InsertExpense(_ context.Context, e *Expense) error {
	if m.failExpenseInsert {
		return errors.New("insert expense: connection reset")
	}
	m.expenses = append(m.expenses, e)
	return nil
}

func (m *memRepo) InsertDebt(_ context.Context, d *Debt) error {
	m.debts = append(m.debts, d)
	return nil
}

func (m *memRepo) SettleDebt(_ context.Context, debtID id.ID, at time.Time) error {
	for _, d := range m.debts {
		if d.ID == debtID {
			d.Settled = true
			settledAt := at
			d.SettledAt = &settledAt
			return nil
		}
	}
	return errors.New("debt not found")
}

func (m *memRepo) ListCashTransactionsBySource(_ context.Context, sourceType string, sourceID id.ID) ([]*CashTransaction, error) {
	var out []*CashTransaction
	for _, t := range m.cash {
		if t.SourceType == sourceType && t.SourceID == sourceID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memRepo) ListOpenDebtsBySource(_ context.Context, sourceType string, sourceID id.ID) ([]*Debt, error) {
	var out []*Debt
	for _, d := range m.debts {
		if d.SourceType == sourceType && d.SourceID == sourceID && !d.Settled {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memRepo) ListCashTransactions(_ context.Context, _ Filter) ([]*CashTransaction, error) {
	return m.cash, nil
}

func (m *memRepo) ListExpenses(_ context.Context, _ Filter) ([]*Expense, error) {
	return m.expenses, nil
}

func (m *memRepo) ListDebts(_ context.Context, _ Filter) ([]*Debt, error) {
	return m.debts, nil
}

// memTxManager snapshots the repo before fn and restores it when fn fails,
// mirroring a database rollback.
type memTxManager struct {
	repo *memRepo
}

func (m *memTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	cash := append([]*CashTransaction(nil), m.repo.cash...)
	expenses := append([]*Expense(nil), m.repo.expenses...)
	debts := append([]*Debt(nil), m.repo.debts...)

	if err := fn(ctx); err != nil {
		m.repo.cash = cash
		m.repo.expenses = expenses
		m.repo.debts = debts
		return err
	}
	return nil
}

func newTestRecorder() (*Recorder, *memRepo) {
	repo := &memRepo{}
	return NewRecorder(repo, &memTxManager{repo: repo}), repo
}

func TestRecord_PayslipPairsExpenseWithCashOutflow(t *testing.T) {
	recorder, repo := newTestRecorder()
	branchID := id.New()
	payslipID := id.New()

	refs, err := recorder.Record(context.Background(), PayslipIssued{
		PayslipID:  payslipID,
		Number:     "PAY100001",
		EmployeeID: id.New(),
		BranchID:   branchID,
		Amount:     types.NewMoney(500000),
	})
	require.NoError(t, err)
	require.Len(t, refs, 2)

	require.Len(t, repo.cash, 1)
	require.Len(t, repo.expenses, 1)

	cash := repo.cash[0]
	exp := repo.expenses[0]

	assert.Equal(t, DirectionExpense, cash.Direction)
	assert.Equal(t, CategoryDriverSalary, cash.Category)
	assert.Equal(t, CategoryDriverSalary, exp.Category)
	assert.Equal(t, cash.ID, exp.CashTransactionID)
	assert.True(t, cash.Amount.Equal(exp.Amount))
	assert.Equal(t, branchID, exp.BranchID)
	assert.Equal(t, SourcePayslip, exp.SourceType)
	assert.Equal(t, payslipID, exp.SourceID)
}

func TestRecord_PayslipRollsBackWhenSecondWriteFails(t *testing.T) {
	recorder, repo := newTestRecorder()
	repo.failExpenseInsert = true

	_, err := recorder.Record(context.Background(), PayslipIssued{
		PayslipID:  id.New(),
		Number:     "PAY100002",
		EmployeeID: id.New(),
		BranchID:   id.New(),
		Amount:     types.NewMoney(500000),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeLedgerWriteFailed))

	// The cash transaction inserted before the failure must be gone too.
	assert.Empty(t, repo.cash)
	assert.Empty(t, repo.expenses)
}

func TestRecord_PrepaidParcelBooksIncomeAtOrigin(t *testing.T) {
	recorder, repo := newTestRecorder()
	originID := id.New()
	parcelID := id.New()

	refs, err := recorder.Record(context.Background(), ParcelCreated{
		ParcelID:       parcelID,
		TrackingNumber: "GT100000",
		OriginBranchID: originID,
		Amount:         types.NewMoney(100000),
		PaidAtOrigin:   true,
	})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Len(t, repo.cash, 1)

	assert.Equal(t, DirectionIncome, repo.cash[0].Direction)
	assert.Equal(t, CategoryShippingIncome, repo.cash[0].Category)
	assert.Equal(t, originID, repo.cash[0].BranchID)
}

func TestRecord_UnpaidParcelCreationWritesNothing(t *testing.T) {
	recorder, repo := newTestRecorder()

	refs, err := recorder.Record(context.Background(), ParcelCreated{
		ParcelID:       id.New(),
		TrackingNumber: "GT100001",
		OriginBranchID: id.New(),
		Amount:         types.NewMoney(100000),
		PaidAtOrigin:   false,
	})
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Empty(t, repo.cash)
}

func TestRecord_PostpaidDeliveryOpensDebtAndPaymentSettlesIt(t *testing.T) {
	recorder, repo := newTestRecorder()
	parcelID := id.New()
	destID := id.New()

	_, err := recorder.Record(context.Background(), ParcelDelivered{
		ParcelID:            parcelID,
		TrackingNumber:      "GT100002",
		DestinationBranchID: destID,
		Amount:              types.NewMoney(80000),
		OnCredit:            true,
		Debtor:              "ACME LLC",
	})
	require.NoError(t, err)
	require.Len(t, repo.debts, 1)
	assert.False(t, repo.debts[0].Settled)
	assert.Empty(t, repo.cash, "credit delivery must not book income")

	_, err = recorder.Record(context.Background(), ParcelPaid{
		ParcelID:       parcelID,
		TrackingNumber: "GT100002",
		BranchID:       destID,
		Amount:         types.NewMoney(80000),
	})
	require.NoError(t, err)

	assert.True(t, repo.debts[0].Settled)
	require.NotNil(t, repo.debts[0].SettledAt)
	require.Len(t, repo.cash, 1)
	assert.Equal(t, DirectionIncome, repo.cash[0].Direction)
	assert.Equal(t, CategoryDebtSettlement, repo.cash[0].Category)
}

func TestRecord_CancellationReversesLiveEntriesOnce(t *testing.T) {
	recorder, repo := newTestRecorder()
	parcelID := id.New()

	_, err := recorder.Record(context.Background(), ParcelCreated{
		ParcelID:       parcelID,
		TrackingNumber: "GT100003",
		OriginBranchID: id.New(),
		Amount:         types.NewMoney(120000),
		PaidAtOrigin:   true,
	})
	require.NoError(t, err)

	refs, err := recorder.Record(context.Background(), ParcelCancelled{
		ParcelID:       parcelID,
		TrackingNumber: "GT100003",
	})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Len(t, repo.cash, 2)

	orig, rev := repo.cash[0], repo.cash[1]
	assert.True(t, rev.Reversal)
	require.NotNil(t, rev.ReversesID)
	assert.Equal(t, orig.ID, *rev.ReversesID)
	assert.Equal(t, DirectionExpense, rev.Direction)
	assert.True(t, orig.Amount.Equal(rev.Amount))

	// Second cancellation finds nothing live to reverse.
	refs, err = recorder.Record(context.Background(), ParcelCancelled{
		ParcelID:       parcelID,
		TrackingNumber: "GT100003",
	})
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Len(t, repo.cash, 2)
}

func TestRecord_ManifestSettledSkipsZeroCommission(t *testing.T) {
	recorder, repo := newTestRecorder()

	refs, err := recorder.Record(context.Background(), ManifestSettled{
		ManifestID:       id.New(),
		Number:           "MAN100000",
		DriverID:         id.New(),
		BranchID:         id.New(),
		DriverCommission: types.ZeroMoney(),
	})
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Empty(t, repo.cash)
	assert.Empty(t, repo.expenses)
}
