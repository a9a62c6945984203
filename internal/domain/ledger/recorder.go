package ledger

import (
	"context"
	"fmt"
	"time"

	"parceldesk/internal/core/apperror"
	appctx "parceldesk/internal/core/context"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/tx"
	"parceldesk/internal/core/types"
	"parceldesk/pkg/logger"
)

// Recorder turns domain events into ledger rows.
//
// Every event is recorded atomically: all rows of one event land in a single
// transaction or none do. Callers that already run inside a transaction get
// the event rows in that same transaction, so a parcel status change and its
// ledger entries commit together.
type Recorder struct {
	repo      Repository
	txManager tx.Manager
	now       func() time.Time
}

// NewRecorder creates a ledger recorder.
func NewRecorder(repo Repository, txManager tx.Manager) *Recorder {
	return &Recorder{
		repo:      repo,
		txManager: txManager,
		now:       time.Now,
	}
}

// Record writes all ledger rows for one event and returns references to the
// created rows. On any failure the whole event is rolled back and the error
// carries the LEDGER_WRITE_FAILED code.
func (r *Recorder) Record(ctx context.Context, event Event) ([]EntryRef, error) {
	var refs []EntryRef

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		switch e := event.(type) {
		case ParcelCreated:
			refs, err = r.recordParcelCreated(ctx, e)
		case ParcelDelivered:
			refs, err = r.recordParcelDelivered(ctx, e)
		case ParcelPaid:
			refs, err = r.recordParcelPaid(ctx, e)
		case ParcelCancelled:
			refs, err = r.recordParcelCancelled(ctx, e)
		case PayslipIssued:
			refs, err = r.recordPayslipIssued(ctx, e)
		case ManifestSettled:
			refs, err = r.recordManifestSettled(ctx, e)
		default:
			return apperror.NewInternal(fmt.Errorf("unknown ledger event %T", event))
		}
		return err
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewLedgerWrite(event.Name(), err)
	}

	logger.Info(ctx, "ledger event recorded",
		"event", event.Name(),
		"entries", len(refs))

	return refs, nil
}

func (r *Recorder) recordParcelCreated(ctx context.Context, e ParcelCreated) ([]EntryRef, error) {
	if !e.PaidAtOrigin {
		return nil, nil
	}
	t := r.newCashTransaction(ctx, e.OriginBranchID, DirectionIncome, CategoryShippingIncome, e.Amount,
		SourceParcel, e.ParcelID, "prepaid shipping "+e.TrackingNumber)
	if err := r.repo.InsertCashTransaction(ctx, t); err != nil {
		return nil, err
	}
	return []EntryRef{{Kind: "cash_transaction", ID: t.ID}}, nil
}

func (r *Recorder) recordParcelDelivered(ctx context.Context, e ParcelDelivered) ([]EntryRef, error) {
	switch {
	case e.CollectedOnDelivery:
		t := r.newCashTransaction(ctx, e.DestinationBranchID, DirectionIncome, CategoryShippingIncome, e.Amount,
			SourceParcel, e.ParcelID, "cash on delivery "+e.TrackingNumber)
		if err := r.repo.InsertCashTransaction(ctx, t); err != nil {
			return nil, err
		}
		return []EntryRef{{Kind: "cash_transaction", ID: t.ID}}, nil

	case e.OnCredit:
		d := &Debt{
			ID:         id.New(),
			BranchID:   e.DestinationBranchID,
			Debtor:     e.Debtor,
			Amount:     e.Amount,
			SourceType: SourceParcel,
			SourceID:   e.ParcelID,
			Note:       "postpaid shipping " + e.TrackingNumber,
			CreatedAt:  r.now(),
			CreatedBy:  appctx.GetUserID(ctx),
		}
		if err := r.repo.InsertDebt(ctx, d); err != nil {
			return nil, err
		}
		return []EntryRef{{Kind: "debt", ID: d.ID}}, nil

	default:
		// Prepaid: income was booked at creation.
		return nil, nil
	}
}

func (r *Recorder) recordParcelPaid(ctx context.Context, e ParcelPaid) ([]EntryRef, error) {
	t := r.newCashTransaction(ctx, e.BranchID, DirectionIncome, CategoryDebtSettlement, e.Amount,
		SourceParcel, e.ParcelID, "payment for "+e.TrackingNumber)
	if err := r.repo.InsertCashTransaction(ctx, t); err != nil {
		return nil, err
	}
	refs := []EntryRef{{Kind: "cash_transaction", ID: t.ID}}

	debts, err := r.repo.ListOpenDebtsBySource(ctx, SourceParcel, e.ParcelID)
	if err != nil {
		return nil, err
	}
	for _, d := range debts {
		if err := r.repo.SettleDebt(ctx, d.ID, r.now()); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// recordParcelCancelled books a compensating entry for every live cash
// transaction of the parcel and voids its open debts. A row is live when it
// is not itself a reversal and no later row reverses it, so cancelling twice
// is a no-op.
func (r *Recorder) recordParcelCancelled(ctx context.Context, e ParcelCancelled) ([]EntryRef, error) {
	existing, err := r.repo.ListCashTransactionsBySource(ctx, SourceParcel, e.ParcelID)
	if err != nil {
		return nil, err
	}

	reversed := make(map[id.ID]bool)
	for _, t := range existing {
		if t.Reversal && t.ReversesID != nil {
			reversed[*t.ReversesID] = true
		}
	}

	var refs []EntryRef
	for _, orig := range existing {
		if orig.Reversal || reversed[orig.ID] {
			continue
		}
		rev := r.newCashTransaction(ctx, orig.BranchID, opposite(orig.Direction), orig.Category, orig.Amount,
			SourceParcel, e.ParcelID, "cancellation of "+e.TrackingNumber)
		rev.Reversal = true
		reversesID := orig.ID
		rev.ReversesID = &reversesID
		if err := r.repo.InsertCashTransaction(ctx, rev); err != nil {
			return nil, err
		}
		refs = append(refs, EntryRef{Kind: "cash_transaction", ID: rev.ID})
	}

	debts, err := r.repo.ListOpenDebtsBySource(ctx, SourceParcel, e.ParcelID)
	if err != nil {
		return nil, err
	}
	for _, d := range debts {
		if err := r.repo.SettleDebt(ctx, d.ID, r.now()); err != nil {
			return nil, err
		}
	}

	return refs, nil
}

func (r *Recorder) recordPayslipIssued(ctx context.Context, e PayslipIssued) ([]EntryRef, error) {
	return r.recordPairedExpense(ctx, pairedExpense{
		branchID:   e.BranchID,
		category:   CategoryDriverSalary,
		amount:     e.Amount,
		sourceType: SourcePayslip,
		sourceID:   e.PayslipID,
		note:       "payslip " + e.Number,
	})
}

func (r *Recorder) recordManifestSettled(ctx context.Context, e ManifestSettled) ([]EntryRef, error) {
	if e.DriverCommission.IsZero() {
		return nil, nil
	}
	return r.recordPairedExpense(ctx, pairedExpense{
		branchID:   e.BranchID,
		category:   CategoryParcelCommission,
		amount:     e.DriverCommission,
		sourceType: SourceManifest,
		sourceID:   e.ManifestID,
		note:       "commission for manifest " + e.Number,
	})
}

type pairedExpense struct {
	branchID   id.ID
	category   Category
	amount     types.Money
	sourceType string
	sourceID   id.ID
	note       string
}

// recordPairedExpense writes an expense row together with its matching cash
// outflow. Either both rows commit or neither does.
func (r *Recorder) recordPairedExpense(ctx context.Context, p pairedExpense) ([]EntryRef, error) {
	t := r.newCashTransaction(ctx, p.branchID, DirectionExpense, p.category, p.amount,
		p.sourceType, p.sourceID, p.note)
	if err := r.repo.InsertCashTransaction(ctx, t); err != nil {
		return nil, err
	}

	exp := &Expense{
		ID:                id.New(),
		BranchID:          p.branchID,
		Category:          p.category,
		Amount:            p.amount,
		CashTransactionID: t.ID,
		SourceType:        p.sourceType,
		SourceID:          p.sourceID,
		Note:              p.note,
		CreatedAt:         r.now(),
		CreatedBy:         appctx.GetUserID(ctx),
	}
	if err := r.repo.InsertExpense(ctx, exp); err != nil {
		return nil, err
	}

	return []EntryRef{
		{Kind: "cash_transaction", ID: t.ID},
		{Kind: "expense", ID: exp.ID},
	}, nil
}

func (r *Recorder) newCashTransaction(ctx context.Context, branchID id.ID, dir Direction, cat Category,
	amount types.Money, sourceType string, sourceID id.ID, note string) *CashTransaction {
	return &CashTransaction{
		ID:         id.New(),
		BranchID:   branchID,
		Direction:  dir,
		Category:   cat,
		Amount:     amount,
		SourceType: sourceType,
		SourceID:   sourceID,
		Note:       note,
		CreatedAt:  r.now(),
		CreatedBy:  appctx.GetUserID(ctx),
	}
}

func opposite(d Direction) Direction {
	if d == DirectionIncome {
		return DirectionExpense
	}
	return DirectionIncome
}
