package parcel

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
	"parceldesk/internal/domain"
	"parceldesk/internal/domain/catalogs/branch"
	"parceldesk/internal/domain/catalogs/driver"
	"parceldesk/internal/domain/ledger"
)

// --- test doubles ---

type memRepo struct {
	parcels map[id.ID]*Parcel
	logs    []*Log
}

func newMemRepo() *memRepo {
	return &memRepo{parcels: make(map[id.ID]*Parcel)}
}

func (m *memRepo) Create(_ context.Context, p *Parcel) error {
	m.parcels[p.ID] = p
	return nil
}

func (m *memRepo) GetByID(_ context.Context, parcelID id.ID) (*Parcel, error) {
	p, ok := m.parcels[parcelID]
	if !ok {
		return nil, apperror.NewNotFound("parcel", parcelID)
	}
	return p, nil
}

func (m *memRepo) GetByTrackingNumber(_ context.Context, trackingNumber string) (*Parcel, error) {
	for _, p := range m.parcels {
		if p.TrackingNumber == trackingNumber {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("parcel", trackingNumber)
}

func (m *memRepo) GetForUpdate(ctx context.Context, parcelID id.ID) (*Parcel, error) {
	return m.GetByID(ctx, parcelID)
}

func (m *memRepo) Update(_ context.Context, p *Parcel) error {
	if _, ok := m.parcels[p.ID]; !ok {
		return apperror.NewNotFound("parcel", p.ID)
	}
	p.Touch()
	m.parcels[p.ID] = p
	return nil
}

func (m *memRepo) List(_ context.Context, _ Filter) (domain.ListResult[*Parcel], error) {
	var items []*Parcel
	for _, p := range m.parcels {
		items = append(items, p)
	}
	return domain.ListResult[*Parcel]{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *memRepo) GetByIDs(ctx context.Context, parcelIDs []id.ID) ([]*Parcel, error) {
	var out []*Parcel
	for _, pid := range parcelIDs {
		p, err := m.GetByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memRepo) AppendLog(_ context.Context, log *Log) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *memRepo) ListLogs(_ context.Context, parcelID id.ID) ([]*Log, error) {
	var out []*Log
	for _, l := range m.logs {
		if l.ParcelID == parcelID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memRepo) logsFor(parcelID id.ID, status Status) int {
	n := 0
	for _, l := range m.logs {
		if l.ParcelID == parcelID && l.Status == status {
			n++
		}
	}
	return n
}

type fakeBranches struct {
	branches map[id.ID]*branch.Branch
}

func (f *fakeBranches) RequireActive(_ context.Context, branchID id.ID) (*branch.Branch, error) {
	b, ok := f.branches[branchID]
	if !ok || !b.IsActive {
		return nil, apperror.NewInactiveReference("branch", branchID.String())
	}
	return b, nil
}

type fakeDrivers struct {
	drivers map[id.ID]*driver.Driver
}

func (f *fakeDrivers) RequireActive(_ context.Context, driverID id.ID) (*driver.Driver, error) {
	d, ok := f.drivers[driverID]
	if !ok || !d.IsActive {
		return nil, apperror.NewInactiveReference("driver", driverID.String())
	}
	return d, nil
}

type fakeIssuer struct {
	next int64
}

func (f *fakeIssuer) IssueNext(_ context.Context, _, _ string) (string, error) {
	v := f.next
	f.next++
	return "GT" + strconv.FormatInt(v, 10), nil
}

type fakeRecorder struct {
	events []ledger.Event
	fail   bool
}

func (f *fakeRecorder) Record(_ context.Context, event ledger.Event) ([]ledger.EntryRef, error) {
	if f.fail {
		return nil, apperror.NewLedgerWrite(event.Name(), errors.New("connection reset"))
	}
	f.events = append(f.events, event)
	return nil, nil
}

func (f *fakeRecorder) count(name string) int {
	n := 0
	for _, e := range f.events {
		if e.Name() == name {
			n++
		}
	}
	return n
}

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc      *Service
	repo     *memRepo
	recorder *fakeRecorder

	origin      *branch.Branch
	destination *branch.Branch
	driver      *driver.Driver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	origin := branch.NewBranch("HQ", "Head Office", "hq")
	destination := branch.NewBranch("BR1", "North Branch", "hq")
	drv := driver.NewDriver("DRV1", "Nurlan", origin.ID)

	repo := newMemRepo()
	recorder := &fakeRecorder{}
	svc := NewService(
		repo,
		&fakeBranches{branches: map[id.ID]*branch.Branch{origin.ID: origin, destination.ID: destination}},
		&fakeDrivers{drivers: map[id.ID]*driver.Driver{drv.ID: drv}},
		&fakeIssuer{next: 100000},
		recorder,
		passTxManager{},
	)

	return &fixture{
		svc:         svc,
		repo:        repo,
		recorder:    recorder,
		origin:      origin,
		destination: destination,
		driver:      drv,
	}
}

func (f *fixture) createInput(paymentType PaymentType) CreateInput {
	return CreateInput{
		OriginBranchID:      f.origin.ID,
		DestinationBranchID: f.destination.ID,
		SenderName:          "Aliya",
		ReceiverName:        "Bekzat",
		ShippingCost:        types.NewMoney(100000),
		ShippingTax:         types.NewMoney(10000),
		PaymentType:         paymentType,
	}
}

// mustDeliver walks a parcel Processing -> InTransit -> Delivered.
func (f *fixture) mustDeliver(t *testing.T, parcelID id.ID) *Parcel {
	t.Helper()
	_, err := f.svc.AssignDriver(context.Background(), parcelID, f.driver.ID)
	require.NoError(t, err)
	_, err = f.svc.Transition(context.Background(), parcelID, StatusInTransit, "dispatched")
	require.NoError(t, err)
	p, err := f.svc.Transition(context.Background(), parcelID, StatusDelivered, "arrived")
	require.NoError(t, err)
	return p
}

// --- tests ---

func TestCreate_IssuesTrackingNumberAndLogsRegistration(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.createInput(PaymentCOD))
	require.NoError(t, err)

	assert.Equal(t, "GT100000", p.TrackingNumber)
	assert.Equal(t, StatusProcessing, p.Status)
	assert.False(t, p.IsPaid)
	assert.True(t, p.DriverCommission.IsZero())
	assert.Equal(t, 1, f.repo.logsFor(p.ID, StatusProcessing))

	// COD creation books nothing.
	assert.Empty(t, f.recorder.events)

	p2, err := f.svc.Create(context.Background(), f.createInput(PaymentCOD))
	require.NoError(t, err)
	assert.Equal(t, "GT100001", p2.TrackingNumber)
}

func TestCreate_PrepaidBooksIncomeAtOrigin(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.createInput(PaymentPrepaid))
	require.NoError(t, err)
	assert.True(t, p.IsPaid)

	require.Equal(t, 1, f.recorder.count("parcel_created"))
	ev := f.recorder.events[0].(ledger.ParcelCreated)
	assert.True(t, ev.PaidAtOrigin)
	assert.Equal(t, f.origin.ID, ev.OriginBranchID)
	assert.True(t, types.NewMoney(100000).Equal(ev.Amount))
}

func TestCreate_RejectsTaxExceedingCost(t *testing.T) {
	f := newFixture(t)

	input := f.createInput(PaymentPrepaid)
	input.ShippingTax = types.NewMoney(200000)

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidAmount))
	assert.Empty(t, f.repo.parcels)
}

func TestCreate_RejectsInactiveBranch(t *testing.T) {
	f := newFixture(t)
	f.destination.IsActive = false

	_, err := f.svc.Create(context.Background(), f.createInput(PaymentCOD))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInactiveReference))
}

func TestTransition_DeliveredComputesCommissionAndCollectsCOD(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.createInput(PaymentCOD))
	require.NoError(t, err)

	p = f.mustDeliver(t, p.ID)

	// base 90000: driver share 63000
	assert.True(t, types.NewMoney(63000).Equal(p.DriverCommission),
		"commission: got %s", p.DriverCommission)
	assert.True(t, p.IsPaid, "COD is collected on delivery")

	require.Equal(t, 1, f.recorder.count("parcel_delivered"))
	ev := f.recorder.events[0].(ledger.ParcelDelivered)
	assert.True(t, ev.CollectedOnDelivery)
	assert.False(t, ev.OnCredit)
	assert.Equal(t, f.destination.ID, ev.DestinationBranchID)
}

func TestTransition_DeliveredTwiceIsRejectedWithoutSideEffects(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.createInput(PaymentCOD))
	require.NoError(t, err)
	f.mustDeliver(t, p.ID)

	_, err = f.svc.Transition(context.Background(), p.ID, StatusDelivered, "again")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
	assert.Contains(t, err.Error(), "already delivered")

	// Exactly one log row and one ledger event for the delivery.
	assert.Equal(t, 1, f.repo.logsFor(p.ID, StatusDelivered))
	assert.Equal(t, 1, f.recorder.count("parcel_delivered"))
}

func TestTransition_IllegalEdgeNamesBothStates(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.createInput(PaymentCOD))
	require.NoError(t, err)
	f.mustDeliver(t, p.ID)

	_, err = f.svc.Transition(context.Background(), p.ID, StatusProcessing, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeIllegalTransition))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "delivered", appErr.Details["from"])
	assert.Equal(t, "processing", appErr.Details["to"])
}

func TestTransition_InTransitRequiresAssignedDriver(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.createInput(PaymentCOD))
	require.NoError(t, err)

	_, err = f.svc.Transition(context.Background(), p.ID, StatusInTransit, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestTransition_LedgerFailureAbortsTransition(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.createInput(PaymentCOD))
	require.NoError(t, err)
	_, err = f.svc.AssignDriver(context.Background(), p.ID, f.driver.ID)
	require.NoError(t, err)
	_, err = f.svc.Transition(context.Background(), p.ID, StatusInTransit, "")
	require.NoError(t, err)

	f.recorder.fail = true
	_, err = f.svc.Transition(context.Background(), p.ID, StatusDelivered, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeLedgerWriteFailed))
	assert.Equal(t, 0, f.repo.logsFor(p.ID, StatusDelivered))
}

func TestTransition_PostpaidDeliveryOpensCredit(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.createInput(PaymentPostpaid))
	require.NoError(t, err)
	p = f.mustDeliver(t, p.ID)

	assert.False(t, p.IsPaid)
	ev := f.recorder.events[len(f.recorder.events)-1].(ledger.ParcelDelivered)
	assert.True(t, ev.OnCredit)
	assert.False(t, ev.CollectedOnDelivery)
	assert.Equal(t, "Bekzat", ev.Debtor)
}

func TestMarkPaid_CollectsPostpaidAfterDelivery(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.createInput(PaymentPostpaid))
	require.NoError(t, err)

	// Not yet delivered: collection refused.
	_, err = f.svc.MarkPaid(context.Background(), p.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))

	f.mustDeliver(t, p.ID)

	p, err = f.svc.MarkPaid(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, p.IsPaid)
	assert.Equal(t, 1, f.recorder.count("parcel_paid"))

	_, err = f.svc.MarkPaid(context.Background(), p.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
}

func TestTransition_CancellationEmitsReversalEvent(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.createInput(PaymentPrepaid))
	require.NoError(t, err)

	p, err = f.svc.Transition(context.Background(), p.ID, StatusCancelled, "sender request")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, p.Status)
	assert.Equal(t, 1, f.recorder.count("parcel_cancelled"))
	assert.Equal(t, 1, f.repo.logsFor(p.ID, StatusCancelled))
}
