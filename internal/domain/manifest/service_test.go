package manifest

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/entity"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
	"parceldesk/internal/domain"
	"parceldesk/internal/domain/catalogs/branch"
	"parceldesk/internal/domain/catalogs/driver"
	"parceldesk/internal/domain/ledger"
	"parceldesk/internal/domain/parcel"
)

// --- test doubles ---

type memRepo struct {
	manifests   map[id.ID]*Manifest
	attachments map[id.ID][]id.ID
}

func newMemRepo() *memRepo {
	return &memRepo{
		manifests:   make(map[id.ID]*Manifest),
		attachments: make(map[id.ID][]id.ID),
	}
}

func (m *memRepo) Create(_ context.Context, mf *Manifest) error {
	m.manifests[mf.ID] = mf
	return nil
}

func (m *memRepo) GetByID(_ context.Context, manifestID id.ID) (*Manifest, error) {
	mf, ok := m.manifests[manifestID]
	if !ok {
		return nil, apperror.NewNotFound("manifest", manifestID)
	}
	return mf, nil
}

func (m *memRepo) GetByNumber(_ context.Context, number string) (*Manifest, error) {
	for _, mf := range m.manifests {
		if mf.Number == number {
			return mf, nil
		}
	}
	return nil, apperror.NewNotFound("manifest", number)
}

func (m *memRepo) GetForUpdate(ctx context.Context, manifestID id.ID) (*Manifest, error) {
	return m.GetByID(ctx, manifestID)
}

func (m *memRepo) Update(_ context.Context, mf *Manifest) error {
	if _, ok := m.manifests[mf.ID]; !ok {
		return apperror.NewNotFound("manifest", mf.ID)
	}
	mf.Touch()
	m.manifests[mf.ID] = mf
	return nil
}

func (m *memRepo) List(_ context.Context, _ Filter) (domain.ListResult[*Manifest], error) {
	var items []*Manifest
	for _, mf := range m.manifests {
		items = append(items, mf)
	}
	return domain.ListResult[*Manifest]{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *memRepo) AddParcel(_ context.Context, manifestID, parcelID id.ID) error {
	m.attachments[manifestID] = append(m.attachments[manifestID], parcelID)
	return nil
}

func (m *memRepo) RemoveParcel(_ context.Context, manifestID, parcelID id.ID) error {
	ids := m.attachments[manifestID]
	for i, pid := range ids {
		if pid == parcelID {
			m.attachments[manifestID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("manifest parcel", parcelID)
}

func (m *memRepo) ParcelIDs(_ context.Context, manifestID id.ID) ([]id.ID, error) {
	return m.attachments[manifestID], nil
}

func (m *memRepo) OpenManifestIDForParcel(_ context.Context, parcelID id.ID) (id.ID, error) {
	for mid, ids := range m.attachments {
		mf := m.manifests[mid]
		if mf == nil || IsTerminal(mf.Status) {
			continue
		}
		for _, pid := range ids {
			if pid == parcelID {
				return mid, nil
			}
		}
	}
	return id.Nil(), nil
}

type fakeParcels struct {
	parcels map[id.ID]*parcel.Parcel
}

func (f *fakeParcels) GetByID(_ context.Context, parcelID id.ID) (*parcel.Parcel, error) {
	p, ok := f.parcels[parcelID]
	if !ok {
		return nil, apperror.NewNotFound("parcel", parcelID)
	}
	return p, nil
}

func (f *fakeParcels) AssignDriver(ctx context.Context, parcelID, driverID id.ID) (*parcel.Parcel, error) {
	p, err := f.GetByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	assigned := driverID
	p.AssignedDriverID = &assigned
	return p, nil
}

func (f *fakeParcels) Transition(ctx context.Context, parcelID id.ID, target parcel.Status, _ string) (*parcel.Parcel, error) {
	p, err := f.GetByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if err := parcel.ValidateTransition(p.Status, target); err != nil {
		return nil, err
	}
	p.Status = target
	return p, nil
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
	return "MAN" + strconv.FormatInt(v, 10), nil
}

type fakeRecorder struct {
	events []ledger.Event
}

func (f *fakeRecorder) Record(_ context.Context, event ledger.Event) ([]ledger.EntryRef, error) {
	f.events = append(f.events, event)
	return nil, nil
}

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc      *Service
	repo     *memRepo
	parcels  *fakeParcels
	recorder *fakeRecorder

	branch *branch.Branch
	driver *driver.Driver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	b := branch.NewBranch("HQ", "Head Office", "hq")
	drv := driver.NewDriver("DRV1", "Nurlan", b.ID)

	repo := newMemRepo()
	parcels := &fakeParcels{parcels: make(map[id.ID]*parcel.Parcel)}
	recorder := &fakeRecorder{}
	svc := NewService(
		repo,
		parcels,
		&fakeBranches{branches: map[id.ID]*branch.Branch{b.ID: b}},
		&fakeDrivers{drivers: map[id.ID]*driver.Driver{drv.ID: drv}},
		&fakeIssuer{next: 100000},
		recorder,
		passTxManager{},
	)

	return &fixture{
		svc:      svc,
		repo:     repo,
		parcels:  parcels,
		recorder: recorder,
		branch:   b,
		driver:   drv,
	}
}

func (f *fixture) addParcel(status parcel.Status, cost, tax int64, paymentType parcel.PaymentType, paid bool) *parcel.Parcel {
	p := &parcel.Parcel{
		BaseDocument:        entity.NewBaseDocument(),
		TrackingNumber:      "GT" + strconv.Itoa(len(f.parcels.parcels)+100000),
		Status:              status,
		OriginBranchID:      f.branch.ID,
		DestinationBranchID: f.branch.ID,
		SenderName:          "Aliya",
		ReceiverName:        "Bekzat",
		ShippingCost:        types.NewMoney(cost),
		ShippingTax:         types.NewMoney(tax),
		PaymentType:         paymentType,
		IsPaid:              paid,
	}
	f.parcels.parcels[p.ID] = p
	return p
}

func (f *fixture) openManifest(t *testing.T) *Manifest {
	t.Helper()
	m, err := f.svc.Create(context.Background(), CreateInput{
		BranchID: f.branch.ID,
		DriverID: f.driver.ID,
	})
	require.NoError(t, err)
	return m
}

// --- tests ---

func TestCreate_IssuesManifestNumber(t *testing.T) {
	f := newFixture(t)

	m := f.openManifest(t)
	assert.Equal(t, "MAN100000", m.Number)
	assert.Equal(t, StatusProcessing, m.Status)

	m2 := f.openManifest(t)
	assert.Equal(t, "MAN100001", m2.Number)
}

func TestAddParcel_AssignsDriverAndRejectsDoubleBooking(t *testing.T) {
	f := newFixture(t)
	m := f.openManifest(t)
	p := f.addParcel(parcel.StatusProcessing, 5000, 0, parcel.PaymentCOD, false)

	require.NoError(t, f.svc.AddParcel(context.Background(), m.ID, p.ID))
	require.NotNil(t, p.AssignedDriverID)
	assert.Equal(t, f.driver.ID, *p.AssignedDriverID)

	// The same parcel cannot ride on a second open manifest.
	m2 := f.openManifest(t)
	err := f.svc.AddParcel(context.Background(), m2.ID, p.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
}

func TestAddParcel_RejectsDispatchedParcel(t *testing.T) {
	f := newFixture(t)
	m := f.openManifest(t)
	p := f.addParcel(parcel.StatusInTransit, 5000, 0, parcel.PaymentCOD, false)

	err := f.svc.AddParcel(context.Background(), m.ID, p.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestAdvance_DispatchMovesAttachedParcels(t *testing.T) {
	f := newFixture(t)
	m := f.openManifest(t)
	p1 := f.addParcel(parcel.StatusProcessing, 5000, 0, parcel.PaymentCOD, false)
	p2 := f.addParcel(parcel.StatusProcessing, 3000, 0, parcel.PaymentPrepaid, true)
	require.NoError(t, f.svc.AddParcel(context.Background(), m.ID, p1.ID))
	require.NoError(t, f.svc.AddParcel(context.Background(), m.ID, p2.ID))

	m, err := f.svc.Advance(context.Background(), m.ID, StatusPrinted)
	require.NoError(t, err)
	assert.Equal(t, StatusPrinted, m.Status)

	m, err = f.svc.Advance(context.Background(), m.ID, StatusInTransit)
	require.NoError(t, err)
	assert.Equal(t, StatusInTransit, m.Status)
	assert.Equal(t, parcel.StatusInTransit, p1.Status)
	assert.Equal(t, parcel.StatusInTransit, p2.Status)
}

func TestAdvance_SkippingPrintedIsIllegal(t *testing.T) {
	f := newFixture(t)
	m := f.openManifest(t)
	p := f.addParcel(parcel.StatusProcessing, 5000, 0, parcel.PaymentCOD, false)
	require.NoError(t, f.svc.AddParcel(context.Background(), m.ID, p.ID))

	_, err := f.svc.Advance(context.Background(), m.ID, StatusInTransit)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeIllegalTransition))
}

// dispatched walks a composed manifest to InTransit.
func (f *fixture) dispatched(t *testing.T, m *Manifest) *Manifest {
	t.Helper()
	_, err := f.svc.Advance(context.Background(), m.ID, StatusPrinted)
	require.NoError(t, err)
	m, err = f.svc.Advance(context.Background(), m.ID, StatusInTransit)
	require.NoError(t, err)
	return m
}

func TestSettle_TotalsExcludeUnpaidCOD(t *testing.T) {
	f := newFixture(t)
	m := f.openManifest(t)
	cod := f.addParcel(parcel.StatusProcessing, 5000, 0, parcel.PaymentCOD, false)
	prepaid := f.addParcel(parcel.StatusProcessing, 3000, 0, parcel.PaymentPrepaid, true)
	require.NoError(t, f.svc.AddParcel(context.Background(), m.ID, cod.ID))
	require.NoError(t, f.svc.AddParcel(context.Background(), m.ID, prepaid.ID))
	m = f.dispatched(t, m)

	summary, err := f.svc.Settle(context.Background(), m.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ParcelCount)
	assert.True(t, types.NewMoney(8000).Equal(summary.TotalShippingCost),
		"total cost: got %s", summary.TotalShippingCost)
	assert.True(t, types.NewMoney(3000).Equal(summary.TotalReceived),
		"received must exclude the uncollected COD fee, got %s", summary.TotalReceived)

	// Aggregate split of 8000: 5600 -> 6000 driver, 2400 -> 2000 office.
	assert.True(t, types.NewMoney(6000).Equal(summary.DriverCommissionTotal))
	assert.True(t, types.NewMoney(2000).Equal(summary.OfficeRevenueTotal))

	require.Len(t, f.recorder.events, 1)
	ev := f.recorder.events[0].(ledger.ManifestSettled)
	assert.True(t, types.NewMoney(6000).Equal(ev.DriverCommission))
	assert.Equal(t, f.driver.ID, ev.DriverID)

	// Snapshot persisted on the manifest.
	assert.Equal(t, StatusCompleted, m.Status)
	require.NotNil(t, m.SettledAt)
	assert.True(t, types.NewMoney(3000).Equal(m.TotalReceived))
}

func TestSettle_RejectsManifestWithProcessingParcel(t *testing.T) {
	f := newFixture(t)
	m := f.openManifest(t)
	p := f.addParcel(parcel.StatusProcessing, 5000, 0, parcel.PaymentCOD, false)
	require.NoError(t, f.svc.AddParcel(context.Background(), m.ID, p.ID))
	m = f.dispatched(t, m)

	// A parcel slid back to processing after dispatch (data fix scenario).
	p.Status = parcel.StatusProcessing

	_, err := f.svc.Settle(context.Background(), m.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeManifestIncomplete))
	assert.Empty(t, f.recorder.events, "no ledger event for refused settlement")
}

func TestSettle_CompletedManifestIsIllegal(t *testing.T) {
	f := newFixture(t)
	m := f.openManifest(t)
	p := f.addParcel(parcel.StatusProcessing, 5000, 0, parcel.PaymentCOD, false)
	require.NoError(t, f.svc.AddParcel(context.Background(), m.ID, p.ID))
	m = f.dispatched(t, m)

	_, err := f.svc.Settle(context.Background(), m.ID)
	require.NoError(t, err)

	_, err = f.svc.Settle(context.Background(), m.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeIllegalTransition))
}

func TestSettle_ExcludesCancelledParcels(t *testing.T) {
	f := newFixture(t)
	m := f.openManifest(t)
	kept := f.addParcel(parcel.StatusProcessing, 3000, 0, parcel.PaymentPrepaid, true)
	dropped := f.addParcel(parcel.StatusProcessing, 5000, 0, parcel.PaymentCOD, false)
	require.NoError(t, f.svc.AddParcel(context.Background(), m.ID, kept.ID))
	require.NoError(t, f.svc.AddParcel(context.Background(), m.ID, dropped.ID))
	m = f.dispatched(t, m)

	dropped.Status = parcel.StatusCancelled

	summary, err := f.svc.Settle(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ParcelCount)
	assert.True(t, types.NewMoney(3000).Equal(summary.TotalShippingCost))
}

func TestCancel_FromNonTerminalOnly(t *testing.T) {
	f := newFixture(t)

	m := f.openManifest(t)
	m, err := f.svc.Cancel(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, m.Status)

	_, err = f.svc.Cancel(context.Background(), m.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))

	m2 := f.openManifest(t)
	p := f.addParcel(parcel.StatusProcessing, 5000, 0, parcel.PaymentCOD, false)
	require.NoError(t, f.svc.AddParcel(context.Background(), m2.ID, p.ID))
	m2 = f.dispatched(t, m2)
	_, err = f.svc.Settle(context.Background(), m2.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), m2.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeIllegalTransition))
}
