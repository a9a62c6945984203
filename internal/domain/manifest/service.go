package manifest

import (
	"context"
	"time"

	"parceldesk/internal/core/apperror"
	appctx "parceldesk/internal/core/context"
	"parceldesk/internal/core/entity"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/tx"
	"parceldesk/internal/core/types"
	"parceldesk/internal/domain"
	"parceldesk/internal/domain/catalogs/branch"
	"parceldesk/internal/domain/catalogs/driver"
	"parceldesk/internal/domain/ledger"
	"parceldesk/internal/domain/parcel"
	"parceldesk/internal/domain/revenue"
	"parceldesk/pkg/logger"
	"parceldesk/pkg/sequence"
)

// BranchDirectory resolves active branches.
type BranchDirectory interface {
	RequireActive(ctx context.Context, branchID id.ID) (*branch.Branch, error)
}

// DriverDirectory resolves active drivers.
type DriverDirectory interface {
	RequireActive(ctx context.Context, driverID id.ID) (*driver.Driver, error)
}

// NumberIssuer issues manifest numbers from tenant counters.
type NumberIssuer interface {
	IssueNext(ctx context.Context, tenantKey, counter string) (string, error)
}

// Recorder records ledger events.
type Recorder interface {
	Record(ctx context.Context, event ledger.Event) ([]ledger.EntryRef, error)
}

// ParcelDocs is the slice of the parcel service manifests drive.
type ParcelDocs interface {
	GetByID(ctx context.Context, parcelID id.ID) (*parcel.Parcel, error)
	AssignDriver(ctx context.Context, parcelID, driverID id.ID) (*parcel.Parcel, error)
	Transition(ctx context.Context, parcelID id.ID, target parcel.Status, note string) (*parcel.Parcel, error)
}

// Service provides business logic for trip manifests.
type Service struct {
	repo      Repository
	parcels   ParcelDocs
	branches  BranchDirectory
	drivers   DriverDirectory
	numbers   NumberIssuer
	recorder  Recorder
	txManager tx.Manager
}

// NewService creates a manifest service.
func NewService(repo Repository, parcels ParcelDocs, branches BranchDirectory,
	drivers DriverDirectory, numbers NumberIssuer, recorder Recorder, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		parcels:   parcels,
		branches:  branches,
		drivers:   drivers,
		numbers:   numbers,
		recorder:  recorder,
		txManager: txManager,
	}
}

// CreateInput carries the fields accepted when opening a manifest.
type CreateInput struct {
	Date     time.Time
	BranchID id.ID
	DriverID id.ID
	Comment  string
}

// Create opens a manifest in Processing with a number issued from the
// branch's tenant counter.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Manifest, error) {
	b, err := s.branches.RequireActive(ctx, input.BranchID)
	if err != nil {
		return nil, err
	}
	if _, err := s.drivers.RequireActive(ctx, input.DriverID); err != nil {
		return nil, err
	}

	m := &Manifest{
		Document:              entity.NewDocument(),
		BranchID:              input.BranchID,
		DriverID:              input.DriverID,
		Status:                StatusProcessing,
		TotalShippingCost:     types.ZeroMoney(),
		TotalTax:              types.ZeroMoney(),
		TotalReceived:         types.ZeroMoney(),
		DriverCommissionTotal: types.ZeroMoney(),
		OfficeRevenueTotal:    types.ZeroMoney(),
	}
	if !input.Date.IsZero() {
		m.Date = input.Date
	}
	m.Comment = input.Comment
	m.CreatedBy = appctx.GetUserID(ctx)
	m.UpdatedBy = m.CreatedBy

	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numbers.IssueNext(ctx, b.TenantKey, sequence.CounterManifest)
	if err != nil {
		return nil, err
	}
	m.Number = number

	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, m)
	}); err != nil {
		return nil, err
	}

	logger.Info(ctx, "manifest opened", "number", m.Number)

	return m, nil
}

// AddParcel attaches a parcel to a manifest still in Processing and assigns
// the manifest's driver to it. A parcel rides on at most one open manifest.
func (s *Service) AddParcel(ctx context.Context, manifestID, parcelID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetForUpdate(ctx, manifestID)
		if err != nil {
			return err
		}
		if m.Status != StatusProcessing {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"parcels can only be added while the manifest is being composed").
				WithDetail("status", string(m.Status))
		}

		p, err := s.parcels.GetByID(ctx, parcelID)
		if err != nil {
			return err
		}
		if p.Status != parcel.StatusProcessing {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"only parcels in processing can be added to a manifest").
				WithDetail("trackingNumber", p.TrackingNumber).
				WithDetail("status", string(p.Status))
		}

		openID, err := s.repo.OpenManifestIDForParcel(ctx, parcelID)
		if err != nil {
			return err
		}
		if !id.IsNil(openID) {
			return apperror.NewConflict("parcel is already on an open manifest").
				WithDetail("trackingNumber", p.TrackingNumber).
				WithDetail("manifestId", openID.String())
		}

		if _, err := s.parcels.AssignDriver(ctx, parcelID, m.DriverID); err != nil {
			return err
		}

		return s.repo.AddParcel(ctx, manifestID, parcelID)
	})
}

// RemoveParcel detaches a parcel from a manifest still in Processing.
func (s *Service) RemoveParcel(ctx context.Context, manifestID, parcelID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetForUpdate(ctx, manifestID)
		if err != nil {
			return err
		}
		if m.Status != StatusProcessing {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"parcels can only be removed while the manifest is being composed").
				WithDetail("status", string(m.Status))
		}
		return s.repo.RemoveParcel(ctx, manifestID, parcelID)
	})
}

// Advance moves a manifest to Printed or InTransit. Dispatching to InTransit
// moves every attached parcel along with it.
func (s *Service) Advance(ctx context.Context, manifestID id.ID, target Status) (*Manifest, error) {
	if target != StatusPrinted && target != StatusInTransit {
		return nil, apperror.NewValidation("target status must be printed or in_transit").
			WithDetail("target", string(target))
	}

	var m *Manifest
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetForUpdate(ctx, manifestID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(m.Status, target); err != nil {
			return err
		}

		if target == StatusInTransit {
			parcelIDs, err := s.repo.ParcelIDs(ctx, manifestID)
			if err != nil {
				return err
			}
			if len(parcelIDs) == 0 {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule,
					"manifest has no parcels to dispatch").
					WithDetail("number", m.Number)
			}
			for _, pid := range parcelIDs {
				if _, err := s.parcels.Transition(ctx, pid, parcel.StatusInTransit,
					"dispatched with manifest "+m.Number); err != nil {
					return err
				}
			}
		}

		m.Status = target
		m.UpdatedBy = appctx.GetUserID(ctx)
		return s.repo.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "manifest advanced", "number", m.Number, "status", string(m.Status))

	return m, nil
}

// Settle completes a trip: totals all attached parcels, applies the
// commission split to the aggregate taxable base, books the driver's
// commission in the ledger and snapshots the summary on the manifest.
//
// Settlement is refused while any attached parcel is still in Processing.
// Cancelled parcels are excluded from the totals. TotalReceived counts only
// parcels whose fee has actually been collected, so undelivered or unpaid
// cash-on-delivery shipments do not inflate it.
func (s *Service) Settle(ctx context.Context, manifestID id.ID) (SettlementSummary, error) {
	var summary SettlementSummary

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetForUpdate(ctx, manifestID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(m.Status, StatusCompleted); err != nil {
			return err
		}

		parcelIDs, err := s.repo.ParcelIDs(ctx, manifestID)
		if err != nil {
			return err
		}

		var (
			totalCost     = types.ZeroMoney()
			totalTax      = types.ZeroMoney()
			totalReceived = types.ZeroMoney()
			pending       int
			counted       int
		)
		for _, pid := range parcelIDs {
			p, err := s.parcels.GetByID(ctx, pid)
			if err != nil {
				return err
			}
			if p.Status == parcel.StatusProcessing {
				pending++
				continue
			}
			if p.Status == parcel.StatusCancelled {
				continue
			}
			counted++
			totalCost = totalCost.Add(p.ShippingCost)
			totalTax = totalTax.Add(p.ShippingTax)
			if p.IsPaid {
				totalReceived = totalReceived.Add(p.ShippingCost)
			}
		}
		if pending > 0 {
			return apperror.NewManifestIncomplete(manifestID, pending)
		}

		shares, err := revenue.Split(totalCost, totalTax)
		if err != nil {
			return err
		}

		if _, err := s.recorder.Record(ctx, ledger.ManifestSettled{
			ManifestID:       m.ID,
			Number:           m.Number,
			DriverID:         m.DriverID,
			BranchID:         m.BranchID,
			DriverCommission: shares.Driver,
		}); err != nil {
			return err
		}

		now := time.Now().UTC()
		m.Status = StatusCompleted
		m.TotalShippingCost = totalCost
		m.TotalTax = totalTax
		m.TotalReceived = totalReceived
		m.DriverCommissionTotal = shares.Driver
		m.OfficeRevenueTotal = shares.Office
		m.SettledAt = &now
		m.UpdatedBy = appctx.GetUserID(ctx)
		if err := s.repo.Update(ctx, m); err != nil {
			return err
		}

		summary = SettlementSummary{
			ManifestID:            m.ID,
			ParcelCount:           counted,
			TotalShippingCost:     totalCost,
			TotalTax:              totalTax,
			TotalReceived:         totalReceived,
			DriverCommissionTotal: shares.Driver,
			OfficeRevenueTotal:    shares.Office,
			Residual:              shares.Residual(),
		}
		return nil
	})
	if err != nil {
		return SettlementSummary{}, err
	}

	logger.Info(ctx, "manifest settled",
		"manifest_id", summary.ManifestID.String(),
		"driver_commission", summary.DriverCommissionTotal.String())

	return summary, nil
}

// Cancel voids a manifest from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, manifestID id.ID) (*Manifest, error) {
	var m *Manifest
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetForUpdate(ctx, manifestID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(m.Status, StatusCancelled); err != nil {
			return err
		}
		m.Status = StatusCancelled
		m.UpdatedBy = appctx.GetUserID(ctx)
		return s.repo.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "manifest cancelled", "number", m.Number)

	return m, nil
}

// GetByID returns a manifest by ID.
func (s *Service) GetByID(ctx context.Context, manifestID id.ID) (*Manifest, error) {
	return s.repo.GetByID(ctx, manifestID)
}

// List returns manifests matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*Manifest], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// Parcels returns the parcels attached to a manifest.
func (s *Service) Parcels(ctx context.Context, manifestID id.ID) ([]*parcel.Parcel, error) {
	if _, err := s.repo.GetByID(ctx, manifestID); err != nil {
		return nil, err
	}
	parcelIDs, err := s.repo.ParcelIDs(ctx, manifestID)
	if err != nil {
		return nil, err
	}
	out := make([]*parcel.Parcel, 0, len(parcelIDs))
	for _, pid := range parcelIDs {
		p, err := s.parcels.GetByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
