package parcel

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

// NumberIssuer issues tracking numbers from tenant counters.
type NumberIssuer interface {
	IssueNext(ctx context.Context, tenantKey, counter string) (string, error)
}

// Recorder records ledger events.
type Recorder interface {
	Record(ctx context.Context, event ledger.Event) ([]ledger.EntryRef, error)
}

// Service provides business logic for shipments.
type Service struct {
	repo      Repository
	branches  BranchDirectory
	drivers   DriverDirectory
	numbers   NumberIssuer
	recorder  Recorder
	txManager tx.Manager
}

// NewService creates a parcel service.
func NewService(repo Repository, branches BranchDirectory, drivers DriverDirectory,
	numbers NumberIssuer, recorder Recorder, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		branches:  branches,
		drivers:   drivers,
		numbers:   numbers,
		recorder:  recorder,
		txManager: txManager,
	}
}

// CreateInput carries the fields accepted at registration. Status, tracking
// number and commission are never accepted from input.
type CreateInput struct {
	Date                time.Time
	OriginBranchID      id.ID
	DestinationBranchID id.ID
	SenderName          string
	SenderPhone         string
	ReceiverName        string
	ReceiverPhone       string
	ShippingCost        types.Money
	ShippingTax         types.Money
	PaymentType         PaymentType
	Comment             string
}

// Create registers a shipment: issues a tracking number from the origin
// branch's tenant counter, stores the parcel in Processing, appends the first
// log row and, for prepaid shipments, books shipping income at the origin.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Parcel, error) {
	origin, err := s.branches.RequireActive(ctx, input.OriginBranchID)
	if err != nil {
		return nil, err
	}
	if _, err := s.branches.RequireActive(ctx, input.DestinationBranchID); err != nil {
		return nil, err
	}

	// Rejects negative amounts and tax exceeding cost before a number is
	// consumed from the counter.
	if _, err := revenue.Split(input.ShippingCost, input.ShippingTax); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	p := &Parcel{
		BaseDocument:        entity.NewBaseDocument(),
		Date:                date,
		Status:              StatusProcessing,
		OriginBranchID:      input.OriginBranchID,
		DestinationBranchID: input.DestinationBranchID,
		SenderName:          input.SenderName,
		SenderPhone:         input.SenderPhone,
		ReceiverName:        input.ReceiverName,
		ReceiverPhone:       input.ReceiverPhone,
		ShippingCost:        input.ShippingCost,
		ShippingTax:         input.ShippingTax,
		PaymentType:         input.PaymentType,
		IsPaid:              input.PaymentType == PaymentPrepaid,
		DriverCommission:    types.ZeroMoney(),
		Comment:             input.Comment,
	}
	p.CreatedBy = appctx.GetUserID(ctx)
	p.UpdatedBy = p.CreatedBy

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	trackingNumber, err := s.numbers.IssueNext(ctx, origin.TenantKey, sequence.CounterTracking)
	if err != nil {
		return nil, err
	}
	p.TrackingNumber = trackingNumber

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		if err := s.appendLog(ctx, p.ID, StatusProcessing, "registered"); err != nil {
			return err
		}
		if p.PaymentType == PaymentPrepaid {
			_, err := s.recorder.Record(ctx, ledger.ParcelCreated{
				ParcelID:       p.ID,
				TrackingNumber: p.TrackingNumber,
				OriginBranchID: p.OriginBranchID,
				Amount:         p.ShippingCost,
				PaidAtOrigin:   true,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "parcel registered",
		"tracking_number", p.TrackingNumber,
		"payment_type", string(p.PaymentType))

	return p, nil
}

// Transition moves a parcel to the target status.
//
// The parcel row is locked for the whole transaction, so a concurrent
// duplicate request observes the already-updated status and fails the edge
// check instead of repeating side effects. Exactly one log row is appended
// per accepted transition.
func (s *Service) Transition(ctx context.Context, parcelID id.ID, target Status, note string) (*Parcel, error) {
	var p *Parcel

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.repo.GetForUpdate(ctx, parcelID)
		if err != nil {
			return err
		}

		if err := ValidateTransition(p.Status, target); err != nil {
			return err
		}

		switch target {
		case StatusInTransit:
			if p.AssignedDriverID == nil {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule,
					"parcel has no assigned driver").
					WithDetail("trackingNumber", p.TrackingNumber)
			}
			if _, err := s.drivers.RequireActive(ctx, *p.AssignedDriverID); err != nil {
				return err
			}

		case StatusDelivered:
			shares, err := revenue.Split(p.ShippingCost, p.ShippingTax)
			if err != nil {
				return err
			}
			p.DriverCommission = shares.Driver

			collected := p.PaymentType == PaymentCOD
			if collected {
				p.IsPaid = true
			}
			_, err = s.recorder.Record(ctx, ledger.ParcelDelivered{
				ParcelID:            p.ID,
				TrackingNumber:      p.TrackingNumber,
				DestinationBranchID: p.DestinationBranchID,
				Amount:              p.ShippingCost,
				CollectedOnDelivery: collected,
				OnCredit:            p.PaymentType == PaymentPostpaid,
				Debtor:              p.ReceiverName,
			})
			if err != nil {
				return err
			}

		case StatusCancelled:
			if _, err := s.recorder.Record(ctx, ledger.ParcelCancelled{
				ParcelID:       p.ID,
				TrackingNumber: p.TrackingNumber,
			}); err != nil {
				return err
			}
		}

		p.Status = target
		p.UpdatedBy = appctx.GetUserID(ctx)
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}

		return s.appendLog(ctx, p.ID, target, note)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "parcel transitioned",
		"tracking_number", p.TrackingNumber,
		"status", string(p.Status))

	return p, nil
}

// AssignDriver attaches an active driver to a parcel still in Processing.
// Manifest composition uses this before dispatch.
func (s *Service) AssignDriver(ctx context.Context, parcelID, driverID id.ID) (*Parcel, error) {
	if _, err := s.drivers.RequireActive(ctx, driverID); err != nil {
		return nil, err
	}

	var p *Parcel
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.repo.GetForUpdate(ctx, parcelID)
		if err != nil {
			return err
		}
		if p.Status != StatusProcessing {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"driver can only be assigned while the parcel is being processed").
				WithDetail("status", string(p.Status))
		}
		assigned := driverID
		p.AssignedDriverID = &assigned
		p.UpdatedBy = appctx.GetUserID(ctx)
		return s.repo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MarkPaid collects payment for a delivered shipment that is still unpaid
// (postpaid, or a pickup paid later). Books income and settles any open debt.
func (s *Service) MarkPaid(ctx context.Context, parcelID id.ID) (*Parcel, error) {
	var p *Parcel

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.repo.GetForUpdate(ctx, parcelID)
		if err != nil {
			return err
		}
		if p.IsPaid {
			return apperror.NewConflict("parcel is already paid").
				WithDetail("trackingNumber", p.TrackingNumber)
		}
		if p.Status != StatusDelivered && p.Status != StatusPickedUp {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"payment can only be collected after delivery").
				WithDetail("status", string(p.Status))
		}

		if _, err := s.recorder.Record(ctx, ledger.ParcelPaid{
			ParcelID:       p.ID,
			TrackingNumber: p.TrackingNumber,
			BranchID:       p.DestinationBranchID,
			Amount:         p.ShippingCost,
		}); err != nil {
			return err
		}

		p.IsPaid = true
		p.UpdatedBy = appctx.GetUserID(ctx)
		return s.repo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "parcel paid", "tracking_number", p.TrackingNumber)

	return p, nil
}

// GetByID returns a parcel by ID.
func (s *Service) GetByID(ctx context.Context, parcelID id.ID) (*Parcel, error) {
	return s.repo.GetByID(ctx, parcelID)
}

// GetByTrackingNumber returns a parcel by its tracking number.
func (s *Service) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*Parcel, error) {
	return s.repo.GetByTrackingNumber(ctx, trackingNumber)
}

// List returns parcels matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*Parcel], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// History returns the append-only lifecycle log of a parcel.
func (s *Service) History(ctx context.Context, parcelID id.ID) ([]*Log, error) {
	if _, err := s.repo.GetByID(ctx, parcelID); err != nil {
		return nil, err
	}
	return s.repo.ListLogs(ctx, parcelID)
}

func (s *Service) appendLog(ctx context.Context, parcelID id.ID, status Status, note string) error {
	return s.repo.AppendLog(ctx, &Log{
		ID:        id.New(),
		ParcelID:  parcelID,
		Status:    status,
		Note:      note,
		CreatedBy: appctx.GetUserID(ctx),
		CreatedAt: time.Now().UTC(),
	})
}
