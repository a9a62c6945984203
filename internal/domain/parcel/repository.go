package parcel

import (
	"context"

	"parceldesk/internal/core/id"
	"parceldesk/internal/domain"
)

// Filter narrows parcel list queries.
type Filter struct {
	Status           *Status
	PaymentType      *PaymentType
	OriginBranchID   *id.ID
	AssignedDriverID *id.ID

	// Search matches tracking number, sender or receiver name.
	Search string

	Limit  int
	Offset int
}

// DefaultFilter returns a filter with sane pagination.
func DefaultFilter() Filter {
	return Filter{Limit: 50}
}

// Repository persists parcels and their lifecycle log.
type Repository interface {
	Create(ctx context.Context, p *Parcel) error

	GetByID(ctx context.Context, parcelID id.ID) (*Parcel, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*Parcel, error)

	// GetForUpdate loads a parcel with a row lock. Must run inside a
	// transaction; lifecycle transitions rely on the lock for idempotency.
	GetForUpdate(ctx context.Context, parcelID id.ID) (*Parcel, error)

	// Update saves a parcel with optimistic locking on the version column.
	Update(ctx context.Context, p *Parcel) error

	List(ctx context.Context, filter Filter) (domain.ListResult[*Parcel], error)

	// GetByIDs loads parcels preserving existence checks for manifests.
	GetByIDs(ctx context.Context, parcelIDs []id.ID) ([]*Parcel, error)

	AppendLog(ctx context.Context, log *Log) error
	ListLogs(ctx context.Context, parcelID id.ID) ([]*Log, error)
}
