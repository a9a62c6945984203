package manifest

import (
	"context"

	"parceldesk/internal/core/id"
	"parceldesk/internal/domain"
)

// Filter narrows manifest list queries.
type Filter struct {
	Status   *Status
	BranchID *id.ID
	DriverID *id.ID

	// Search matches the manifest number.
	Search string

	Limit  int
	Offset int
}

// DefaultFilter returns a filter with sane pagination.
func DefaultFilter() Filter {
	return Filter{Limit: 50}
}

// Repository persists manifests and their parcel attachments.
type Repository interface {
	Create(ctx context.Context, m *Manifest) error

	GetByID(ctx context.Context, manifestID id.ID) (*Manifest, error)
	GetByNumber(ctx context.Context, number string) (*Manifest, error)

	// GetForUpdate loads a manifest with a row lock. Must run inside a
	// transaction.
	GetForUpdate(ctx context.Context, manifestID id.ID) (*Manifest, error)

	// Update saves a manifest with optimistic locking on the version column.
	Update(ctx context.Context, m *Manifest) error

	List(ctx context.Context, filter Filter) (domain.ListResult[*Manifest], error)

	AddParcel(ctx context.Context, manifestID, parcelID id.ID) error
	RemoveParcel(ctx context.Context, manifestID, parcelID id.ID) error
	ParcelIDs(ctx context.Context, manifestID id.ID) ([]id.ID, error)

	// OpenManifestIDForParcel returns the non-terminal manifest the parcel is
	// attached to, or Nil when there is none. A parcel rides on at most one
	// open manifest.
	OpenManifestIDForParcel(ctx context.Context, parcelID id.ID) (id.ID, error)
}
