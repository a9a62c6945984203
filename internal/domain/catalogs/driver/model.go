// Package driver provides the Driver catalog.
package driver

import (
	"context"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/entity"
	"parceldesk/internal/core/id"
)

// Driver represents a delivery driver who runs manifests.
type Driver struct {
	entity.Catalog

	// BranchID is the home branch of the driver
	BranchID id.ID `db:"branch_id" json:"branchId"`

	// Phone is the driver's contact number
	Phone *string `db:"phone" json:"phone,omitempty"`

	// VehiclePlate identifies the assigned vehicle
	VehiclePlate *string `db:"vehicle_plate" json:"vehiclePlate,omitempty"`

	// IsActive indicates if the driver can be assigned to parcels/manifests
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewDriver creates a new Driver with required fields.
func NewDriver(code, name string, branchID id.ID) *Driver {
	return &Driver{
		Catalog:  entity.NewCatalog(code, name),
		BranchID: branchID,
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (d *Driver) Validate(ctx context.Context) error {
	if err := d.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(d.BranchID) {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}

	return nil
}
