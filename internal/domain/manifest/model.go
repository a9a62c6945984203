// Package manifest provides trip manifests: batches of parcels handed to one
// driver, settled against the cashbox when the trip completes.
package manifest

import (
	"context"
	"time"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/entity"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
)

// Status of a trip manifest.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusPrinted    Status = "printed"
	StatusInTransit  Status = "in_transit"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions lists the legal status edges. Completed is reached only
// through settlement.
var transitions = map[Status][]Status{
	StatusProcessing: {StatusPrinted, StatusCancelled},
	StatusPrinted:    {StatusInTransit, StatusCancelled},
	StatusInTransit:  {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether the edge from -> to is legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing edges.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// ValidateTransition checks the edge and returns an error naming both states.
func ValidateTransition(from, to Status) error {
	if from == to {
		return apperror.NewConflict("manifest is already " + string(to)).
			WithDetail("status", string(from))
	}
	if !CanTransition(from, to) {
		return apperror.NewIllegalTransition("manifest", string(from), string(to))
	}
	return nil
}

// Manifest is a driver's trip sheet. Settlement totals are a snapshot taken
// at completion and never recomputed afterwards.
type Manifest struct {
	entity.Document

	BranchID id.ID  `db:"branch_id" json:"branchId"`
	DriverID id.ID  `db:"driver_id" json:"driverId"`
	Status   Status `db:"status" json:"status"`

	TotalShippingCost     types.Money `db:"total_shipping_cost" json:"totalShippingCost"`
	TotalTax              types.Money `db:"total_tax" json:"totalTax"`
	TotalReceived         types.Money `db:"total_received" json:"totalReceived"`
	DriverCommissionTotal types.Money `db:"driver_commission_total" json:"driverCommissionTotal"`
	OfficeRevenueTotal    types.Money `db:"office_revenue_total" json:"officeRevenueTotal"`

	SettledAt *time.Time `db:"settled_at" json:"settledAt,omitempty"`
}

// Validate implements entity.Validatable interface.
func (m *Manifest) Validate(ctx context.Context) error {
	if err := m.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(m.BranchID) {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}
	if id.IsNil(m.DriverID) {
		return apperror.NewValidation("driver is required").
			WithDetail("field", "driverId")
	}
	return nil
}

// SettlementSummary is the financial outcome of a completed trip.
type SettlementSummary struct {
	ManifestID  id.ID `json:"manifestId"`
	ParcelCount int   `json:"parcelCount"`

	TotalShippingCost     types.Money `json:"totalShippingCost"`
	TotalTax              types.Money `json:"totalTax"`
	TotalReceived         types.Money `json:"totalReceived"`
	DriverCommissionTotal types.Money `json:"driverCommissionTotal"`
	OfficeRevenueTotal    types.Money `json:"officeRevenueTotal"`

	// Residual is the rounding leftover of the aggregate split, kept for
	// reconciliation.
	Residual types.Money `json:"residual"`
}
