package ledger

import (
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
)

// Event is a business fact the recorder turns into ledger rows.
// Events carry plain identifiers and amounts so the ledger package never
// imports the document packages that emit them.
type Event interface {
	// Name identifies the event kind in logs and error details.
	Name() string
}

// ParcelCreated is emitted when a shipment is registered.
// If PaidAtOrigin is set (prepaid), shipping income is booked at the origin
// branch immediately; otherwise creation produces no ledger rows.
type ParcelCreated struct {
	ParcelID       id.ID
	TrackingNumber string
	OriginBranchID id.ID
	Amount         types.Money
	PaidAtOrigin   bool
}

func (ParcelCreated) Name() string { return "parcel_created" }

// ParcelDelivered is emitted when a shipment reaches its destination.
// CollectedOnDelivery books shipping income at the destination branch (cash
// on delivery). OnCredit opens a debt instead of income; the two are
// mutually exclusive and both false for prepaid shipments.
type ParcelDelivered struct {
	ParcelID            id.ID
	TrackingNumber      string
	DestinationBranchID id.ID
	Amount              types.Money
	CollectedOnDelivery bool
	OnCredit            bool
	Debtor              string
}

func (ParcelDelivered) Name() string { return "parcel_delivered" }

// ParcelPaid is emitted when an outstanding shipment is paid after delivery.
// Income is booked at the collecting branch and any open debt for the parcel
// is settled.
type ParcelPaid struct {
	ParcelID       id.ID
	TrackingNumber string
	BranchID       id.ID
	Amount         types.Money
}

func (ParcelPaid) Name() string { return "parcel_paid" }

// ParcelCancelled is emitted when a shipment is cancelled. Every live cash
// transaction previously booked for the parcel gets a compensating entry and
// open debts are voided. Nothing is deleted.
type ParcelCancelled struct {
	ParcelID       id.ID
	TrackingNumber string
}

func (ParcelCancelled) Name() string { return "parcel_cancelled" }

// PayslipIssued is emitted when a salary payslip is issued. It produces a
// driver_salary expense paired with a cash outflow at the employee's branch.
type PayslipIssued struct {
	PayslipID  id.ID
	Number     string
	EmployeeID id.ID
	BranchID   id.ID
	Amount     types.Money
}

func (PayslipIssued) Name() string { return "payslip_issued" }

// ManifestSettled is emitted when a trip manifest is settled. It produces a
// parcel_commission expense for the driver's aggregate commission, paired
// with a cash outflow at the settling branch.
type ManifestSettled struct {
	ManifestID       id.ID
	Number           string
	DriverID         id.ID
	BranchID         id.ID
	DriverCommission types.Money
}

func (ManifestSettled) Name() string { return "manifest_settled" }
