// Package parcel provides the shipment document and its lifecycle.
package parcel

import (
	"context"
	"time"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/entity"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
)

// Status of a shipment.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusInTransit  Status = "in_transit"
	StatusDelivered  Status = "delivered"
	StatusPickedUp   Status = "picked_up"
	StatusCancelled  Status = "cancelled"
)

// PaymentType describes when and where the shipping fee is collected.
type PaymentType string

const (
	// PaymentPrepaid: sender pays at the origin branch on registration.
	PaymentPrepaid PaymentType = "prepaid"

	// PaymentCOD: receiver pays at the destination branch on delivery.
	PaymentCOD PaymentType = "cod"

	// PaymentPostpaid: delivery opens a receivable, collected later.
	PaymentPostpaid PaymentType = "postpaid"
)

// Parcel is a registered shipment.
//
// TrackingNumber is issued once at registration and never changes.
// DriverCommission is derived from cost and tax at delivery time and is
// never accepted from input.
type Parcel struct {
	entity.BaseDocument

	TrackingNumber string    `db:"tracking_number" json:"trackingNumber"`
	Date           time.Time `db:"date" json:"date"`
	Status         Status    `db:"status" json:"status"`

	OriginBranchID      id.ID `db:"origin_branch_id" json:"originBranchId"`
	DestinationBranchID id.ID `db:"destination_branch_id" json:"destinationBranchId"`

	SenderName    string `db:"sender_name" json:"senderName"`
	SenderPhone   string `db:"sender_phone" json:"senderPhone,omitempty"`
	ReceiverName  string `db:"receiver_name" json:"receiverName"`
	ReceiverPhone string `db:"receiver_phone" json:"receiverPhone,omitempty"`

	ShippingCost types.Money `db:"shipping_cost" json:"shippingCost"`
	ShippingTax  types.Money `db:"shipping_tax" json:"shippingTax"`
	PaymentType  PaymentType `db:"payment_type" json:"paymentType"`
	IsPaid       bool        `db:"is_paid" json:"isPaid"`

	DriverCommission types.Money `db:"driver_commission" json:"driverCommission"`
	AssignedDriverID *id.ID      `db:"assigned_driver_id" json:"assignedDriverId,omitempty"`

	Comment string `db:"comment" json:"comment,omitempty"`
}

// Validate implements entity.Validatable interface.
func (p *Parcel) Validate(ctx context.Context) error {
	if p.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	if id.IsNil(p.OriginBranchID) || id.IsNil(p.DestinationBranchID) {
		return apperror.NewValidation("origin and destination branches are required")
	}
	if p.SenderName == "" {
		return apperror.NewValidation("sender name is required").
			WithDetail("field", "senderName")
	}
	if p.ReceiverName == "" {
		return apperror.NewValidation("receiver name is required").
			WithDetail("field", "receiverName")
	}
	switch p.PaymentType {
	case PaymentPrepaid, PaymentCOD, PaymentPostpaid:
	default:
		return apperror.NewValidation("unknown payment type").
			WithDetail("paymentType", string(p.PaymentType))
	}
	if p.ShippingCost.IsNegative() {
		return apperror.NewInvalidAmount("shipping cost must not be negative").
			WithDetail("shippingCost", p.ShippingCost.String())
	}
	if p.ShippingTax.IsNegative() {
		return apperror.NewInvalidAmount("shipping tax must not be negative").
			WithDetail("shippingTax", p.ShippingTax.String())
	}
	return nil
}

// Log is one append-only lifecycle record. Every accepted status change
// produces exactly one row.
type Log struct {
	ID        id.ID     `db:"id" json:"id"`
	ParcelID  id.ID     `db:"parcel_id" json:"parcelId"`
	Status    Status    `db:"status" json:"status"`
	Note      string    `db:"note" json:"note,omitempty"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
