package dto

import (
	"time"

	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
	"parceldesk/internal/domain/parcel"
)

// --- Request DTOs ---

// CreateParcelRequest is the request body for registering a shipment.
// Status, tracking number and driver commission are never accepted from
// the client.
type CreateParcelRequest struct {
	Date                *time.Time  `json:"date"`
	OriginBranchID      string      `json:"originBranchId" binding:"required,uuid"`
	DestinationBranchID string      `json:"destinationBranchId" binding:"required,uuid"`
	SenderName          string      `json:"senderName" binding:"required"`
	SenderPhone         string      `json:"senderPhone"`
	ReceiverName        string      `json:"receiverName" binding:"required"`
	ReceiverPhone       string      `json:"receiverPhone"`
	ShippingCost        types.Money `json:"shippingCost"`
	ShippingTax         types.Money `json:"shippingTax"`
	PaymentType         string      `json:"paymentType" binding:"required,oneof=prepaid cod postpaid"`
	Comment             string      `json:"comment"`
}

// ToInput converts the DTO to a service input.
func (r *CreateParcelRequest) ToInput() parcel.CreateInput {
	input := parcel.CreateInput{
		OriginBranchID:      id.MustParse(r.OriginBranchID),
		DestinationBranchID: id.MustParse(r.DestinationBranchID),
		SenderName:          r.SenderName,
		SenderPhone:         r.SenderPhone,
		ReceiverName:        r.ReceiverName,
		ReceiverPhone:       r.ReceiverPhone,
		ShippingCost:        r.ShippingCost,
		ShippingTax:         r.ShippingTax,
		PaymentType:         parcel.PaymentType(r.PaymentType),
		Comment:             r.Comment,
	}
	if r.Date != nil {
		input.Date = *r.Date
	}
	return input
}

// TransitionParcelRequest is the request body for a status change.
type TransitionParcelRequest struct {
	Status string `json:"status" binding:"required,oneof=in_transit delivered picked_up cancelled"`
	Note   string `json:"note"`
}

// AssignDriverRequest is the request body for assigning a driver.
type AssignDriverRequest struct {
	DriverID string `json:"driverId" binding:"required,uuid"`
}

// --- Response DTOs ---

// ParcelResponse is the response body for a parcel.
type ParcelResponse struct {
	ID                  string      `json:"id"`
	TrackingNumber      string      `json:"trackingNumber"`
	Date                time.Time   `json:"date"`
	Status              string      `json:"status"`
	OriginBranchID      string      `json:"originBranchId"`
	DestinationBranchID string      `json:"destinationBranchId"`
	SenderName          string      `json:"senderName"`
	SenderPhone         string      `json:"senderPhone,omitempty"`
	ReceiverName        string      `json:"receiverName"`
	ReceiverPhone       string      `json:"receiverPhone,omitempty"`
	ShippingCost        types.Money `json:"shippingCost"`
	ShippingTax         types.Money `json:"shippingTax"`
	PaymentType         string      `json:"paymentType"`
	IsPaid              bool        `json:"isPaid"`
	DriverCommission    types.Money `json:"driverCommission"`
	AssignedDriverID    *string     `json:"assignedDriverId,omitempty"`
	Comment             string      `json:"comment,omitempty"`
	Version             int         `json:"version"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// FromParcel creates response DTO from domain entity.
func FromParcel(p *parcel.Parcel) *ParcelResponse {
	resp := &ParcelResponse{
		ID:                  p.ID.String(),
		TrackingNumber:      p.TrackingNumber,
		Date:                p.Date,
		Status:              string(p.Status),
		OriginBranchID:      p.OriginBranchID.String(),
		DestinationBranchID: p.DestinationBranchID.String(),
		SenderName:          p.SenderName,
		SenderPhone:         p.SenderPhone,
		ReceiverName:        p.ReceiverName,
		ReceiverPhone:       p.ReceiverPhone,
		ShippingCost:        p.ShippingCost,
		ShippingTax:         p.ShippingTax,
		PaymentType:         string(p.PaymentType),
		IsPaid:              p.IsPaid,
		DriverCommission:    p.DriverCommission,
		Comment:             p.Comment,
		Version:             p.Version,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
	if p.AssignedDriverID != nil {
		s := p.AssignedDriverID.String()
		resp.AssignedDriverID = &s
	}
	return resp
}

// ParcelLogResponse is one row of a parcel's lifecycle log.
type ParcelLogResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromParcelLog creates response DTO from a log row.
func FromParcelLog(l *parcel.Log) *ParcelLogResponse {
	return &ParcelLogResponse{
		ID:        l.ID.String(),
		Status:    string(l.Status),
		Note:      l.Note,
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt,
	}
}
