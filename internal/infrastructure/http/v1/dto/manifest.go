package dto

import (
	"time"

	"parceldesk/internal/core/types"
	"parceldesk/internal/domain/manifest"
)

// --- Request DTOs ---

// CreateManifestRequest is the request body for opening a manifest.
type CreateManifestRequest struct {
	Date     *time.Time `json:"date"`
	BranchID string     `json:"branchId" binding:"required,uuid"`
	DriverID string     `json:"driverId" binding:"required,uuid"`
	Comment  string     `json:"comment"`
}

// ManifestParcelRequest is the request body for attaching or detaching a
// parcel.
type ManifestParcelRequest struct {
	ParcelID string `json:"parcelId" binding:"required,uuid"`
}

// AdvanceManifestRequest is the request body for a status change.
type AdvanceManifestRequest struct {
	Status string `json:"status" binding:"required,oneof=printed in_transit"`
}

// --- Response DTOs ---

// ManifestResponse is the response body for a manifest.
type ManifestResponse struct {
	ID       string    `json:"id"`
	Number   string    `json:"number"`
	Date     time.Time `json:"date"`
	Status   string    `json:"status"`
	BranchID string    `json:"branchId"`
	DriverID string    `json:"driverId"`

	TotalShippingCost     types.Money `json:"totalShippingCost"`
	TotalTax              types.Money `json:"totalTax"`
	TotalReceived         types.Money `json:"totalReceived"`
	DriverCommissionTotal types.Money `json:"driverCommissionTotal"`
	OfficeRevenueTotal    types.Money `json:"officeRevenueTotal"`

	SettledAt *time.Time `json:"settledAt,omitempty"`
	Comment   string     `json:"comment,omitempty"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// FromManifest creates response DTO from domain entity.
func FromManifest(m *manifest.Manifest) *ManifestResponse {
	return &ManifestResponse{
		ID:                    m.ID.String(),
		Number:                m.Number,
		Date:                  m.Date,
		Status:                string(m.Status),
		BranchID:              m.BranchID.String(),
		DriverID:              m.DriverID.String(),
		TotalShippingCost:     m.TotalShippingCost,
		TotalTax:              m.TotalTax,
		TotalReceived:         m.TotalReceived,
		DriverCommissionTotal: m.DriverCommissionTotal,
		OfficeRevenueTotal:    m.OfficeRevenueTotal,
		SettledAt:             m.SettledAt,
		Comment:               m.Comment,
		Version:               m.Version,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// SettlementResponse is the response body for a settlement run.
type SettlementResponse struct {
	ManifestID  string `json:"manifestId"`
	ParcelCount int    `json:"parcelCount"`

	TotalShippingCost     types.Money `json:"totalShippingCost"`
	TotalTax              types.Money `json:"totalTax"`
	TotalReceived         types.Money `json:"totalReceived"`
	DriverCommissionTotal types.Money `json:"driverCommissionTotal"`
	OfficeRevenueTotal    types.Money `json:"officeRevenueTotal"`
	Residual              types.Money `json:"residual"`
}

// FromSettlement creates response DTO from a settlement summary.
func FromSettlement(s manifest.SettlementSummary) *SettlementResponse {
	return &SettlementResponse{
		ManifestID:            s.ManifestID.String(),
		ParcelCount:           s.ParcelCount,
		TotalShippingCost:     s.TotalShippingCost,
		TotalTax:              s.TotalTax,
		TotalReceived:         s.TotalReceived,
		DriverCommissionTotal: s.DriverCommissionTotal,
		OfficeRevenueTotal:    s.OfficeRevenueTotal,
		Residual:              s.Residual,
	}
}
