package dto

import (
	"parceldesk/internal/core/id"
	"parceldesk/internal/domain/catalogs/driver"
)

// --- Request DTOs ---

// CreateDriverRequest is the request body for creating a driver.
type CreateDriverRequest struct {
	Code         string  `json:"code"`
	Name         string  `json:"name" binding:"required"`
	BranchID     string  `json:"branchId" binding:"required,uuid"`
	Phone        *string `json:"phone"`
	VehiclePlate *string `json:"vehiclePlate"`
	IsActive     bool    `json:"isActive"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateDriverRequest) ToEntity() *driver.Driver {
	d := driver.NewDriver(r.Code, r.Name, id.MustParse(r.BranchID))
	d.Phone = r.Phone
	d.VehiclePlate = r.VehiclePlate
	d.IsActive = r.IsActive
	return d
}

// UpdateDriverRequest is the request body for updating a driver.
type UpdateDriverRequest struct {
	Code         string  `json:"code"`
	Name         string  `json:"name" binding:"required"`
	BranchID     string  `json:"branchId" binding:"required,uuid"`
	Phone        *string `json:"phone,omitempty"`
	VehiclePlate *string `json:"vehiclePlate,omitempty"`
	IsActive     bool    `json:"isActive"`
	Version      int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateDriverRequest) ApplyTo(d *driver.Driver) {
	d.Code = r.Code
	d.Name = r.Name
	d.BranchID = id.MustParse(r.BranchID)
	d.Phone = r.Phone
	d.VehiclePlate = r.VehiclePlate
	d.IsActive = r.IsActive
	d.Version = r.Version
}

// --- Response DTOs ---

// DriverResponse is the response body for a driver.
type DriverResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	BranchID     string  `json:"branchId"`
	Phone        *string `json:"phone,omitempty"`
	VehiclePlate *string `json:"vehiclePlate,omitempty"`
	IsActive     bool    `json:"isActive"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromDriver creates response DTO from domain entity.
func FromDriver(d *driver.Driver) *DriverResponse {
	return &DriverResponse{
		ID:           d.ID.String(),
		Code:         d.Code,
		Name:         d.Name,
		BranchID:     d.BranchID.String(),
		Phone:        d.Phone,
		VehiclePlate: d.VehiclePlate,
		IsActive:     d.IsActive,
		DeletionMark: d.DeletionMark,
		Version:      d.Version,
	}
}
