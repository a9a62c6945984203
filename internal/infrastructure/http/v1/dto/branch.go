package dto

import (
	"parceldesk/internal/domain/catalogs/branch"
)

// --- Request DTOs ---

// CreateBranchRequest is the request body for creating a branch.
type CreateBranchRequest struct {
	Code      string  `json:"code"`
	Name      string  `json:"name" binding:"required"`
	TenantKey string  `json:"tenantKey" binding:"required"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
	IsActive  bool    `json:"isActive"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateBranchRequest) ToEntity() *branch.Branch {
	b := branch.NewBranch(r.Code, r.Name, r.TenantKey)
	b.Address = r.Address
	b.Phone = r.Phone
	b.IsActive = r.IsActive
	return b
}

// UpdateBranchRequest is the request body for updating a branch.
type UpdateBranchRequest struct {
	Code      string  `json:"code"`
	Name      string  `json:"name" binding:"required"`
	TenantKey string  `json:"tenantKey" binding:"required"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	IsActive  bool    `json:"isActive"`
	Version   int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateBranchRequest) ApplyTo(b *branch.Branch) {
	b.Code = r.Code
	b.Name = r.Name
	b.TenantKey = r.TenantKey
	b.Address = r.Address
	b.Phone = r.Phone
	b.IsActive = r.IsActive
	b.Version = r.Version
}

// --- Response DTOs ---

// BranchResponse is the response body for a branch.
type BranchResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	TenantKey    string  `json:"tenantKey"`
	Address      *string `json:"address,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	IsActive     bool    `json:"isActive"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromBranch creates response DTO from domain entity.
func FromBranch(b *branch.Branch) *BranchResponse {
	return &BranchResponse{
		ID:           b.ID.String(),
		Code:         b.Code,
		Name:         b.Name,
		TenantKey:    b.TenantKey,
		Address:      b.Address,
		Phone:        b.Phone,
		IsActive:     b.IsActive,
		DeletionMark: b.DeletionMark,
		Version:      b.Version,
	}
}
