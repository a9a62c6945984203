package dto

import (
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
	"parceldesk/internal/domain/catalogs/employee"
)

// --- Request DTOs ---

// CreateEmployeeRequest is the request body for creating an employee.
type CreateEmployeeRequest struct {
	Code          string      `json:"code"`
	Name          string      `json:"name" binding:"required"`
	BranchID      string      `json:"branchId" binding:"required,uuid"`
	Position      string      `json:"position"`
	MonthlySalary types.Money `json:"monthlySalary"`
	IsActive      bool        `json:"isActive"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateEmployeeRequest) ToEntity() *employee.Employee {
	e := employee.NewEmployee(r.Code, r.Name, id.MustParse(r.BranchID), r.MonthlySalary)
	e.Position = r.Position
	e.IsActive = r.IsActive
	return e
}

// UpdateEmployeeRequest is the request body for updating an employee.
type UpdateEmployeeRequest struct {
	Code          string      `json:"code"`
	Name          string      `json:"name" binding:"required"`
	BranchID      string      `json:"branchId" binding:"required,uuid"`
	Position      string      `json:"position"`
	MonthlySalary types.Money `json:"monthlySalary"`
	IsActive      bool        `json:"isActive"`
	Version       int         `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateEmployeeRequest) ApplyTo(e *employee.Employee) {
	e.Code = r.Code
	e.Name = r.Name
	e.BranchID = id.MustParse(r.BranchID)
	e.Position = r.Position
	e.MonthlySalary = r.MonthlySalary
	e.IsActive = r.IsActive
	e.Version = r.Version
}

// --- Response DTOs ---

// EmployeeResponse is the response body for an employee.
type EmployeeResponse struct {
	ID            string      `json:"id"`
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	BranchID      string      `json:"branchId"`
	Position      string      `json:"position,omitempty"`
	MonthlySalary types.Money `json:"monthlySalary"`
	IsActive      bool        `json:"isActive"`
	DeletionMark  bool        `json:"deletionMark"`
	Version       int         `json:"version"`
}

// FromEmployee creates response DTO from domain entity.
func FromEmployee(e *employee.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:            e.ID.String(),
		Code:          e.Code,
		Name:          e.Name,
		BranchID:      e.BranchID.String(),
		Position:      e.Position,
		MonthlySalary: e.MonthlySalary,
		IsActive:      e.IsActive,
		DeletionMark:  e.DeletionMark,
		Version:       e.Version,
	}
}
