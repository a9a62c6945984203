// Package branch provides the Branch catalog.
// Branches are the offices parcels originate from and arrive at; every
// cashbox entry and sequence counter is scoped to a branch tenant.
package branch

import (
	"context"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/entity"
)

// Branch represents a courier office.
type Branch struct {
	entity.Catalog

	// TenantKey scopes sequence counters and settings for this branch group
	TenantKey string `db:"tenant_key" json:"tenantKey"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// Phone is the office contact number
	Phone *string `db:"phone" json:"phone,omitempty"`

	// IsActive indicates if the branch is operational
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewBranch creates a new Branch with required fields.
func NewBranch(code, name, tenantKey string) *Branch {
	return &Branch{
		Catalog:   entity.NewCatalog(code, name),
		TenantKey: tenantKey,
		IsActive:  true,
	}
}

// Validate implements entity.Validatable interface.
func (b *Branch) Validate(ctx context.Context) error {
	if err := b.Catalog.Validate(ctx); err != nil {
		return err
	}

	if b.TenantKey == "" {
		return apperror.NewValidation("tenant key is required").
			WithDetail("field", "tenantKey")
	}

	return nil
}
