package branch

import (
	"context"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/tx"
	"parceldesk/internal/domain"
)

// Service provides business logic for the Branch catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Branch]
	repo Repository
}

// NewService creates a new Branch service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Branch]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "branch",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkCodeUnique)

	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, b *Branch) error {
	exists, err := s.repo.ExistsByCode(ctx, b.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("branch", "code", b.Code)
	}
	return nil
}

// RequireActive loads a branch and rejects missing or deactivated ones.
// Used to validate parcel origin/destination references.
func (s *Service) RequireActive(ctx context.Context, branchID id.ID) (*Branch, error) {
	b, err := s.GetByID(ctx, branchID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewInactiveReference("branch", branchID.String())
		}
		return nil, err
	}
	if !b.IsActive || b.DeletionMark {
		return nil, apperror.NewInactiveReference("branch", branchID.String())
	}
	return b, nil
}
