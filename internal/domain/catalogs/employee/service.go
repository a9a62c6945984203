package employee

import (
	"context"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/tx"
	"parceldesk/internal/domain"
)

// Service provides business logic for the Employee catalog.
type Service struct {
	*domain.CatalogService[*Employee]
	repo Repository
}

// NewService creates a new Employee service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Employee]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "employee",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkCodeUnique)

	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, e *Employee) error {
	exists, err := s.repo.ExistsByCode(ctx, e.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("employee", "code", e.Code)
	}
	return nil
}

// RequireActive loads an employee and rejects missing or deactivated ones.
func (s *Service) RequireActive(ctx context.Context, employeeID id.ID) (*Employee, error) {
	e, err := s.GetByID(ctx, employeeID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewInactiveReference("employee", employeeID.String())
		}
		return nil, err
	}
	if !e.IsActive || e.DeletionMark {
		return nil, apperror.NewInactiveReference("employee", employeeID.String())
	}
	return e, nil
}
