package driver

import (
	"context"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/tx"
	"parceldesk/internal/domain"
)

// Service provides business logic for the Driver catalog.
type Service struct {
	*domain.CatalogService[*Driver]
	repo Repository
}

// NewService creates a new Driver service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Driver]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "driver",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkCodeUnique)

	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, d *Driver) error {
	exists, err := s.repo.ExistsByCode(ctx, d.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("driver", "code", d.Code)
	}
	return nil
}

// RequireActive loads a driver and rejects missing or deactivated ones.
// Parcel assignment and manifest creation go through this check.
func (s *Service) RequireActive(ctx context.Context, driverID id.ID) (*Driver, error) {
	d, err := s.GetByID(ctx, driverID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewInactiveReference("driver", driverID.String())
		}
		return nil, err
	}
	if !d.IsActive || d.DeletionMark {
		return nil, apperror.NewInactiveReference("driver", driverID.String())
	}
	return d, nil
}
