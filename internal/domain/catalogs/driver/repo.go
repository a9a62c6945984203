package driver

import (
	"parceldesk/internal/domain"
)

// Repository defines operations for the Driver catalog.
type Repository interface {
	domain.CatalogRepository[*Driver]
}
