package employee

import (
	"parceldesk/internal/domain"
)

// Repository defines operations for the Employee catalog.
type Repository interface {
	domain.CatalogRepository[*Employee]
}
