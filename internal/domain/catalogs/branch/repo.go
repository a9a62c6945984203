package branch

import (
	"parceldesk/internal/domain"
)

// Repository defines operations for the Branch catalog.
type Repository interface {
	domain.CatalogRepository[*Branch]
}
