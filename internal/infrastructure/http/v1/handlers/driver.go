package handlers

import (
	"parceldesk/internal/domain/catalogs/driver"
	"parceldesk/internal/infrastructure/http/v1/dto"
)

// DriverHTTPHandler handles driver catalog endpoints.
type DriverHTTPHandler = CatalogHandler[
	*driver.Driver,
	dto.CreateDriverRequest,
	dto.UpdateDriverRequest,
]

// NewDriverHandler creates the driver handler configuration.
func NewDriverHandler(
	base *BaseHandler,
	service *driver.Service,
) *DriverHTTPHandler {

	config := CatalogHandlerConfig[
		*driver.Driver,
		dto.CreateDriverRequest,
		dto.UpdateDriverRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "driver",

		MapCreateDTO: func(req dto.CreateDriverRequest) *driver.Driver {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateDriverRequest, existing *driver.Driver) *driver.Driver {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *driver.Driver) any {
			return dto.FromDriver(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
