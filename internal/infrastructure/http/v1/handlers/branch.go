package handlers

import (
	"parceldesk/internal/domain/catalogs/branch"
	"parceldesk/internal/infrastructure/http/v1/dto"
)

// BranchHTTPHandler handles branch catalog endpoints.
type BranchHTTPHandler = CatalogHandler[
	*branch.Branch,
	dto.CreateBranchRequest,
	dto.UpdateBranchRequest,
]

// NewBranchHandler creates the branch handler configuration.
func NewBranchHandler(
	base *BaseHandler,
	service *branch.Service,
) *BranchHTTPHandler {

	config := CatalogHandlerConfig[
		*branch.Branch,
		dto.CreateBranchRequest,
		dto.UpdateBranchRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "branch",

		MapCreateDTO: func(req dto.CreateBranchRequest) *branch.Branch {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateBranchRequest, existing *branch.Branch) *branch.Branch {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *branch.Branch) any {
			return dto.FromBranch(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
