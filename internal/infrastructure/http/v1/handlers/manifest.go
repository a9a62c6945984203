package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/domain/manifest"
	"parceldesk/internal/infrastructure/http/v1/dto"
)

// ManifestHandler handles delivery run endpoints.
type ManifestHandler struct {
	*BaseHandler
	service *manifest.Service
}

// NewManifestHandler creates a new manifest handler.
func NewManifestHandler(base *BaseHandler, service *manifest.Service) *ManifestHandler {
	return &ManifestHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /manifests - open a manifest for a driver.
func (h *ManifestHandler) Create(c *gin.Context) {
	var req dto.CreateManifestRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := manifest.CreateInput{
		BranchID: id.MustParse(req.BranchID),
		DriverID: id.MustParse(req.DriverID),
		Comment:  req.Comment,
	}
	if req.Date != nil {
		input.Date = *req.Date
	} else {
		input.Date = time.Now().UTC()
	}

	m, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromManifest(m))
}

// Get handles GET /manifests/:id.
func (h *ManifestHandler) Get(c *gin.Context) {
	manifestID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), manifestID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromManifest(m))
}

// List handles GET /manifests with filtering and pagination.
func (h *ManifestHandler) List(c *gin.Context) {
	filter := manifest.DefaultFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	if status := c.Query("status"); status != "" {
		s := manifest.Status(status)
		filter.Status = &s
	}
	if branchStr := c.Query("branchId"); branchStr != "" {
		branchID, err := id.Parse(branchStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid branchId format"))
			return
		}
		filter.BranchID = &branchID
	}
	if driverStr := c.Query("driverId"); driverStr != "" {
		driverID, err := id.Parse(driverStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid driverId format"))
			return
		}
		filter.DriverID = &driverID
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromManifest(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// AddParcel handles POST /manifests/:id/parcels.
func (h *ManifestHandler) AddParcel(c *gin.Context) {
	manifestID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ManifestParcelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.AddParcel(c.Request.Context(), manifestID, id.MustParse(req.ParcelID)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "parcel attached")
}

// RemoveParcel handles DELETE /manifests/:id/parcels/:parcelId.
func (h *ManifestHandler) RemoveParcel(c *gin.Context) {
	manifestID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}
	parcelID, err := id.Parse(c.Param("parcelId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid parcelId format"))
		return
	}

	if err := h.service.RemoveParcel(c.Request.Context(), manifestID, parcelID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Advance handles POST /manifests/:id/advance - print or dispatch.
func (h *ManifestHandler) Advance(c *gin.Context) {
	manifestID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AdvanceManifestRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Advance(c.Request.Context(), manifestID, manifest.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromManifest(m))
}

// Settle handles POST /manifests/:id/settle - close the run and split
// revenue between the driver and the office.
func (h *ManifestHandler) Settle(c *gin.Context) {
	manifestID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	summary, err := h.service.Settle(c.Request.Context(), manifestID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSettlement(summary))
}

// Cancel handles POST /manifests/:id/cancel.
func (h *ManifestHandler) Cancel(c *gin.Context) {
	manifestID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	m, err := h.service.Cancel(c.Request.Context(), manifestID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromManifest(m))
}

// Parcels handles GET /manifests/:id/parcels.
func (h *ManifestHandler) Parcels(c *gin.Context) {
	manifestID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	parcels, err := h.service.Parcels(c.Request.Context(), manifestID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(parcels))
	for i, p := range parcels {
		items[i] = dto.FromParcel(p)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
