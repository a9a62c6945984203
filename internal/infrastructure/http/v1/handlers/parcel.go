package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/domain/parcel"
	"parceldesk/internal/infrastructure/http/v1/dto"
)

// ParcelHandler handles shipment endpoints.
type ParcelHandler struct {
	*BaseHandler
	service *parcel.Service
}

// NewParcelHandler creates a new parcel handler.
func NewParcelHandler(base *BaseHandler, service *parcel.Service) *ParcelHandler {
	return &ParcelHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /parcels - register a shipment.
func (h *ParcelHandler) Create(c *gin.Context) {
	var req dto.CreateParcelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromParcel(p))
}

// Get handles GET /parcels/:id.
func (h *ParcelHandler) Get(c *gin.Context) {
	parcelID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), parcelID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromParcel(p))
}

// GetByTrackingNumber handles GET /parcels/tracking/:number.
// Public-facing lookup used by the branch front desk.
func (h *ParcelHandler) GetByTrackingNumber(c *gin.Context) {
	p, err := h.service.GetByTrackingNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromParcel(p))
}

// List handles GET /parcels with filtering and pagination.
func (h *ParcelHandler) List(c *gin.Context) {
	filter := parcel.DefaultFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	if status := c.Query("status"); status != "" {
		s := parcel.Status(status)
		filter.Status = &s
	}
	if paymentType := c.Query("paymentType"); paymentType != "" {
		pt := parcel.PaymentType(paymentType)
		filter.PaymentType = &pt
	}
	if branchStr := c.Query("originBranchId"); branchStr != "" {
		branchID, err := id.Parse(branchStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid originBranchId format"))
			return
		}
		filter.OriginBranchID = &branchID
	}
	if driverStr := c.Query("driverId"); driverStr != "" {
		driverID, err := id.Parse(driverStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid driverId format"))
			return
		}
		filter.AssignedDriverID = &driverID
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromParcel(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Transition handles POST /parcels/:id/transition - change lifecycle status.
func (h *ParcelHandler) Transition(c *gin.Context) {
	parcelID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.TransitionParcelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Transition(c.Request.Context(), parcelID, parcel.Status(req.Status), req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromParcel(p))
}

// AssignDriver handles POST /parcels/:id/driver.
func (h *ParcelHandler) AssignDriver(c *gin.Context) {
	parcelID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AssignDriverRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.AssignDriver(c.Request.Context(), parcelID, id.MustParse(req.DriverID))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromParcel(p))
}

// MarkPaid handles POST /parcels/:id/pay - settle a postpaid shipment.
func (h *ParcelHandler) MarkPaid(c *gin.Context) {
	parcelID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	p, err := h.service.MarkPaid(c.Request.Context(), parcelID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromParcel(p))
}

// History handles GET /parcels/:id/history - lifecycle log.
func (h *ParcelHandler) History(c *gin.Context) {
	parcelID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	logs, err := h.service.History(c.Request.Context(), parcelID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(logs))
	for i, l := range logs {
		items[i] = dto.FromParcelLog(l)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
