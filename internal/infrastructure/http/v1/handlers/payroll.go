package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/domain/payroll"
	"parceldesk/internal/infrastructure/http/v1/dto"
)

// PayrollHandler handles payslip endpoints.
type PayrollHandler struct {
	*BaseHandler
	service *payroll.Service
}

// NewPayrollHandler creates a new payroll handler.
func NewPayrollHandler(base *BaseHandler, service *payroll.Service) *PayrollHandler {
	return &PayrollHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Issue handles POST /payslips - issue a payslip for a period.
func (h *PayrollHandler) Issue(c *gin.Context) {
	var req dto.IssuePayslipRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Issue(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromPayslip(p))
}

// Get handles GET /payslips/:id.
func (h *PayrollHandler) Get(c *gin.Context) {
	payslipID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), payslipID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPayslip(p))
}

// List handles GET /payslips with filtering and pagination.
func (h *PayrollHandler) List(c *gin.Context) {
	filter := payroll.DefaultFilter()
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	if employeeStr := c.Query("employeeId"); employeeStr != "" {
		employeeID, err := id.Parse(employeeStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid employeeId format"))
			return
		}
		filter.EmployeeID = &employeeID
	}
	if branchStr := c.Query("branchId"); branchStr != "" {
		branchID, err := id.Parse(branchStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid branchId format"))
			return
		}
		filter.BranchID = &branchID
	}
	if year := h.ParseIntQuery(c, "periodYear", 0); year > 0 {
		filter.PeriodYear = &year
	}
	if month := h.ParseIntQuery(c, "periodMonth", 0); month > 0 {
		filter.PeriodMonth = &month
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromPayslip(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
