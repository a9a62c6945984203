package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/domain/ledger"
	"parceldesk/internal/infrastructure/http/v1/dto"
)

// LedgerHandler exposes read-only views over the financial ledger.
// All writes go through domain services; nothing here mutates the books.
type LedgerHandler struct {
	*BaseHandler
	repo ledger.Repository
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, repo ledger.Repository) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		repo:        repo,
	}
}

func (h *LedgerHandler) parseFilter(c *gin.Context) (ledger.Filter, bool) {
	filter := ledger.Filter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if branchStr := c.Query("branchId"); branchStr != "" {
		branchID, err := id.Parse(branchStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid branchId format"))
			return filter, false
		}
		filter.BranchID = &branchID
	}
	if category := c.Query("category"); category != "" {
		cat := ledger.Category(category)
		filter.Category = &cat
	}
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date, RFC3339 expected"))
			return filter, false
		}
		filter.From = &from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date, RFC3339 expected"))
			return filter, false
		}
		filter.To = &to
	}

	return filter, true
}

// CashTransactions handles GET /ledger/cash-transactions.
func (h *LedgerHandler) CashTransactions(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	rows, err := h.repo.ListCashTransactions(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(rows))
	for i, row := range rows {
		items[i] = dto.FromCashTransaction(row)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Expenses handles GET /ledger/expenses.
func (h *LedgerHandler) Expenses(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	rows, err := h.repo.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(rows))
	for i, row := range rows {
		items[i] = dto.FromExpense(row)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Debts handles GET /ledger/debts.
func (h *LedgerHandler) Debts(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	filter.OnlyOpen = c.Query("onlyOpen") == "true"

	rows, err := h.repo.ListDebts(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(rows))
	for i, row := range rows {
		items[i] = dto.FromDebt(row)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
