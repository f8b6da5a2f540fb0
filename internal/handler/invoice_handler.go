package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pharmapos/internal/csvexport"
	"pharmapos/internal/service"
)

// InvoiceHandler handles quote and invoice lifecycle endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Quote handles POST /api/v1/tax/quote
func (h *InvoiceHandler) Quote(c *gin.Context) {
	var input service.QuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	q, err := h.invoiceService.Quote(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondWithWarnings(c, http.StatusOK, q, q.Warnings)
}

// Create handles POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var input service.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.invoiceService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondWithWarnings(c, http.StatusCreated, res.Invoice, res.Warnings)
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var sellerID *uuid.UUID
	if raw := c.Query("seller_gstin_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid seller GSTIN ID")
			return
		}
		sellerID = &id
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), sellerID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// ReplaceLines handles PUT /api/v1/invoices/:id/lines
func (h *InvoiceHandler) ReplaceLines(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	var input service.ReplaceLinesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.invoiceService.ReplaceLines(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondWithWarnings(c, http.StatusOK, res.Invoice, res.Warnings)
}

// Issue handles POST /api/v1/invoices/:id/issue
func (h *InvoiceHandler) Issue(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	res, err := h.invoiceService.Issue(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondWithWarnings(c, http.StatusOK, res.Invoice, res.Warnings)
}

// Cancel handles POST /api/v1/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	inv, err := h.invoiceService.Cancel(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Export handles GET /api/v1/invoices/:id/export and streams the per-line
// tax breakdown as CSV.
func (h *InvoiceHandler) Export(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename(inv.Number, inv.ID)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	_, _ = c.Writer.Write(csvexport.BOM)
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteInvoice(inv); err != nil {
		return
	}
	w.Flush()
}

// parseID reads the :id path parameter. It writes a 400 response and
// returns false when the value is not a UUID.
func parseID(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+entity+" ID")
		return uuid.Nil, false
	}
	return id, true
}
