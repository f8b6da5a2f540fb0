package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmapos/internal/service"
)

// CreditNoteHandler handles credit note endpoints.
type CreditNoteHandler struct {
	creditNoteService service.CreditNoteService
}

// NewCreditNoteHandler creates a new CreditNoteHandler.
func NewCreditNoteHandler(creditNoteService service.CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{creditNoteService: creditNoteService}
}

// Create handles POST /api/v1/invoices/:id/credit-notes
func (h *CreditNoteHandler) Create(c *gin.Context) {
	invoiceID, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	var input service.CreateCreditNoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cn, err := h.creditNoteService.Create(c.Request.Context(), invoiceID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, cn)
}

// ListByInvoice handles GET /api/v1/invoices/:id/credit-notes
func (h *CreditNoteHandler) ListByInvoice(c *gin.Context) {
	invoiceID, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	notes, err := h.creditNoteService.ListByInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, notes)
}

// GetByID handles GET /api/v1/credit-notes/:id
func (h *CreditNoteHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "credit note")
	if !ok {
		return
	}

	cn, err := h.creditNoteService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, cn)
}
