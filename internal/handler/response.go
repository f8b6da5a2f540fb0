package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pharmapos/internal/domain"
	"pharmapos/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success  bool                 `json:"success"`
	Data     interface{}          `json:"data,omitempty"`
	Error    *APIError            `json:"error,omitempty"`
	Meta     *PagMeta             `json:"meta,omitempty"`
	Warnings []domain.RateWarning `json:"warnings,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondWithWarnings sends a success response carrying non-blocking rate warnings.
func RespondWithWarnings(c *gin.Context, status int, data interface{}, warnings []domain.RateWarning) {
	c.JSON(status, APIResponse{Success: true, Data: data, Warnings: warnings})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Validation and state errors carry their own message back to the caller.
func MapDomainError(err error) (status int, code, msg string) {
	var ve *domain.ValidationError
	var se *domain.InvalidStateError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "VALIDATION_ERROR", ve.Error()
	case errors.As(err, &se):
		return http.StatusConflict, "INVALID_STATE", se.Error()
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "INVOICE_NOT_FOUND", "invoice not found"
	case errors.Is(err, domain.ErrCreditNoteNotFound):
		return http.StatusNotFound, "CREDIT_NOTE_NOT_FOUND", "credit note not found"
	case errors.Is(err, domain.ErrSellerNotFound):
		return http.StatusNotFound, "SELLER_NOT_FOUND", "seller GSTIN not found"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found"
	case errors.Is(err, domain.ErrBatchNotFound):
		return http.StatusNotFound, "BATCH_NOT_FOUND", "batch not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "INVALID_STATE", err.Error()
	case errors.Is(err, domain.ErrDuplicateDocumentNumber):
		return http.StatusServiceUnavailable, "NUMBER_ALLOCATION_FAILED", "could not allocate a document number, retry the request"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		middleware.LoggerFrom(c).Error("internal error", zap.String("code", code), zap.Error(err))
	}
	RespondError(c, status, code, msg)
}
