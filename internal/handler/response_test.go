package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"pharmapos/internal/domain"
	"pharmapos/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.NewValidationError("lines[0].quantity", "must be greater than zero, got 0"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped_validation", fmt.Errorf("line 1: %w", domain.NewValidationError("discount", "too large")), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid_state", domain.NewInvalidStateError("invoice", "ISSUED", "issue"), http.StatusConflict, "INVALID_STATE"},
		{"invoice_not_found", domain.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{"credit_note_not_found", domain.ErrCreditNoteNotFound, http.StatusNotFound, "CREDIT_NOTE_NOT_FOUND"},
		{"seller_not_found", domain.ErrSellerNotFound, http.StatusNotFound, "SELLER_NOT_FOUND"},
		{"duplicate_number", domain.ErrDuplicateDocumentNumber, http.StatusServiceUnavailable, "NUMBER_ALLOCATION_FAILED"},
		{"round_off_guard", fmt.Errorf("aggregating invoice: %w", domain.ErrRoundOffOutOfRange), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"mixed_regime", domain.ErrMixedSupplyRegime, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestMapDomainError_ValidationMessageNamesField(t *testing.T) {
	_, _, msg := handler.MapDomainError(domain.NewValidationError("lines[2].return_quantity", "return quantity 3 exceeds remaining 1 of 2"))
	assert.Equal(t, "lines[2].return_quantity: return quantity 3 exceeds remaining 1 of 2", msg)
}

func TestMapDomainError_InternalMessageIsGeneric(t *testing.T) {
	_, _, msg := handler.MapDomainError(errors.New("pq: connection reset by peer"))
	assert.Equal(t, "an internal error occurred", msg)
}
