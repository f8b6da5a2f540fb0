package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("resource not found")
	ErrValidation              = errors.New("validation failed")
	ErrInvalidState            = errors.New("invalid state for operation")
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrCreditNoteNotFound      = errors.New("credit note not found")
	ErrSellerNotFound          = errors.New("seller GSTIN not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrBatchNotFound           = errors.New("batch not found")
	ErrDuplicateDocumentNumber = errors.New("document number already allocated")
	ErrRoundOffOutOfRange      = errors.New("round-off exceeds 50 paise")
	ErrMixedSupplyRegime       = errors.New("line tax does not match invoice supply type")
)

// ValidationError reports caller input that cannot be processed.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError reports an operation that the entity's current status forbids.
// It matches ErrInvalidState under errors.Is.
type InvalidStateError struct {
	Entity string
	Status string
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s in status %s", e.Action, e.Entity, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NewInvalidStateError builds an InvalidStateError.
func NewInvalidStateError(entity, status, action string) error {
	return &InvalidStateError{Entity: entity, Status: status, Action: action}
}
