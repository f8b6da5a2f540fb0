package port

import (
	"context"

	"github.com/google/uuid"

	"pharmapos/internal/domain"
)

// InvoiceRepository defines the contract for invoice persistence.
// Methods run inside the caller's transaction when ctx carries one.
type InvoiceRepository interface {
	// Create inserts a draft invoice with its lines.
	Create(ctx context.Context, inv *domain.Invoice) error
	// GetByID loads an invoice with its lines and already-returned quantities.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	// GetForUpdate is GetByID with the invoice row locked until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, sellerGSTINID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	// ReplaceLines swaps the lines of a draft and stores its recomputed header and totals.
	ReplaceLines(ctx context.Context, inv *domain.Invoice) error
	// MarkIssued freezes a draft: number, status ISSUED and issued_at.
	MarkIssued(ctx context.Context, inv *domain.Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.InvoiceStatus) error
}

// CreditNoteRepository defines the contract for credit note persistence.
type CreditNoteRepository interface {
	Create(ctx context.Context, cn *domain.CreditNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditNote, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.CreditNote, error)
}
