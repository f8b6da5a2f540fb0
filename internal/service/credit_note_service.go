package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pharmapos/internal/domain"
	"pharmapos/internal/metrics"
	"pharmapos/internal/port"
	"pharmapos/internal/tax"
)

// ReturnLineInput is the DTO for one returned line.
type ReturnLineInput struct {
	OriginalLineItemID uuid.UUID           `json:"original_line_item_id" binding:"required"`
	ReturnQuantity     int64               `json:"return_quantity" binding:"required"`
	ReasonCode         domain.ReturnReason `json:"reason_code" binding:"required"`
	Remarks            string              `json:"remarks"`
}

// CreateCreditNoteInput is the DTO for raising a credit note against an invoice.
type CreateCreditNoteInput struct {
	Lines []ReturnLineInput `json:"lines" binding:"required,min=1,dive"`
}

// CreditNoteConfig holds numbering and rounding settings for credit notes.
type CreditNoteConfig struct {
	NumberTemplate string
	NumberRetries  int
	ApplyRoundOff  bool
}

// CreditNoteService defines the credit note contract.
type CreditNoteService interface {
	Create(ctx context.Context, invoiceID uuid.UUID, input CreateCreditNoteInput) (*domain.CreditNote, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditNote, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.CreditNote, error)
}

type creditNoteService struct {
	tx          port.Transactor
	invoices    port.InvoiceRepository
	creditNotes port.CreditNoteRepository
	sequences   port.SequenceAllocator
	archiver    Archiver
	metrics     *metrics.Metrics
	log         *zap.Logger
	cfg         CreditNoteConfig
	now         func() time.Time
}

// NewCreditNoteService creates a new CreditNoteService implementation.
// archiver may be nil.
func NewCreditNoteService(
	tx port.Transactor,
	invoices port.InvoiceRepository,
	creditNotes port.CreditNoteRepository,
	sequences port.SequenceAllocator,
	archiver Archiver,
	m *metrics.Metrics,
	log *zap.Logger,
	cfg CreditNoteConfig,
) CreditNoteService {
	if cfg.NumberTemplate == "" {
		cfg.NumberTemplate = tax.DefaultCreditNoteNumberTemplate
	}
	if cfg.NumberRetries < 1 {
		cfg.NumberRetries = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &creditNoteService{
		tx:          tx,
		invoices:    invoices,
		creditNotes: creditNotes,
		sequences:   sequences,
		archiver:    archiver,
		metrics:     m,
		log:         log,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *creditNoteService) Create(ctx context.Context, invoiceID uuid.UUID, input CreateCreditNoteInput) (*domain.CreditNote, error) {
	reqs := make([]tax.ReturnRequest, len(input.Lines))
	for i, l := range input.Lines {
		reqs[i] = tax.ReturnRequest{
			OriginalLineItemID: l.OriginalLineItemID,
			ReturnQuantity:     l.ReturnQuantity,
			ReasonCode:         l.ReasonCode,
			Remarks:            l.Remarks,
		}
	}

	var (
		cn  *domain.CreditNote
		inv *domain.Invoice
		err error
	)
	for attempt := 1; ; attempt++ {
		cn, inv, err = s.createOnce(ctx, invoiceID, reqs)
		if !errors.Is(err, domain.ErrDuplicateDocumentNumber) || attempt >= s.cfg.NumberRetries {
			break
		}
		s.metrics.NumberRetry(domain.DocumentKindCreditNote)
		s.log.Warn("credit note number collision, retrying",
			zap.String("invoice_id", invoiceID.String()), zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	s.metrics.CreditNoteIssued(cn.SupplyType)
	s.log.Info("credit note issued",
		zap.String("credit_note_id", cn.ID.String()),
		zap.String("number", cn.Number),
		zap.String("invoice_id", invoiceID.String()),
		zap.Int64("grand_total_paise", int64(cn.GrandTotalPaise)))

	if s.archiver != nil {
		if _, err := s.archiver.ArchiveCreditNote(ctx, cn, inv); err != nil {
			s.log.Error("credit note archive failed", zap.String("credit_note_id", cn.ID.String()), zap.Error(err))
		}
	}
	return cn, nil
}

// createOnce locks the invoice so concurrent returns against the same lines
// see each other's quantities.
func (s *creditNoteService) createOnce(ctx context.Context, invoiceID uuid.UUID, reqs []tax.ReturnRequest) (*domain.CreditNote, *domain.Invoice, error) {
	var (
		cn  *domain.CreditNote
		inv *domain.Invoice
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoices.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		rev, err := tax.ReverseInvoice(inv, reqs, tax.ReversalOptions{ApplyRoundOff: s.cfg.ApplyRoundOff})
		if err != nil {
			return err
		}

		issuedAt := s.now().UTC()
		seq, err := s.sequences.Next(ctx, inv.SellerGSTINID, domain.DocumentKindCreditNote, tax.SequencePeriod(issuedAt))
		if err != nil {
			return fmt.Errorf("allocating credit note number: %w", err)
		}
		number, err := tax.FormatDocumentNumber(s.cfg.NumberTemplate, issuedAt, seq)
		if err != nil {
			return err
		}

		cn = &domain.CreditNote{
			InvoiceID:     inv.ID,
			SellerGSTINID: inv.SellerGSTINID,
			Number:        number,
			Status:        domain.CreditNoteStatusIssued,
			SupplyType:    inv.SupplyType,
			InvoiceTotals: rev.Totals,
			IssuedAt:      issuedAt,
			Lines:         rev.Lines,
		}
		return s.creditNotes.Create(ctx, cn)
	})
	if err != nil {
		return nil, nil, err
	}
	return cn, inv, nil
}

func (s *creditNoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditNote, error) {
	return s.creditNotes.GetByID(ctx, id)
}

func (s *creditNoteService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.CreditNote, error) {
	if _, err := s.invoices.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.creditNotes.ListByInvoice(ctx, invoiceID)
}
