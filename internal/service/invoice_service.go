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

// QuoteInput is the DTO for a stateless tax quote.
type QuoteInput struct {
	PartyInput
	Lines []LineItemInput `json:"lines" binding:"required,min=1,dive"`
}

// CreateInvoiceInput is the DTO for creating a draft invoice.
type CreateInvoiceInput struct {
	PartyInput
	Lines []LineItemInput `json:"lines" binding:"required,min=1,dive"`
}

// ReplaceLinesInput is the DTO for replacing the lines of a draft.
type ReplaceLinesInput struct {
	Lines []LineItemInput `json:"lines" binding:"required,min=1,dive"`
}

// Quote is the priced result of a quote request.
type Quote struct {
	SupplyType             domain.SupplyType        `json:"supply_type"`
	PlaceOfSupplyStateCode string                   `json:"place_of_supply_state_code"`
	Lines                  []domain.InvoiceLineItem `json:"lines"`
	domain.InvoiceTotals
	Warnings []domain.RateWarning `json:"-"`
}

// InvoiceResult pairs an invoice with the rate warnings raised while pricing it.
type InvoiceResult struct {
	Invoice  *domain.Invoice
	Warnings []domain.RateWarning
}

// InvoiceConfig holds numbering settings for invoices.
type InvoiceConfig struct {
	NumberTemplate string
	NumberRetries  int
}

// InvoiceService defines the invoice lifecycle contract.
type InvoiceService interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
	Create(ctx context.Context, input CreateInvoiceInput) (*InvoiceResult, error)
	ReplaceLines(ctx context.Context, id uuid.UUID, input ReplaceLinesInput) (*InvoiceResult, error)
	Issue(ctx context.Context, id uuid.UUID) (*InvoiceResult, error)
	Cancel(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, sellerGSTINID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
}

type invoiceService struct {
	tx        port.Transactor
	invoices  port.InvoiceRepository
	sellers   port.SellerRepository
	sequences port.SequenceAllocator
	notifier  port.ComplianceNotifier
	archiver  Archiver
	pricer    pricer
	metrics   *metrics.Metrics
	log       *zap.Logger
	cfg       InvoiceConfig
	now       func() time.Time
}

// NewInvoiceService creates a new InvoiceService implementation.
// notifier and archiver may be nil.
func NewInvoiceService(
	tx port.Transactor,
	invoices port.InvoiceRepository,
	sellers port.SellerRepository,
	catalog port.CatalogRepository,
	rates *RateCatalog,
	sequences port.SequenceAllocator,
	notifier port.ComplianceNotifier,
	archiver Archiver,
	m *metrics.Metrics,
	log *zap.Logger,
	cfg InvoiceConfig,
) InvoiceService {
	if cfg.NumberTemplate == "" {
		cfg.NumberTemplate = tax.DefaultInvoiceNumberTemplate
	}
	if cfg.NumberRetries < 1 {
		cfg.NumberRetries = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &invoiceService{
		tx:        tx,
		invoices:  invoices,
		sellers:   sellers,
		sequences: sequences,
		notifier:  notifier,
		archiver:  archiver,
		pricer:    pricer{catalog: catalog, rates: rates, metrics: m},
		metrics:   m,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *invoiceService) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	seller, err := s.sellers.GetByID(ctx, input.SellerGSTINID)
	if err != nil {
		return nil, err
	}
	comp, err := s.pricer.compute(ctx, seller, input.PartyInput, input.Lines)
	if err != nil {
		return nil, err
	}
	return &Quote{
		SupplyType:             comp.supply.Type,
		PlaceOfSupplyStateCode: comp.supply.PlaceOfSupplyStateCode,
		Lines:                  comp.lines,
		InvoiceTotals:          comp.totals,
		Warnings:               comp.warnings,
	}, nil
}

func (s *invoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*InvoiceResult, error) {
	seller, err := s.sellers.GetByID(ctx, input.SellerGSTINID)
	if err != nil {
		return nil, err
	}
	comp, err := s.pricer.compute(ctx, seller, input.PartyInput, input.Lines)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		SellerGSTINID:       seller.ID,
		Status:              domain.InvoiceStatusDraft,
		PlaceOfSupplyPolicy: comp.party.PlaceOfSupplyPolicy,
		BuyerName:           comp.party.BuyerName,
		BuyerGSTIN:          comp.party.BuyerGSTIN,
		BuyerStateCode:      comp.party.BuyerStateCode,
	}
	applyComputation(inv, comp)

	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.invoices.Create(ctx, inv)
	}); err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv, Warnings: comp.warnings}, nil
}

func (s *invoiceService) ReplaceLines(ctx context.Context, id uuid.UUID, input ReplaceLinesInput) (*InvoiceResult, error) {
	var (
		inv      *domain.Invoice
		warnings []domain.RateWarning
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != domain.InvoiceStatusDraft {
			return domain.NewInvalidStateError("invoice", string(inv.Status), "modify lines of")
		}
		comp, err := s.recompute(ctx, inv, input.Lines)
		if err != nil {
			return err
		}
		warnings = comp.warnings
		return s.invoices.ReplaceLines(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv, Warnings: warnings}, nil
}

// Issue freezes a draft and assigns its number. The lines are priced once more
// against current master data inside the issuing transaction, so the frozen
// snapshot reflects the rates in force at issuance.
func (s *invoiceService) Issue(ctx context.Context, id uuid.UUID) (*InvoiceResult, error) {
	var (
		res *InvoiceResult
		err error
	)
	for attempt := 1; ; attempt++ {
		res, err = s.issueOnce(ctx, id)
		if !errors.Is(err, domain.ErrDuplicateDocumentNumber) || attempt >= s.cfg.NumberRetries {
			break
		}
		s.metrics.NumberRetry(domain.DocumentKindInvoice)
		s.log.Warn("invoice number collision, retrying",
			zap.String("invoice_id", id.String()), zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	inv := res.Invoice
	s.metrics.InvoiceIssued(inv.SupplyType, inv.RoundOffPaise)
	s.log.Info("invoice issued",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", *inv.Number),
		zap.String("supply_type", string(inv.SupplyType)),
		zap.Int64("grand_total_paise", int64(inv.GrandTotalPaise)),
		zap.Int("warnings", len(res.Warnings)))

	s.afterIssue(ctx, inv, res.Warnings)
	return res, nil
}

func (s *invoiceService) issueOnce(ctx context.Context, id uuid.UUID) (*InvoiceResult, error) {
	var (
		inv      *domain.Invoice
		warnings []domain.RateWarning
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != domain.InvoiceStatusDraft {
			return domain.NewInvalidStateError("invoice", string(inv.Status), "issue")
		}
		if len(inv.LineItems) == 0 {
			return domain.NewValidationError("lines", "cannot issue an invoice without lines")
		}

		comp, err := s.recompute(ctx, inv, lineInputsFrom(inv.LineItems))
		if err != nil {
			return err
		}
		warnings = comp.warnings
		if err := s.invoices.ReplaceLines(ctx, inv); err != nil {
			return err
		}

		issuedAt := s.now().UTC()
		seq, err := s.sequences.Next(ctx, inv.SellerGSTINID, domain.DocumentKindInvoice, tax.SequencePeriod(issuedAt))
		if err != nil {
			return fmt.Errorf("allocating invoice number: %w", err)
		}
		number, err := tax.FormatDocumentNumber(s.cfg.NumberTemplate, issuedAt, seq)
		if err != nil {
			return err
		}
		inv.Number = &number
		inv.IssuedAt = &issuedAt
		inv.Status = domain.InvoiceStatusIssued
		return s.invoices.MarkIssued(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv, Warnings: warnings}, nil
}

// afterIssue runs side effects that must not undo a committed issuance.
func (s *invoiceService) afterIssue(ctx context.Context, inv *domain.Invoice, warnings []domain.RateWarning) {
	if len(warnings) > 0 && s.notifier != nil {
		gstin := ""
		if seller, err := s.sellers.GetByID(ctx, inv.SellerGSTINID); err == nil {
			gstin = seller.GSTIN
		}
		if err := s.notifier.NotifyRateReview(ctx, port.ReviewNotice{
			Kind:        domain.DocumentKindInvoice,
			DocumentID:  inv.ID,
			Number:      *inv.Number,
			SellerGSTIN: gstin,
			Warnings:    warnings,
		}); err != nil {
			s.log.Error("rate review notice failed", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
		}
	}

	if s.archiver != nil {
		loc, err := s.archiver.ArchiveInvoice(ctx, inv)
		if err != nil {
			s.log.Error("invoice archive failed", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
			return
		}
		s.log.Debug("invoice archived", zap.String("invoice_id", inv.ID.String()), zap.String("location", loc))
	}
}

func (s *invoiceService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv *domain.Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status == domain.InvoiceStatusCancelled {
			return domain.NewInvalidStateError("invoice", string(inv.Status), "cancel")
		}
		for i := range inv.LineItems {
			if inv.LineItems[i].ReturnedQuantity > 0 {
				return domain.NewValidationError("invoice", "has credit notes and cannot be cancelled")
			}
		}
		if err := s.invoices.UpdateStatus(ctx, id, inv.Status, domain.InvoiceStatusCancelled); err != nil {
			return err
		}
		inv.Status = domain.InvoiceStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("invoice cancelled", zap.String("invoice_id", id.String()))
	return inv, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

func (s *invoiceService) List(ctx context.Context, sellerGSTINID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	return s.invoices.List(ctx, sellerGSTINID, offset, limit)
}

// recompute prices lines for an existing invoice and stores the result on it.
func (s *invoiceService) recompute(ctx context.Context, inv *domain.Invoice, lines []LineItemInput) (*computation, error) {
	seller, err := s.sellers.GetByID(ctx, inv.SellerGSTINID)
	if err != nil {
		return nil, err
	}
	party := PartyInput{
		SellerGSTINID:       inv.SellerGSTINID,
		BuyerName:           inv.BuyerName,
		BuyerGSTIN:          inv.BuyerGSTIN,
		BuyerStateCode:      inv.BuyerStateCode,
		PlaceOfSupplyPolicy: inv.PlaceOfSupplyPolicy,
	}
	comp, err := s.pricer.compute(ctx, seller, party, lines)
	if err != nil {
		return nil, err
	}
	applyComputation(inv, comp)
	return comp, nil
}

func applyComputation(inv *domain.Invoice, comp *computation) {
	inv.SupplyType = comp.supply.Type
	inv.PlaceOfSupplyStateCode = comp.supply.PlaceOfSupplyStateCode
	inv.InvoiceTotals = comp.totals
	inv.LineItems = comp.lines
}
