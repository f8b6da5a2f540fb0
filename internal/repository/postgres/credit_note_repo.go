package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pharmapos/internal/domain"
	"pharmapos/internal/port"
)

const uqCreditNoteNumber = "uq_credit_notes_seller_number"

type creditNoteRepo struct {
	db *sqlx.DB
}

// NewCreditNoteRepo creates a new PostgreSQL-backed CreditNoteRepository.
func NewCreditNoteRepo(db *sqlx.DB) port.CreditNoteRepository {
	return &creditNoteRepo{db: db}
}

func (r *creditNoteRepo) Create(ctx context.Context, cn *domain.CreditNote) error {
	if cn.ID == uuid.Nil {
		cn.ID = uuid.New()
	}
	now := time.Now().UTC()
	cn.CreatedAt = now

	q := conn(ctx, r.db)
	_, err := q.NamedExecContext(ctx, `INSERT INTO credit_notes (id, invoice_id, seller_gstin_id, number,
		status, supply_type, total_taxable_paise, total_cgst_paise, total_sgst_paise, total_igst_paise,
		total_gst_paise, round_off_paise, grand_total_paise, issued_at, created_at)
		VALUES (:id, :invoice_id, :seller_gstin_id, :number,
		:status, :supply_type, :total_taxable_paise, :total_cgst_paise, :total_sgst_paise, :total_igst_paise,
		:total_gst_paise, :round_off_paise, :grand_total_paise, :issued_at, :created_at)`, cn)
	if err != nil {
		if isUniqueViolation(err, uqCreditNoteNumber) {
			return domain.ErrDuplicateDocumentNumber
		}
		return fmt.Errorf("creditNoteRepo.Create: %w", err)
	}

	if len(cn.Lines) == 0 {
		return nil
	}
	for idx := range cn.Lines {
		l := &cn.Lines[idx]
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		l.CreditNoteID = cn.ID
		l.CreatedAt = now
	}
	_, err = q.NamedExecContext(ctx, `INSERT INTO credit_note_lines (id, credit_note_id, original_line_item_id,
		original_quantity, returned_quantity, reason_code, remarks, taxable_value_paise, cgst_paise,
		sgst_paise, igst_paise, total_gst_paise, line_total_paise, hsn_code, gst_rate_percent,
		pricing_convention, created_at)
		VALUES (:id, :credit_note_id, :original_line_item_id,
		:original_quantity, :returned_quantity, :reason_code, :remarks, :taxable_value_paise, :cgst_paise,
		:sgst_paise, :igst_paise, :total_gst_paise, :line_total_paise, :hsn_code, :gst_rate_percent,
		:pricing_convention, :created_at)`, cn.Lines)
	if err != nil {
		return fmt.Errorf("creditNoteRepo.Create lines: %w", err)
	}
	return nil
}

func (r *creditNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditNote, error) {
	q := conn(ctx, r.db)
	var cn domain.CreditNote
	if err := q.GetContext(ctx, &cn, "SELECT * FROM credit_notes WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCreditNoteNotFound
		}
		return nil, fmt.Errorf("creditNoteRepo.GetByID: %w", err)
	}
	var lines []domain.CreditNoteLine
	if err := q.SelectContext(ctx, &lines,
		"SELECT * FROM credit_note_lines WHERE credit_note_id = $1 ORDER BY created_at, id", id); err != nil {
		return nil, fmt.Errorf("creditNoteRepo.GetByID lines: %w", err)
	}
	cn.Lines = lines
	return &cn, nil
}

func (r *creditNoteRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.CreditNote, error) {
	q := conn(ctx, r.db)
	var notes []domain.CreditNote
	if err := q.SelectContext(ctx, &notes,
		"SELECT * FROM credit_notes WHERE invoice_id = $1 ORDER BY issued_at, number", invoiceID); err != nil {
		return nil, fmt.Errorf("creditNoteRepo.ListByInvoice: %w", err)
	}
	if len(notes) == 0 {
		return notes, nil
	}

	ids := make([]uuid.UUID, len(notes))
	byID := make(map[uuid.UUID]*domain.CreditNote, len(notes))
	for idx := range notes {
		ids[idx] = notes[idx].ID
		byID[notes[idx].ID] = &notes[idx]
	}
	query, args, err := sqlx.In(
		"SELECT * FROM credit_note_lines WHERE credit_note_id IN (?) ORDER BY created_at, id", ids)
	if err != nil {
		return nil, fmt.Errorf("creditNoteRepo.ListByInvoice lines: %w", err)
	}
	var lines []domain.CreditNoteLine
	if err := q.SelectContext(ctx, &lines, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("creditNoteRepo.ListByInvoice lines: %w", err)
	}
	for idx := range lines {
		if cn, ok := byID[lines[idx].CreditNoteID]; ok {
			cn.Lines = append(cn.Lines, lines[idx])
		}
	}
	return notes, nil
}
