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

const (
	uqInvoiceNumber = "uq_invoices_seller_number"

	insertLineItemsQuery = `INSERT INTO invoice_line_items (id, invoice_id, line_no, product_id, batch_id,
		description, unit_price_paise, quantity, discount_paise, discount_percent, is_tax_exempt,
		hsn_code_override, gst_rate_override, rate_source, needs_review, taxable_value_paise, cgst_paise, sgst_paise, igst_paise,
		total_gst_paise, line_total_paise, hsn_code, gst_rate_percent, pricing_convention, created_at)
		VALUES (:id, :invoice_id, :line_no, :product_id, :batch_id,
		:description, :unit_price_paise, :quantity, :discount_paise, :discount_percent, :is_tax_exempt,
		:hsn_code_override, :gst_rate_override, :rate_source, :needs_review, :taxable_value_paise, :cgst_paise, :sgst_paise, :igst_paise,
		:total_gst_paise, :line_total_paise, :hsn_code, :gst_rate_percent, :pricing_convention, :created_at)`

	// returned_quantity is derived from the credit notes already raised against each line.
	selectLineItemsQuery = `SELECT li.*,
		COALESCE((SELECT SUM(cnl.returned_quantity) FROM credit_note_lines cnl
		          WHERE cnl.original_line_item_id = li.id), 0) AS returned_quantity
		FROM invoice_line_items li
		WHERE li.invoice_id = $1
		ORDER BY li.line_no`
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	q := conn(ctx, r.db)
	_, err := q.NamedExecContext(ctx, `INSERT INTO invoices (id, seller_gstin_id, number, status, supply_type,
		place_of_supply_policy, place_of_supply_state_code, buyer_name, buyer_gstin, buyer_state_code,
		total_taxable_paise, total_cgst_paise, total_sgst_paise, total_igst_paise, total_gst_paise,
		round_off_paise, grand_total_paise, issued_at, created_at, updated_at)
		VALUES (:id, :seller_gstin_id, :number, :status, :supply_type,
		:place_of_supply_policy, :place_of_supply_state_code, :buyer_name, :buyer_gstin, :buyer_state_code,
		:total_taxable_paise, :total_cgst_paise, :total_sgst_paise, :total_igst_paise, :total_gst_paise,
		:round_off_paise, :grand_total_paise, :issued_at, :created_at, :updated_at)`, inv)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	if err := r.insertLines(ctx, q, inv); err != nil {
		return fmt.Errorf("invoiceRepo.Create lines: %w", err)
	}
	return nil
}

func (r *invoiceRepo) insertLines(ctx context.Context, q queryer, inv *domain.Invoice) error {
	if len(inv.LineItems) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for idx := range inv.LineItems {
		li := &inv.LineItems[idx]
		if li.ID == uuid.Nil {
			li.ID = uuid.New()
		}
		li.InvoiceID = inv.ID
		li.CreatedAt = now
	}
	_, err := q.NamedExecContext(ctx, insertLineItemsQuery, inv.LineItems)
	return err
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return r.get(ctx, id, false)
}

func (r *invoiceRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return r.get(ctx, id, true)
}

func (r *invoiceRepo) get(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Invoice, error) {
	query := "SELECT * FROM invoices WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	q := conn(ctx, r.db)
	var inv domain.Invoice
	if err := q.GetContext(ctx, &inv, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}

	var lines []domain.InvoiceLineItem
	if err := q.SelectContext(ctx, &lines, selectLineItemsQuery, id); err != nil {
		return nil, fmt.Errorf("invoiceRepo.GetByID lines: %w", err)
	}
	inv.LineItems = lines
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, sellerGSTINID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	q := conn(ctx, r.db)

	var total int
	err := q.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM invoices WHERE ($1::uuid IS NULL OR seller_gstin_id = $1)", sellerGSTINID)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	var invoices []domain.Invoice
	err = q.SelectContext(ctx, &invoices,
		`SELECT * FROM invoices WHERE ($1::uuid IS NULL OR seller_gstin_id = $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		sellerGSTINID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) ReplaceLines(ctx context.Context, inv *domain.Invoice) error {
	q := conn(ctx, r.db)
	inv.UpdatedAt = time.Now().UTC()

	result, err := q.NamedExecContext(ctx, `UPDATE invoices SET
		supply_type = :supply_type, place_of_supply_policy = :place_of_supply_policy,
		place_of_supply_state_code = :place_of_supply_state_code,
		buyer_name = :buyer_name, buyer_gstin = :buyer_gstin, buyer_state_code = :buyer_state_code,
		total_taxable_paise = :total_taxable_paise, total_cgst_paise = :total_cgst_paise,
		total_sgst_paise = :total_sgst_paise, total_igst_paise = :total_igst_paise,
		total_gst_paise = :total_gst_paise, round_off_paise = :round_off_paise,
		grand_total_paise = :grand_total_paise, updated_at = :updated_at
		WHERE id = :id AND status = 'DRAFT'`, inv)
	if err != nil {
		return fmt.Errorf("invoiceRepo.ReplaceLines: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM invoice_line_items WHERE invoice_id = $1", inv.ID); err != nil {
		return fmt.Errorf("invoiceRepo.ReplaceLines delete: %w", err)
	}
	if err := r.insertLines(ctx, q, inv); err != nil {
		return fmt.Errorf("invoiceRepo.ReplaceLines insert: %w", err)
	}
	return nil
}

func (r *invoiceRepo) MarkIssued(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE invoices SET number = $1, status = $2, issued_at = $3, updated_at = $4
		 WHERE id = $5 AND status = 'DRAFT'`,
		inv.Number, domain.InvoiceStatusIssued, inv.IssuedAt, inv.UpdatedAt, inv.ID)
	if err != nil {
		if isUniqueViolation(err, uqInvoiceNumber) {
			return domain.ErrDuplicateDocumentNumber
		}
		return fmt.Errorf("invoiceRepo.MarkIssued: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	inv.Status = domain.InvoiceStatusIssued
	return nil
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.InvoiceStatus) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE invoices SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		to, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
