package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerGSTIN is a registered GST identity of a branch or legal entity.
type SellerGSTIN struct {
	ID        uuid.UUID `db:"id" json:"id"`
	GSTIN     string    `db:"gstin" json:"gstin"`
	StateCode string    `db:"state_code" json:"state_code"`
	LegalName string    `db:"legal_name" json:"legal_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Product is the tax-relevant snapshot of a catalog product.
type Product struct {
	ID      uuid.UUID          `db:"id" json:"id"`
	Name    string             `db:"name" json:"name"`
	HSNCode *string            `db:"hsn_code" json:"hsn_code"`
	GSTRate *decimal.Decimal   `db:"gst_rate" json:"gst_rate"`
	GSTType *PricingConvention `db:"gst_type" json:"gst_type"`
}

// Batch is the tax-relevant snapshot of a stock batch.
type Batch struct {
	ID                  uuid.UUID        `db:"id" json:"id"`
	ProductID           uuid.UUID        `db:"product_id" json:"product_id"`
	BatchNumber         string           `db:"batch_number" json:"batch_number"`
	SaleGSTRateOverride *decimal.Decimal `db:"sale_gst_rate_override" json:"sale_gst_rate_override"`
}

// HSNCode is a row of the HSN master.
type HSNCode struct {
	Code           string            `db:"code" json:"code"`
	Description    string            `db:"description" json:"description"`
	DefaultGSTRate decimal.Decimal   `db:"default_gst_rate" json:"default_gst_rate"`
	GSTType        PricingConvention `db:"gst_type" json:"gst_type"`
}

// LineTaxResult is the frozen tax breakdown of one line. It is computed once
// and never recomputed after the owning document is issued.
type LineTaxResult struct {
	TaxableValuePaise Paise             `db:"taxable_value_paise" json:"taxable_value_paise"`
	CGSTPaise         Paise             `db:"cgst_paise" json:"cgst_paise"`
	SGSTPaise         Paise             `db:"sgst_paise" json:"sgst_paise"`
	IGSTPaise         Paise             `db:"igst_paise" json:"igst_paise"`
	TotalGSTPaise     Paise             `db:"total_gst_paise" json:"total_gst_paise"`
	LineTotalPaise    Paise             `db:"line_total_paise" json:"line_total_paise"`
	HSNCode           *string           `db:"hsn_code" json:"hsn_code"`
	GSTRatePercent    decimal.Decimal   `db:"gst_rate_percent" json:"gst_rate_percent"`
	Convention        PricingConvention `db:"pricing_convention" json:"pricing_convention"`
}

// InvoiceTotals is the aggregate of an invoice's or credit note's lines.
type InvoiceTotals struct {
	TotalTaxablePaise Paise `db:"total_taxable_paise" json:"total_taxable_paise"`
	TotalCGSTPaise    Paise `db:"total_cgst_paise" json:"total_cgst_paise"`
	TotalSGSTPaise    Paise `db:"total_sgst_paise" json:"total_sgst_paise"`
	TotalIGSTPaise    Paise `db:"total_igst_paise" json:"total_igst_paise"`
	TotalGSTPaise     Paise `db:"total_gst_paise" json:"total_gst_paise"`
	RoundOffPaise     Paise `db:"round_off_paise" json:"round_off_paise"`
	GrandTotalPaise   Paise `db:"grand_total_paise" json:"grand_total_paise"`
}

// Invoice is a sales invoice raised by a seller GSTIN.
type Invoice struct {
	ID                     uuid.UUID           `db:"id" json:"id"`
	SellerGSTINID          uuid.UUID           `db:"seller_gstin_id" json:"seller_gstin_id"`
	Number                 *string             `db:"number" json:"number"`
	Status                 InvoiceStatus       `db:"status" json:"status"`
	SupplyType             SupplyType          `db:"supply_type" json:"supply_type"`
	PlaceOfSupplyPolicy    PlaceOfSupplyPolicy `db:"place_of_supply_policy" json:"place_of_supply_policy"`
	PlaceOfSupplyStateCode string              `db:"place_of_supply_state_code" json:"place_of_supply_state_code"`
	BuyerName              string              `db:"buyer_name" json:"buyer_name"`
	BuyerGSTIN             *string             `db:"buyer_gstin" json:"buyer_gstin"`
	BuyerStateCode         *string             `db:"buyer_state_code" json:"buyer_state_code"`
	InvoiceTotals
	IssuedAt  *time.Time        `db:"issued_at" json:"issued_at"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
	LineItems []InvoiceLineItem `db:"-" json:"line_items"`
}

// InvoiceLineItem is one priced line of an invoice with its frozen tax snapshot.
type InvoiceLineItem struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	InvoiceID       uuid.UUID        `db:"invoice_id" json:"invoice_id"`
	LineNo          int              `db:"line_no" json:"line_no"`
	ProductID       *uuid.UUID       `db:"product_id" json:"product_id"`
	BatchID         *uuid.UUID       `db:"batch_id" json:"batch_id"`
	Description     string           `db:"description" json:"description"`
	UnitPricePaise  Paise            `db:"unit_price_paise" json:"unit_price_paise"`
	Quantity        int64            `db:"quantity" json:"quantity"`
	DiscountPaise   Paise            `db:"discount_paise" json:"discount_paise"`
	DiscountPercent *decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	IsTaxExempt     bool             `db:"is_tax_exempt" json:"is_tax_exempt"`
	HSNCodeOverride *string          `db:"hsn_code_override" json:"hsn_code_override,omitempty"`
	GSTRateOverride *decimal.Decimal `db:"gst_rate_override" json:"gst_rate_override,omitempty"`
	RateSource      RateSource       `db:"rate_source" json:"rate_source"`
	NeedsReview     bool             `db:"needs_review" json:"needs_review"`
	LineTaxResult
	// ReturnedQuantity is the sum of quantities already credited against this line.
	ReturnedQuantity int64     `db:"returned_quantity" json:"returned_quantity"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// CreditNote reverses tax for goods returned against an issued invoice.
type CreditNote struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	InvoiceID     uuid.UUID        `db:"invoice_id" json:"invoice_id"`
	SellerGSTINID uuid.UUID        `db:"seller_gstin_id" json:"seller_gstin_id"`
	Number        string           `db:"number" json:"number"`
	Status        CreditNoteStatus `db:"status" json:"status"`
	SupplyType    SupplyType       `db:"supply_type" json:"supply_type"`
	InvoiceTotals
	IssuedAt  time.Time        `db:"issued_at" json:"issued_at"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	Lines     []CreditNoteLine `db:"-" json:"lines"`
}

// CreditNoteLine mirrors the original line's tax breakdown, scaled by the returned share.
type CreditNoteLine struct {
	ID                 uuid.UUID    `db:"id" json:"id"`
	CreditNoteID       uuid.UUID    `db:"credit_note_id" json:"credit_note_id"`
	OriginalLineItemID uuid.UUID    `db:"original_line_item_id" json:"original_line_item_id"`
	OriginalQuantity   int64        `db:"original_quantity" json:"original_quantity"`
	ReturnedQuantity   int64        `db:"returned_quantity" json:"returned_quantity"`
	ReasonCode         ReturnReason `db:"reason_code" json:"reason_code"`
	Remarks            string       `db:"remarks" json:"remarks"`
	LineTaxResult
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RateWarning is a non-fatal notice that a line's rate came from a fallback rule
// and should be reviewed by compliance.
type RateWarning struct {
	LineNo  int        `json:"line_no"`
	Source  RateSource `json:"source"`
	HSNCode *string    `json:"hsn_code,omitempty"`
	Message string     `json:"message"`
}
