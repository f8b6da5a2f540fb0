package domain

// PricingConvention states whether a unit price already includes GST.
type PricingConvention string

const (
	PricingInclusive PricingConvention = "INCLUSIVE"
	PricingExclusive PricingConvention = "EXCLUSIVE"
)

// Valid reports whether c is a known pricing convention.
func (c PricingConvention) Valid() bool {
	return c == PricingInclusive || c == PricingExclusive
}

// SupplyType is the GST regime applied uniformly to every line of an invoice.
type SupplyType string

const (
	SupplyIntraState SupplyType = "INTRA_STATE"
	SupplyInterState SupplyType = "INTER_STATE"
)

// PlaceOfSupplyPolicy decides which state code is the place of supply.
type PlaceOfSupplyPolicy string

const (
	PlaceOfSupplyCustomerState PlaceOfSupplyPolicy = "CUSTOMER_STATE"
	PlaceOfSupplyStoreState    PlaceOfSupplyPolicy = "STORE_STATE"
)

// InvoiceStatus represents the lifecycle of a sales invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// CreditNoteStatus represents the lifecycle of a credit note.
type CreditNoteStatus string

const (
	CreditNoteStatusIssued CreditNoteStatus = "ISSUED"
)

// RateSource records which rule of the rate hierarchy produced a line's GST rate.
type RateSource string

const (
	RateSourceExempt  RateSource = "EXEMPT"
	RateSourceBatch   RateSource = "BATCH"
	RateSourceProduct RateSource = "PRODUCT"
	RateSourceHSN     RateSource = "HSN"
	RateSourceCaller  RateSource = "CALLER_OVERRIDE"
	RateSourceDefault RateSource = "SYSTEM_DEFAULT"
)

// NeedsReview reports whether a rate from this source must be checked by compliance.
func (s RateSource) NeedsReview() bool {
	return s == RateSourceCaller || s == RateSourceDefault
}

// ReturnReason classifies why goods were returned against an invoice.
type ReturnReason string

const (
	ReturnReasonDamaged        ReturnReason = "DAMAGED"
	ReturnReasonExpired        ReturnReason = "EXPIRED"
	ReturnReasonWrongItem      ReturnReason = "WRONG_ITEM"
	ReturnReasonCustomerReturn ReturnReason = "CUSTOMER_RETURN"
	ReturnReasonRecall         ReturnReason = "RECALL"
	ReturnReasonOther          ReturnReason = "OTHER"
)

// ValidReturnReasons lists the accepted reason codes.
var ValidReturnReasons = map[ReturnReason]bool{
	ReturnReasonDamaged:        true,
	ReturnReasonExpired:        true,
	ReturnReasonWrongItem:      true,
	ReturnReasonCustomerReturn: true,
	ReturnReasonRecall:         true,
	ReturnReasonOther:          true,
}

// DocumentKind scopes a number sequence.
type DocumentKind string

const (
	DocumentKindInvoice    DocumentKind = "INVOICE"
	DocumentKindCreditNote DocumentKind = "CREDIT_NOTE"
)
