package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pharmapos/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (21 columns).
var columns = []string{
	"Document Type",
	"Document Number",
	"Status",
	"Supply Type",
	"Line",
	"Description",
	"HSN Code",
	"Quantity",
	"Pricing Convention",
	"GST Rate %",
	"Taxable Value",
	"CGST",
	"SGST",
	"IGST",
	"Total GST",
	"Line Total",
	"Rate Source",
	"Needs Review",
	"Reason Code",
	"Round Off",
	"Grand Total",
}

const (
	colType = iota
	colNumber
	colStatus
	colSupply
	colLine
	colDescription
	colHSN
	colQuantity
	colConvention
	colRate
	colTaxable
	colCGST
	colSGST
	colIGST
	colTotalGST
	colLineTotal
	colRateSource
	colNeedsReview
	colReason
	colRoundOff
	colGrandTotal
)

// Writer wraps csv.Writer for exporting frozen tax breakdowns as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoice writes one row per line followed by a TOTAL row.
func (w *Writer) WriteInvoice(inv *domain.Invoice) error {
	number := deref(inv.Number)
	for i := range inv.LineItems {
		li := &inv.LineItems[i]
		row := make([]string, len(columns))
		row[colType] = string(domain.DocumentKindInvoice)
		row[colNumber] = number
		row[colStatus] = string(inv.Status)
		row[colSupply] = string(inv.SupplyType)
		row[colLine] = strconv.Itoa(li.LineNo)
		row[colDescription] = li.Description
		row[colQuantity] = strconv.FormatInt(li.Quantity, 10)
		fillTax(row, &li.LineTaxResult)
		row[colRateSource] = string(li.RateSource)
		row[colNeedsReview] = formatBool(li.NeedsReview)
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return w.csv.Write(totalRow(domain.DocumentKindInvoice, number, string(inv.Status), inv.SupplyType, &inv.InvoiceTotals))
}

// WriteCreditNote writes one row per credit note line followed by a TOTAL row.
// When the original invoice is given, rows carry its line numbers and descriptions.
func (w *Writer) WriteCreditNote(cn *domain.CreditNote, inv *domain.Invoice) error {
	originals := make(map[uuid.UUID]*domain.InvoiceLineItem)
	if inv != nil {
		for i := range inv.LineItems {
			originals[inv.LineItems[i].ID] = &inv.LineItems[i]
		}
	}

	for i := range cn.Lines {
		l := &cn.Lines[i]
		row := make([]string, len(columns))
		row[colType] = string(domain.DocumentKindCreditNote)
		row[colNumber] = cn.Number
		row[colStatus] = string(cn.Status)
		row[colSupply] = string(cn.SupplyType)
		if orig, ok := originals[l.OriginalLineItemID]; ok {
			row[colLine] = strconv.Itoa(orig.LineNo)
			row[colDescription] = orig.Description
		}
		row[colQuantity] = strconv.FormatInt(l.ReturnedQuantity, 10)
		fillTax(row, &l.LineTaxResult)
		row[colReason] = string(l.ReasonCode)
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return w.csv.Write(totalRow(domain.DocumentKindCreditNote, cn.Number, string(cn.Status), cn.SupplyType, &cn.InvoiceTotals))
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func fillTax(row []string, t *domain.LineTaxResult) {
	row[colHSN] = deref(t.HSNCode)
	row[colConvention] = string(t.Convention)
	row[colRate] = t.GSTRatePercent.StringFixed(2)
	row[colTaxable] = t.TaxableValuePaise.String()
	row[colCGST] = t.CGSTPaise.String()
	row[colSGST] = t.SGSTPaise.String()
	row[colIGST] = t.IGSTPaise.String()
	row[colTotalGST] = t.TotalGSTPaise.String()
	row[colLineTotal] = t.LineTotalPaise.String()
}

func totalRow(kind domain.DocumentKind, number, status string, supply domain.SupplyType, t *domain.InvoiceTotals) []string {
	row := make([]string, len(columns))
	row[colType] = string(kind)
	row[colNumber] = number
	row[colStatus] = status
	row[colSupply] = string(supply)
	row[colLine] = "TOTAL"
	row[colTaxable] = t.TotalTaxablePaise.String()
	row[colCGST] = t.TotalCGSTPaise.String()
	row[colSGST] = t.TotalSGSTPaise.String()
	row[colIGST] = t.TotalIGSTPaise.String()
	row[colTotalGST] = t.TotalGSTPaise.String()
	row[colRoundOff] = t.RoundOffPaise.String()
	row[colGrandTotal] = t.GrandTotalPaise.String()
	return row
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document number for use in Content-Disposition
// and object keys. Replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns "{sanitized_number}.csv", falling back to the
// document ID for unnumbered drafts.
func BuildFilename(number *string, id uuid.UUID) string {
	name := SanitizeFilename(deref(number))
	if name == "" {
		name = "draft_" + id.String()
	}
	return fmt.Sprintf("%s.csv", name)
}
