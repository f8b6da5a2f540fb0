package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmapos/internal/domain"
)

func readAll(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return rows
}

func sampleInvoice() *domain.Invoice {
	number := "INV/2025-03/0001"
	hsn := "3004"
	return &domain.Invoice{
		ID:         uuid.New(),
		Number:     &number,
		Status:     domain.InvoiceStatusIssued,
		SupplyType: domain.SupplyIntraState,
		InvoiceTotals: domain.InvoiceTotals{
			TotalTaxablePaise: 7000, TotalCGSTPaise: 360, TotalSGSTPaise: 360,
			TotalGSTPaise: 720, RoundOffPaise: -20, GrandTotalPaise: 7700,
		},
		LineItems: []domain.InvoiceLineItem{
			{
				ID: uuid.New(), LineNo: 1, Description: "Paracetamol 500mg", Quantity: 2,
				RateSource: domain.RateSourceHSN,
				LineTaxResult: domain.LineTaxResult{
					TaxableValuePaise: 6000, CGSTPaise: 360, SGSTPaise: 360, TotalGSTPaise: 720,
					LineTotalPaise: 6720, HSNCode: &hsn, GSTRatePercent: decimal.NewFromInt(12),
					Convention: domain.PricingExclusive,
				},
			},
			{
				ID: uuid.New(), LineNo: 2, Description: "Bandage", Quantity: 1,
				RateSource: domain.RateSourceDefault, NeedsReview: true,
				LineTaxResult: domain.LineTaxResult{
					TaxableValuePaise: 1000, LineTotalPaise: 1000,
					GSTRatePercent: decimal.Zero, Convention: domain.PricingExclusive,
				},
			},
		},
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	rows := readAll(t, &buf)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 21)
	assert.Equal(t, "Document Type", rows[0][0])
	assert.Equal(t, "Grand Total", rows[0][20])
}

func TestWriteInvoice(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInvoice(sampleInvoice()))
	w.Flush()
	require.NoError(t, w.Error())

	rows := readAll(t, &buf)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, "INVOICE", first[colType])
	assert.Equal(t, "INV/2025-03/0001", first[colNumber])
	assert.Equal(t, "1", first[colLine])
	assert.Equal(t, "3004", first[colHSN])
	assert.Equal(t, "12.00", first[colRate])
	assert.Equal(t, "60.00", first[colTaxable])
	assert.Equal(t, "3.60", first[colCGST])
	assert.Equal(t, "67.20", first[colLineTotal])
	assert.Equal(t, "HSN", first[colRateSource])
	assert.Equal(t, "No", first[colNeedsReview])

	assert.Equal(t, "Yes", rows[1][colNeedsReview])
	assert.Equal(t, "", rows[1][colHSN])

	total := rows[2]
	assert.Equal(t, "TOTAL", total[colLine])
	assert.Equal(t, "70.00", total[colTaxable])
	assert.Equal(t, "-0.20", total[colRoundOff])
	assert.Equal(t, "77.00", total[colGrandTotal])
}

func TestWriteCreditNote(t *testing.T) {
	inv := sampleInvoice()
	orig := inv.LineItems[0]
	cn := &domain.CreditNote{
		Number:     "CN/2025-03/0001",
		Status:     domain.CreditNoteStatusIssued,
		SupplyType: domain.SupplyIntraState,
		InvoiceTotals: domain.InvoiceTotals{
			TotalTaxablePaise: 3000, TotalCGSTPaise: 180, TotalSGSTPaise: 180,
			TotalGSTPaise: 360, RoundOffPaise: 40, GrandTotalPaise: 3400,
		},
		Lines: []domain.CreditNoteLine{{
			OriginalLineItemID: orig.ID, OriginalQuantity: 2, ReturnedQuantity: 1,
			ReasonCode: domain.ReturnReasonDamaged,
			LineTaxResult: domain.LineTaxResult{
				TaxableValuePaise: 3000, CGSTPaise: 180, SGSTPaise: 180, TotalGSTPaise: 360,
				LineTotalPaise: 3360, HSNCode: orig.HSNCode, GSTRatePercent: orig.GSTRatePercent,
				Convention: orig.Convention,
			},
		}},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteCreditNote(cn, inv))
	w.Flush()

	rows := readAll(t, &buf)
	require.Len(t, rows, 2)
	assert.Equal(t, "CREDIT_NOTE", rows[0][colType])
	assert.Equal(t, "1", rows[0][colLine])
	assert.Equal(t, "Paracetamol 500mg", rows[0][colDescription])
	assert.Equal(t, "1", rows[0][colQuantity])
	assert.Equal(t, "33.60", rows[0][colLineTotal])
	assert.Equal(t, "DAMAGED", rows[0][colReason])
	assert.Equal(t, "34.00", rows[1][colGrandTotal])

	buf.Reset()
	w = NewWriter(&buf)
	require.NoError(t, w.WriteCreditNote(cn, nil))
	w.Flush()
	rows = readAll(t, &buf)
	assert.Equal(t, "", rows[0][colLine])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"INV/2025-03/0001", "INV_2025-03_0001"},
		{"CN/2025-03/0012", "CN_2025-03_0012"},
		{"  //weird  name// ", "weird_name"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestBuildFilename(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	number := "INV/2025-03/0001"
	assert.Equal(t, "INV_2025-03_0001.csv", BuildFilename(&number, id))
	assert.Equal(t, "draft_11111111-2222-3333-4444-555555555555.csv", BuildFilename(nil, id))
}
