package tax_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmapos/internal/domain"
	"pharmapos/internal/tax"
)

// issuedInvoice builds an ISSUED invoice whose lines are computed by CalculateLine.
func issuedInvoice(t *testing.T, supply domain.SupplyType, lines ...tax.LineInput) *domain.Invoice {
	t.Helper()
	inv := &domain.Invoice{
		ID:         uuid.New(),
		Status:     domain.InvoiceStatusIssued,
		SupplyType: supply,
	}
	for i, in := range lines {
		in.Supply = supply
		res, err := tax.CalculateLine(in)
		require.NoError(t, err)
		inv.LineItems = append(inv.LineItems, domain.InvoiceLineItem{
			ID:             uuid.New(),
			InvoiceID:      inv.ID,
			LineNo:         i + 1,
			UnitPricePaise: in.UnitPricePaise,
			Quantity:       in.Quantity,
			LineTaxResult:  res,
		})
	}
	return inv
}

func scenarioALine() tax.LineInput {
	return tax.LineInput{UnitPricePaise: 3000, Quantity: 2, Rate: rate(12, domain.PricingExclusive)}
}

func TestReverseInvoice_HalfReturn(t *testing.T) {
	inv := issuedInvoice(t, domain.SupplyIntraState, scenarioALine())

	rev, err := tax.ReverseInvoice(inv, []tax.ReturnRequest{{
		OriginalLineItemID: inv.LineItems[0].ID,
		ReturnQuantity:     1,
		ReasonCode:         domain.ReturnReasonDamaged,
	}}, tax.ReversalOptions{ApplyRoundOff: true})
	require.NoError(t, err)
	require.Len(t, rev.Lines, 1)

	l := rev.Lines[0]
	assert.Equal(t, inv.LineItems[0].ID, l.OriginalLineItemID)
	assert.Equal(t, int64(2), l.OriginalQuantity)
	assert.Equal(t, int64(1), l.ReturnedQuantity)
	assert.Equal(t, domain.Paise(3000), l.TaxableValuePaise)
	assert.Equal(t, domain.Paise(180), l.CGSTPaise)
	assert.Equal(t, domain.Paise(180), l.SGSTPaise)
	assert.Equal(t, domain.Paise(0), l.IGSTPaise)
	assert.Equal(t, domain.Paise(360), l.TotalGSTPaise)
	assert.Equal(t, domain.Paise(3360), l.LineTotalPaise)
	assert.True(t, inv.LineItems[0].GSTRatePercent.Equal(l.GSTRatePercent))

	assert.Equal(t, domain.Paise(3400), rev.Totals.GrandTotalPaise)
	assert.Equal(t, domain.Paise(40), rev.Totals.RoundOffPaise)
}

func TestReverseInvoice_FullReturnConservation(t *testing.T) {
	inv := issuedInvoice(t, domain.SupplyInterState,
		tax.LineInput{UnitPricePaise: 1999, Quantity: 7, Rate: rate(18, domain.PricingInclusive)},
		tax.LineInput{UnitPricePaise: 333, Quantity: 3, Rate: rate(5, domain.PricingExclusive)},
	)

	reqs := make([]tax.ReturnRequest, 0, len(inv.LineItems))
	for _, li := range inv.LineItems {
		reqs = append(reqs, tax.ReturnRequest{OriginalLineItemID: li.ID, ReturnQuantity: li.Quantity, ReasonCode: domain.ReturnReasonRecall})
	}
	rev, err := tax.ReverseInvoice(inv, reqs, tax.ReversalOptions{})
	require.NoError(t, err)

	for i, l := range rev.Lines {
		assert.Equal(t, inv.LineItems[i].LineTaxResult, l.LineTaxResult)
	}
}

// Returning a line one unit at a time must add up to exactly the original.
func TestReverseInvoice_PartialReturnsAccumulateWithoutDrift(t *testing.T) {
	inv := issuedInvoice(t, domain.SupplyIntraState,
		tax.LineInput{UnitPricePaise: 1001, Quantity: 7, Rate: rate(12, domain.PricingInclusive)},
	)
	orig := &inv.LineItems[0]

	var sum domain.LineTaxResult
	for returned := int64(0); returned < orig.Quantity; returned++ {
		orig.ReturnedQuantity = returned
		rev, err := tax.ReverseInvoice(inv, []tax.ReturnRequest{{
			OriginalLineItemID: orig.ID,
			ReturnQuantity:     1,
			ReasonCode:         domain.ReturnReasonCustomerReturn,
		}}, tax.ReversalOptions{})
		require.NoError(t, err)

		l := rev.Lines[0]
		assert.Equal(t, l.TotalGSTPaise, l.CGSTPaise+l.SGSTPaise+l.IGSTPaise)
		sum.TaxableValuePaise += l.TaxableValuePaise
		sum.CGSTPaise += l.CGSTPaise
		sum.SGSTPaise += l.SGSTPaise
		sum.IGSTPaise += l.IGSTPaise
		sum.TotalGSTPaise += l.TotalGSTPaise
		sum.LineTotalPaise += l.LineTotalPaise
	}

	assert.Equal(t, orig.TaxableValuePaise, sum.TaxableValuePaise)
	assert.Equal(t, orig.CGSTPaise, sum.CGSTPaise)
	assert.Equal(t, orig.SGSTPaise, sum.SGSTPaise)
	assert.Equal(t, orig.TotalGSTPaise, sum.TotalGSTPaise)
	assert.Equal(t, orig.LineTotalPaise, sum.LineTotalPaise)
}

func TestReverseInvoice_SameLineTwiceIsCumulative(t *testing.T) {
	inv := issuedInvoice(t, domain.SupplyIntraState, tax.LineInput{UnitPricePaise: 1001, Quantity: 3, Rate: rate(12, domain.PricingExclusive)})
	id := inv.LineItems[0].ID

	rev, err := tax.ReverseInvoice(inv, []tax.ReturnRequest{
		{OriginalLineItemID: id, ReturnQuantity: 1, ReasonCode: domain.ReturnReasonExpired},
		{OriginalLineItemID: id, ReturnQuantity: 2, ReasonCode: domain.ReturnReasonDamaged},
	}, tax.ReversalOptions{})
	require.NoError(t, err)
	require.Len(t, rev.Lines, 2)
	assert.Equal(t, inv.LineItems[0].TaxableValuePaise, rev.Lines[0].TaxableValuePaise+rev.Lines[1].TaxableValuePaise)
	assert.Equal(t, inv.LineItems[0].TotalGSTPaise, rev.Totals.TotalGSTPaise)

	_, err = tax.ReverseInvoice(inv, []tax.ReturnRequest{
		{OriginalLineItemID: id, ReturnQuantity: 2, ReasonCode: domain.ReturnReasonExpired},
		{OriginalLineItemID: id, ReturnQuantity: 2, ReasonCode: domain.ReturnReasonExpired},
	}, tax.ReversalOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReverseInvoice_Validation(t *testing.T) {
	inv := issuedInvoice(t, domain.SupplyIntraState, scenarioALine())
	id := inv.LineItems[0].ID

	tests := []struct {
		name  string
		reqs  []tax.ReturnRequest
		field string
	}{
		{"no_lines", nil, "lines"},
		{"zero_quantity", []tax.ReturnRequest{{OriginalLineItemID: id, ReturnQuantity: 0, ReasonCode: domain.ReturnReasonOther}}, "lines[0].return_quantity"},
		{"exceeds_original", []tax.ReturnRequest{{OriginalLineItemID: id, ReturnQuantity: 3, ReasonCode: domain.ReturnReasonOther}}, "lines[0].return_quantity"},
		{"foreign_line", []tax.ReturnRequest{{OriginalLineItemID: uuid.New(), ReturnQuantity: 1, ReasonCode: domain.ReturnReasonOther}}, "lines[0].original_line_item_id"},
		{"bad_reason", []tax.ReturnRequest{{OriginalLineItemID: id, ReturnQuantity: 1, ReasonCode: "BORED"}}, "lines[0].reason_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev, err := tax.ReverseInvoice(inv, tt.reqs, tax.ReversalOptions{})
			assert.Nil(t, rev)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	t.Run("exceeds_remaining", func(t *testing.T) {
		inv := issuedInvoice(t, domain.SupplyIntraState, scenarioALine())
		inv.LineItems[0].ReturnedQuantity = 2
		_, err := tax.ReverseInvoice(inv, []tax.ReturnRequest{{
			OriginalLineItemID: inv.LineItems[0].ID, ReturnQuantity: 1, ReasonCode: domain.ReturnReasonOther,
		}}, tax.ReversalOptions{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("nil_invoice", func(t *testing.T) {
		_, err := tax.ReverseInvoice(nil, nil, tax.ReversalOptions{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestReverseInvoice_InvalidState(t *testing.T) {
	for _, status := range []domain.InvoiceStatus{domain.InvoiceStatusCancelled, domain.InvoiceStatusDraft} {
		t.Run(string(status), func(t *testing.T) {
			inv := issuedInvoice(t, domain.SupplyIntraState, scenarioALine())
			inv.Status = status
			_, err := tax.ReverseInvoice(inv, []tax.ReturnRequest{{
				OriginalLineItemID: inv.LineItems[0].ID, ReturnQuantity: 1, ReasonCode: domain.ReturnReasonOther,
			}}, tax.ReversalOptions{})
			assert.ErrorIs(t, err, domain.ErrInvalidState)
			var se *domain.InvalidStateError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, string(status), se.Status)
		})
	}
}
