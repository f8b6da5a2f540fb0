package tax_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmapos/internal/domain"
	"pharmapos/internal/tax"
)

func TestAggregateInvoice_RoundsToRupee(t *testing.T) {
	lineA, err := tax.CalculateLine(tax.LineInput{
		UnitPricePaise: 3000,
		Quantity:       2,
		Rate:           rate(12, domain.PricingExclusive),
		Supply:         domain.SupplyIntraState,
	})
	require.NoError(t, err)

	exempt, err := tax.CalculateLine(tax.LineInput{
		UnitPricePaise: 1000,
		Quantity:       1,
		Rate:           tax.TaxRate{RatePercent: decimal.Zero, Convention: domain.PricingExclusive, Source: domain.RateSourceExempt},
		Supply:         domain.SupplyIntraState,
	})
	require.NoError(t, err)

	totals, err := tax.AggregateInvoice([]domain.LineTaxResult{lineA, exempt}, domain.SupplyIntraState)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceTotals{
		TotalTaxablePaise: 7000,
		TotalCGSTPaise:    360,
		TotalSGSTPaise:    360,
		TotalIGSTPaise:    0,
		TotalGSTPaise:     720,
		RoundOffPaise:     -20,
		GrandTotalPaise:   7700,
	}, totals)
	assert.Equal(t, "77.00", totals.GrandTotalPaise.String())
}

func TestAggregate_WithoutRoundOff(t *testing.T) {
	lines := []domain.LineTaxResult{{TaxableValuePaise: 3000, CGSTPaise: 180, SGSTPaise: 180, TotalGSTPaise: 360, LineTotalPaise: 3360}}

	totals, err := tax.Aggregate(lines, domain.SupplyIntraState, false)
	require.NoError(t, err)
	assert.Equal(t, domain.Paise(3360), totals.GrandTotalPaise)
	assert.Equal(t, domain.Paise(0), totals.RoundOffPaise)
}

func TestAggregate_Empty(t *testing.T) {
	totals, err := tax.AggregateInvoice(nil, domain.SupplyInterState)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceTotals{}, totals)
}

func TestAggregate_RejectsMixedRegime(t *testing.T) {
	t.Run("igst_on_intra", func(t *testing.T) {
		lines := []domain.LineTaxResult{{TaxableValuePaise: 100, IGSTPaise: 12, TotalGSTPaise: 12}}
		_, err := tax.AggregateInvoice(lines, domain.SupplyIntraState)
		assert.ErrorIs(t, err, domain.ErrMixedSupplyRegime)
	})

	t.Run("cgst_on_inter", func(t *testing.T) {
		lines := []domain.LineTaxResult{{TaxableValuePaise: 100, CGSTPaise: 6, SGSTPaise: 6, TotalGSTPaise: 12}}
		_, err := tax.AggregateInvoice(lines, domain.SupplyInterState)
		assert.ErrorIs(t, err, domain.ErrMixedSupplyRegime)
	})

	t.Run("components_do_not_sum", func(t *testing.T) {
		lines := []domain.LineTaxResult{{TaxableValuePaise: 100, CGSTPaise: 6, SGSTPaise: 5, TotalGSTPaise: 12}}
		_, err := tax.AggregateInvoice(lines, domain.SupplyIntraState)
		assert.ErrorIs(t, err, domain.ErrMixedSupplyRegime)
	})

	t.Run("unknown_supply", func(t *testing.T) {
		lines := []domain.LineTaxResult{{TaxableValuePaise: 100}}
		_, err := tax.AggregateInvoice(lines, "EXPORT")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestNearestRupee(t *testing.T) {
	tests := []struct {
		in, want domain.Paise
	}{
		{0, 0},
		{7720, 7700},
		{7749, 7700},
		{7750, 7800},
		{7751, 7800},
		{99, 100},
		{-7750, -7800},
		{-7749, -7700},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tax.NearestRupee(tt.in), "in=%d", tt.in)
	}
}

func TestAggregate_RejectsTotalsBeyondInt64(t *testing.T) {
	big := domain.LineTaxResult{TaxableValuePaise: 1 << 62, IGSTPaise: 1 << 60, TotalGSTPaise: 1 << 60}

	t.Run("taxable_sum", func(t *testing.T) {
		_, err := tax.AggregateInvoice([]domain.LineTaxResult{big, big}, domain.SupplyInterState)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("taxable_plus_gst", func(t *testing.T) {
		line := domain.LineTaxResult{TaxableValuePaise: math.MaxInt64 - 100, IGSTPaise: 200, TotalGSTPaise: 200}
		_, err := tax.AggregateInvoice([]domain.LineTaxResult{line}, domain.SupplyInterState)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("no_room_to_round_up", func(t *testing.T) {
		line := domain.LineTaxResult{TaxableValuePaise: math.MaxInt64 - 10}
		_, err := tax.AggregateInvoice([]domain.LineTaxResult{line}, domain.SupplyInterState)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
