package tax

import (
	"fmt"
	"math"

	"pharmapos/internal/domain"
)

// maxRoundOff bounds the rupee round-off; anything larger means a line was
// computed wrongly.
const maxRoundOff domain.Paise = 50

// AggregateInvoice sums line results and rounds the grand total to the nearest rupee.
func AggregateInvoice(lines []domain.LineTaxResult, supply domain.SupplyType) (domain.InvoiceTotals, error) {
	return Aggregate(lines, supply, true)
}

// Aggregate sums line results by plain integer addition. With roundOff set the
// grand total is rounded to the nearest rupee and the difference recorded as
// round-off; otherwise grand total equals taxable plus GST.
func Aggregate(lines []domain.LineTaxResult, supply domain.SupplyType, roundOff bool) (domain.InvoiceTotals, error) {
	var t domain.InvoiceTotals
	for i := range lines {
		l := &lines[i]
		if err := checkLineRegime(i, l, supply); err != nil {
			return domain.InvoiceTotals{}, err
		}
		ok := addPaise(&t.TotalTaxablePaise, l.TaxableValuePaise) &&
			addPaise(&t.TotalCGSTPaise, l.CGSTPaise) &&
			addPaise(&t.TotalSGSTPaise, l.SGSTPaise) &&
			addPaise(&t.TotalIGSTPaise, l.IGSTPaise) &&
			addPaise(&t.TotalGSTPaise, l.TotalGSTPaise)
		if !ok {
			return domain.InvoiceTotals{}, totalsOverflow()
		}
	}

	preliminary := t.TotalTaxablePaise
	// headroom for rounding up to the next rupee
	if !addPaise(&preliminary, t.TotalGSTPaise) || preliminary > math.MaxInt64-maxRoundOff || preliminary < math.MinInt64+maxRoundOff {
		return domain.InvoiceTotals{}, totalsOverflow()
	}
	t.GrandTotalPaise = preliminary
	if roundOff {
		t.GrandTotalPaise = NearestRupee(preliminary)
	}
	t.RoundOffPaise = t.GrandTotalPaise - preliminary

	if t.RoundOffPaise > maxRoundOff || t.RoundOffPaise < -maxRoundOff {
		return domain.InvoiceTotals{}, fmt.Errorf("%w: %d paise", domain.ErrRoundOffOutOfRange, t.RoundOffPaise)
	}
	return t, nil
}

// addPaise adds v to *sum unless the result would leave the int64 range.
func addPaise(sum *domain.Paise, v domain.Paise) bool {
	if (v > 0 && *sum > math.MaxInt64-v) || (v < 0 && *sum < math.MinInt64-v) {
		return false
	}
	*sum += v
	return true
}

func totalsOverflow() error {
	return domain.NewValidationError("lines", "invoice totals exceed the supported range")
}

func checkLineRegime(i int, l *domain.LineTaxResult, supply domain.SupplyType) error {
	if l.CGSTPaise+l.SGSTPaise+l.IGSTPaise != l.TotalGSTPaise {
		return fmt.Errorf("%w: line %d components do not sum to total GST", domain.ErrMixedSupplyRegime, i)
	}
	switch supply {
	case domain.SupplyIntraState:
		if l.IGSTPaise != 0 {
			return fmt.Errorf("%w: line %d carries IGST on an intra-state invoice", domain.ErrMixedSupplyRegime, i)
		}
	case domain.SupplyInterState:
		if l.CGSTPaise != 0 || l.SGSTPaise != 0 {
			return fmt.Errorf("%w: line %d carries CGST/SGST on an inter-state invoice", domain.ErrMixedSupplyRegime, i)
		}
	default:
		return domain.NewValidationError("supply_type", "unknown supply type %q", supply)
	}
	return nil
}
