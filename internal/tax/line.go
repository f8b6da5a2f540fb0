package tax

import (
	"math"

	"github.com/shopspring/decimal"

	"pharmapos/internal/domain"
)

// LineInput is everything needed to compute tax for one line.
// DiscountPercent takes precedence over DiscountPaise when both are set.
type LineInput struct {
	UnitPricePaise  domain.Paise
	Quantity        int64
	DiscountPaise   *domain.Paise
	DiscountPercent *decimal.Decimal
	Rate            TaxRate
	Supply          domain.SupplyType
}

// CalculateLine computes taxable value, GST split and line total for one line.
// All rounding is half-up on integer paise; the result is deterministic.
func CalculateLine(in LineInput) (domain.LineTaxResult, error) {
	if err := validateLineInput(&in); err != nil {
		return domain.LineTaxResult{}, err
	}

	gross := in.UnitPricePaise * domain.Paise(in.Quantity)

	var discount domain.Paise
	switch {
	case in.DiscountPercent != nil:
		discount = paise(divRoundHalfUp(dec(gross).Mul(*in.DiscountPercent), decHundred))
	case in.DiscountPaise != nil:
		discount = *in.DiscountPaise
	}

	net := gross - discount
	if net < 0 {
		return domain.LineTaxResult{}, domain.NewValidationError("discount", "discount %s exceeds gross amount %s", discount, gross)
	}

	rate := in.Rate.RatePercent
	taxable := net
	if in.Rate.Convention == domain.PricingInclusive {
		taxable = paise(divRoundHalfUp(dec(net).Mul(decHundred), decHundred.Add(rate)))
	}
	totalGST := paise(divRoundHalfUp(dec(taxable).Mul(rate), decHundred))

	res := domain.LineTaxResult{
		TaxableValuePaise: taxable,
		TotalGSTPaise:     totalGST,
		HSNCode:           in.Rate.HSNCode,
		GSTRatePercent:    rate,
		Convention:        in.Rate.Convention,
	}
	res.CGSTPaise, res.SGSTPaise, res.IGSTPaise = SplitGST(totalGST, in.Supply)

	if in.Rate.Convention == domain.PricingInclusive {
		res.LineTotalPaise = net
	} else {
		res.LineTotalPaise = taxable + totalGST
	}
	return res, nil
}

// SplitGST divides total GST by regime. Intra-state gives CGST the rounded
// half and SGST the remainder, so CGST+SGST always equals the total.
func SplitGST(totalGST domain.Paise, supply domain.SupplyType) (cgst, sgst, igst domain.Paise) {
	if supply == domain.SupplyInterState {
		return 0, 0, totalGST
	}
	cgst = paise(divRoundHalfUp(dec(totalGST), decTwo))
	return cgst, totalGST - cgst, 0
}

var maxPaise = decimal.NewFromInt(math.MaxInt64)

func validateLineInput(in *LineInput) error {
	if in.Quantity <= 0 {
		return domain.NewValidationError("quantity", "must be greater than zero, got %d", in.Quantity)
	}
	if in.UnitPricePaise < 0 {
		return domain.NewValidationError("unit_price_paise", "must not be negative")
	}
	if in.DiscountPercent != nil {
		if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(decHundred) {
			return domain.NewValidationError("discount_percent", "must be between 0 and 100, got %s", in.DiscountPercent.String())
		}
	} else if in.DiscountPaise != nil && *in.DiscountPaise < 0 {
		return domain.NewValidationError("discount_paise", "must not be negative")
	}
	if in.Rate.RatePercent.IsNegative() {
		return domain.NewValidationError("gst_rate", "must not be negative")
	}
	// gross and an exclusive add-on must both fit in int64 paise
	ceiling := dec(in.UnitPricePaise).Mul(decimal.NewFromInt(in.Quantity)).
		Mul(decHundred.Add(in.Rate.RatePercent)).Div(decHundred)
	if ceiling.GreaterThan(maxPaise) {
		return domain.NewValidationError("unit_price_paise", "line amount %s x %d exceeds the supported range", in.UnitPricePaise, in.Quantity)
	}
	if !in.Rate.Convention.Valid() {
		return domain.NewValidationError("pricing_convention", "unknown convention %q", in.Rate.Convention)
	}
	if in.Supply != domain.SupplyIntraState && in.Supply != domain.SupplyInterState {
		return domain.NewValidationError("supply_type", "unknown supply type %q", in.Supply)
	}
	return nil
}
