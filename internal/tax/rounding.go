// Package tax is the GST computation core: rate resolution, supply
// classification, per-line tax, invoice aggregation and credit-note reversal.
//
// Everything in this package is a pure function over caller-supplied
// snapshots. It performs no I/O, holds no locks and is safe for concurrent use.
package tax

import (
	"github.com/shopspring/decimal"

	"pharmapos/internal/domain"
)

var (
	decOne     = decimal.NewFromInt(1)
	decTwo     = decimal.NewFromInt(2)
	decHundred = decimal.NewFromInt(100)
)

// divRoundHalfUp divides num by a positive den and rounds the quotient to an
// integer, halves away from zero. QuoRem keeps the division exact.
func divRoundHalfUp(num, den decimal.Decimal) decimal.Decimal {
	q, r := num.QuoRem(den, 0)
	if r.Abs().Mul(decTwo).Cmp(den) >= 0 {
		if num.Sign() >= 0 {
			return q.Add(decOne)
		}
		return q.Sub(decOne)
	}
	return q
}

func paise(d decimal.Decimal) domain.Paise {
	return domain.Paise(d.IntPart())
}

func dec(p domain.Paise) decimal.Decimal {
	return decimal.NewFromInt(int64(p))
}

// scale returns round(amount × num / den) for den > 0.
func scale(amount domain.Paise, num, den int64) domain.Paise {
	if num == den {
		return amount
	}
	return paise(divRoundHalfUp(dec(amount).Mul(decimal.NewFromInt(num)), decimal.NewFromInt(den)))
}

// NearestRupee rounds an amount to a whole rupee, half-up at the 100-paise boundary.
func NearestRupee(p domain.Paise) domain.Paise {
	v := int64(p)
	if v >= 0 {
		return domain.Paise((v + 50) / 100 * 100)
	}
	return -domain.Paise((-v + 50) / 100 * 100)
}
