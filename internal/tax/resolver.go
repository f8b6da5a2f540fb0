package tax

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pharmapos/internal/domain"
)

// TaxRate is the immutable rate snapshot applied to a line.
type TaxRate struct {
	HSNCode     *string
	RatePercent decimal.Decimal
	Convention  domain.PricingConvention
	Source      domain.RateSource
}

// RateInput carries the tax-relevant fields of one line plus the product and
// batch snapshots the caller already fetched.
type RateInput struct {
	HSNCodeOverride *string
	GSTRateOverride *decimal.Decimal
	IsTaxExempt     bool
	Product         *domain.Product
	Batch           *domain.Batch
}

// EffectiveHSN returns the line's HSN override, else the product's HSN code.
func (in *RateInput) EffectiveHSN() *string {
	if in.HSNCodeOverride != nil {
		if code := strings.TrimSpace(*in.HSNCodeOverride); code != "" {
			return &code
		}
	}
	if in.Product != nil && in.Product.HSNCode != nil {
		if code := strings.TrimSpace(*in.Product.HSNCode); code != "" {
			return &code
		}
	}
	return nil
}

// Resolution is the outcome of rate resolution. Warning is set when the rate
// came from a fallback rule and the line should be reviewed by compliance.
type Resolution struct {
	Rate    TaxRate
	Warning *domain.RateWarning
}

// Defaults is the system fallback applied when no rule matches.
type Defaults struct {
	RatePercent decimal.Decimal
	Convention  domain.PricingConvention
}

// StandardDefaults is 12% EXCLUSIVE.
var StandardDefaults = Defaults{RatePercent: decimal.NewFromInt(12), Convention: domain.PricingExclusive}

// RateRule is one step of the precedence chain.
type RateRule interface {
	Source() domain.RateSource
	Rate(in *RateInput) (decimal.Decimal, bool)
}

type exemptRule struct{}

func (exemptRule) Source() domain.RateSource { return domain.RateSourceExempt }

func (exemptRule) Rate(in *RateInput) (decimal.Decimal, bool) {
	return decimal.Zero, in.IsTaxExempt
}

type batchRule struct{}

func (batchRule) Source() domain.RateSource { return domain.RateSourceBatch }

func (batchRule) Rate(in *RateInput) (decimal.Decimal, bool) {
	if in.Batch == nil || in.Batch.SaleGSTRateOverride == nil {
		return decimal.Zero, false
	}
	return nonNegative(*in.Batch.SaleGSTRateOverride)
}

type productRule struct{}

func (productRule) Source() domain.RateSource { return domain.RateSourceProduct }

func (productRule) Rate(in *RateInput) (decimal.Decimal, bool) {
	if in.Product == nil || in.Product.GSTRate == nil {
		return decimal.Zero, false
	}
	return nonNegative(*in.Product.GSTRate)
}

type hsnRule struct {
	lookup *HSNLookup
}

func (hsnRule) Source() domain.RateSource { return domain.RateSourceHSN }

func (r hsnRule) Rate(in *RateInput) (decimal.Decimal, bool) {
	code := in.EffectiveHSN()
	if code == nil {
		return decimal.Zero, false
	}
	entry, ok := r.lookup.Lookup(*code)
	if !ok {
		return decimal.Zero, false
	}
	return nonNegative(entry.DefaultGSTRate)
}

type callerRule struct{}

func (callerRule) Source() domain.RateSource { return domain.RateSourceCaller }

func (callerRule) Rate(in *RateInput) (decimal.Decimal, bool) {
	if in.GSTRateOverride == nil || !in.GSTRateOverride.IsPositive() {
		return decimal.Zero, false
	}
	return *in.GSTRateOverride, true
}

func nonNegative(d decimal.Decimal) (decimal.Decimal, bool) {
	if d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// Resolver resolves the effective GST rate of a line by trying an ordered
// chain of rules; the first match wins:
//
//	exempt → batch override → product rate → HSN master → caller override → system default
type Resolver struct {
	rules    []RateRule
	hsn      *HSNLookup
	defaults Defaults
}

// NewResolver creates a Resolver over an HSN master snapshot.
func NewResolver(hsn *HSNLookup, defaults Defaults) *Resolver {
	if hsn == nil {
		hsn = NewHSNLookup(nil)
	}
	if !defaults.Convention.Valid() {
		defaults.Convention = domain.PricingExclusive
	}
	return &Resolver{
		rules: []RateRule{
			exemptRule{},
			batchRule{},
			productRule{},
			hsnRule{lookup: hsn},
			callerRule{},
		},
		hsn:      hsn,
		defaults: defaults,
	}
}

// Chain returns the sources of the rule chain in precedence order.
func (r *Resolver) Chain() []domain.RateSource {
	out := make([]domain.RateSource, 0, len(r.rules)+1)
	for _, rule := range r.rules {
		out = append(out, rule.Source())
	}
	return append(out, domain.RateSourceDefault)
}

// Resolve never fails: when no rule matches it falls back to the system
// default and attaches a warning.
func (r *Resolver) Resolve(in RateInput) Resolution {
	hsnCode := in.EffectiveHSN()
	for _, rule := range r.rules {
		rate, ok := rule.Rate(&in)
		if !ok {
			continue
		}
		res := Resolution{Rate: TaxRate{
			HSNCode:     hsnCode,
			RatePercent: rate,
			Convention:  r.convention(&in, rule.Source()),
			Source:      rule.Source(),
		}}
		if rule.Source().NeedsReview() {
			res.Warning = &domain.RateWarning{
				Source:  rule.Source(),
				HSNCode: hsnCode,
				Message: fmt.Sprintf("%s, used caller-supplied %s%% GST", missingRateReason(hsnCode), rate.String()),
			}
		}
		return res
	}

	return Resolution{
		Rate: TaxRate{
			HSNCode:     hsnCode,
			RatePercent: r.defaults.RatePercent,
			Convention:  r.defaults.Convention,
			Source:      domain.RateSourceDefault,
		},
		Warning: &domain.RateWarning{
			Source:  domain.RateSourceDefault,
			HSNCode: hsnCode,
			Message: fmt.Sprintf("%s, defaulted to %s%% GST", missingRateReason(hsnCode), r.defaults.RatePercent.String()),
		},
	}
}

// convention picks the pricing convention for a matched rule. Exempt lines are
// always EXCLUSIVE; otherwise the product's GST type wins over the HSN master's.
func (r *Resolver) convention(in *RateInput, source domain.RateSource) domain.PricingConvention {
	if source == domain.RateSourceExempt {
		return domain.PricingExclusive
	}
	if in.Product != nil && in.Product.GSTType != nil && in.Product.GSTType.Valid() {
		return *in.Product.GSTType
	}
	if code := in.EffectiveHSN(); code != nil {
		if entry, ok := r.hsn.Lookup(*code); ok && entry.GSTType.Valid() {
			return entry.GSTType
		}
	}
	return r.defaults.Convention
}

func missingRateReason(hsnCode *string) string {
	if hsnCode == nil {
		return "HSN missing"
	}
	return fmt.Sprintf("no rate found for HSN %s", *hsnCode)
}
