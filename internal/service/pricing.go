package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pharmapos/internal/domain"
	"pharmapos/internal/metrics"
	"pharmapos/internal/port"
	"pharmapos/internal/tax"
)

// LineItemInput is the DTO for one priced line of a quote or invoice.
type LineItemInput struct {
	ProductID       *uuid.UUID       `json:"product_id"`
	BatchID         *uuid.UUID       `json:"batch_id"`
	Description     string           `json:"description"`
	HSNCodeOverride *string          `json:"hsn_code_override"`
	GSTRateOverride *decimal.Decimal `json:"gst_rate_override"`
	IsTaxExempt     bool             `json:"is_tax_exempt"`
	UnitPricePaise  domain.Paise     `json:"unit_price_paise"`
	Quantity        int64            `json:"quantity" binding:"required"`
	DiscountPaise   *domain.Paise    `json:"discount_paise"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

// PartyInput identifies seller and buyer of a supply.
type PartyInput struct {
	SellerGSTINID       uuid.UUID                  `json:"seller_gstin_id" binding:"required"`
	BuyerName           string                     `json:"buyer_name"`
	BuyerGSTIN          *string                    `json:"buyer_gstin"`
	BuyerStateCode      *string                    `json:"buyer_state_code"`
	PlaceOfSupplyPolicy domain.PlaceOfSupplyPolicy `json:"place_of_supply_policy"`
}

// computation is the priced, taxed and aggregated form of a set of lines.
type computation struct {
	party    PartyInput
	supply   tax.SupplyDecision
	lines    []domain.InvoiceLineItem
	totals   domain.InvoiceTotals
	warnings []domain.RateWarning
}

// pricer runs resolve, classify, calculate and aggregate over caller lines.
// It is the only place that reads master data on behalf of the tax core.
type pricer struct {
	catalog port.CatalogRepository
	rates   *RateCatalog
	metrics *metrics.Metrics
}

func (p *pricer) compute(ctx context.Context, seller *domain.SellerGSTIN, party PartyInput, lines []LineItemInput) (*computation, error) {
	if len(lines) == 0 {
		return nil, domain.NewValidationError("lines", "at least one line is required")
	}
	party, err := normalizeParty(party)
	if err != nil {
		return nil, err
	}

	products, batches, err := p.loadCatalog(ctx, lines)
	if err != nil {
		return nil, err
	}
	resolver, err := p.rates.Resolver(ctx)
	if err != nil {
		return nil, err
	}

	decision := tax.ClassifySupply(tax.SupplyParties{
		SellerStateCode: seller.StateCode,
		BuyerStateCode:  party.BuyerStateCode,
		Policy:          party.PlaceOfSupplyPolicy,
	})

	out := &computation{
		party:  party,
		supply: decision,
		lines:  make([]domain.InvoiceLineItem, 0, len(lines)),
	}
	results := make([]domain.LineTaxResult, 0, len(lines))
	for i := range lines {
		in := &lines[i]
		rateIn := tax.RateInput{
			HSNCodeOverride: in.HSNCodeOverride,
			GSTRateOverride: in.GSTRateOverride,
			IsTaxExempt:     in.IsTaxExempt,
		}
		if in.ProductID != nil {
			prod, ok := products[*in.ProductID]
			if !ok {
				return nil, domain.NewValidationError(lineField(i, "product_id"), "product %s not found", *in.ProductID)
			}
			rateIn.Product = &prod
		}
		if in.BatchID != nil {
			b, ok := batches[*in.BatchID]
			if !ok {
				return nil, domain.NewValidationError(lineField(i, "batch_id"), "batch %s not found", *in.BatchID)
			}
			if in.ProductID == nil || b.ProductID != *in.ProductID {
				return nil, domain.NewValidationError(lineField(i, "batch_id"), "batch %s does not belong to the line's product", b.ID)
			}
			rateIn.Batch = &b
		}

		res := resolver.Resolve(rateIn)
		p.metrics.RateResolved(res.Rate.Source)

		lt, err := tax.CalculateLine(tax.LineInput{
			UnitPricePaise:  in.UnitPricePaise,
			Quantity:        in.Quantity,
			DiscountPaise:   in.DiscountPaise,
			DiscountPercent: in.DiscountPercent,
			Rate:            res.Rate,
			Supply:          decision.Type,
		})
		if err != nil {
			return nil, prefixLineError(i, err)
		}
		results = append(results, lt)

		item := domain.InvoiceLineItem{
			LineNo:          i + 1,
			ProductID:       in.ProductID,
			BatchID:         in.BatchID,
			Description:     lineDescription(in, rateIn.Product),
			UnitPricePaise:  in.UnitPricePaise,
			Quantity:        in.Quantity,
			DiscountPercent: in.DiscountPercent,
			IsTaxExempt:     in.IsTaxExempt,
			HSNCodeOverride: in.HSNCodeOverride,
			GSTRateOverride: in.GSTRateOverride,
			RateSource:      res.Rate.Source,
			NeedsReview:     res.Rate.Source.NeedsReview(),
			LineTaxResult:   lt,
		}
		if in.DiscountPaise != nil && in.DiscountPercent == nil {
			item.DiscountPaise = *in.DiscountPaise
		}
		out.lines = append(out.lines, item)

		if res.Warning != nil {
			w := *res.Warning
			w.LineNo = i + 1
			out.warnings = append(out.warnings, w)
		}
	}

	totals, err := tax.AggregateInvoice(results, decision.Type)
	if err != nil {
		return nil, fmt.Errorf("aggregating invoice: %w", err)
	}
	out.totals = totals
	return out, nil
}

func (p *pricer) loadCatalog(ctx context.Context, lines []LineItemInput) (map[uuid.UUID]domain.Product, map[uuid.UUID]domain.Batch, error) {
	var productIDs, batchIDs []uuid.UUID
	for i := range lines {
		if lines[i].ProductID != nil {
			productIDs = append(productIDs, *lines[i].ProductID)
		}
		if lines[i].BatchID != nil {
			batchIDs = append(batchIDs, *lines[i].BatchID)
		}
	}

	products := map[uuid.UUID]domain.Product{}
	batches := map[uuid.UUID]domain.Batch{}
	var err error
	if len(productIDs) > 0 {
		if products, err = p.catalog.GetProducts(ctx, productIDs); err != nil {
			return nil, nil, fmt.Errorf("loading products: %w", err)
		}
	}
	if len(batchIDs) > 0 {
		if batches, err = p.catalog.GetBatches(ctx, batchIDs); err != nil {
			return nil, nil, fmt.Errorf("loading batches: %w", err)
		}
	}
	return products, batches, nil
}

// normalizeParty validates buyer identity and derives the buyer state from
// the GSTIN when only the GSTIN is given.
func normalizeParty(p PartyInput) (PartyInput, error) {
	if p.PlaceOfSupplyPolicy == "" {
		p.PlaceOfSupplyPolicy = domain.PlaceOfSupplyCustomerState
	}
	if p.PlaceOfSupplyPolicy != domain.PlaceOfSupplyCustomerState && p.PlaceOfSupplyPolicy != domain.PlaceOfSupplyStoreState {
		return p, domain.NewValidationError("place_of_supply_policy", "unknown policy %q", p.PlaceOfSupplyPolicy)
	}

	p.BuyerGSTIN = trimmedOrNil(p.BuyerGSTIN)
	p.BuyerStateCode = trimmedOrNil(p.BuyerStateCode)

	if p.BuyerStateCode != nil && !tax.ValidStateCode(*p.BuyerStateCode) {
		return p, domain.NewValidationError("buyer_state_code", "invalid state code %q", *p.BuyerStateCode)
	}
	if p.BuyerGSTIN != nil {
		gstin := strings.ToUpper(*p.BuyerGSTIN)
		p.BuyerGSTIN = &gstin
		state, ok := tax.StateCodeFromGSTIN(gstin)
		if !ok {
			return p, domain.NewValidationError("buyer_gstin", "invalid GSTIN %q", gstin)
		}
		switch {
		case p.BuyerStateCode == nil:
			p.BuyerStateCode = &state
		case *p.BuyerStateCode != state:
			return p, domain.NewValidationError("buyer_state_code",
				"state code %s does not match GSTIN state %s", *p.BuyerStateCode, state)
		}
	}
	return p, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func lineDescription(in *LineItemInput, prod *domain.Product) string {
	if in.Description != "" || prod == nil {
		return in.Description
	}
	return prod.Name
}

func lineField(i int, field string) string {
	return fmt.Sprintf("lines[%d].%s", i, field)
}

func prefixLineError(i int, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return &domain.ValidationError{Field: lineField(i, ve.Field), Message: ve.Message}
	}
	return fmt.Errorf("line %d: %w", i+1, err)
}

// lineInputsFrom rebuilds caller inputs from stored draft lines.
func lineInputsFrom(items []domain.InvoiceLineItem) []LineItemInput {
	out := make([]LineItemInput, len(items))
	for i := range items {
		it := &items[i]
		out[i] = LineItemInput{
			ProductID:       it.ProductID,
			BatchID:         it.BatchID,
			Description:     it.Description,
			HSNCodeOverride: it.HSNCodeOverride,
			GSTRateOverride: it.GSTRateOverride,
			IsTaxExempt:     it.IsTaxExempt,
			UnitPricePaise:  it.UnitPricePaise,
			Quantity:        it.Quantity,
			DiscountPercent: it.DiscountPercent,
		}
		if it.DiscountPercent == nil && it.DiscountPaise != 0 {
			d := it.DiscountPaise
			out[i].DiscountPaise = &d
		}
	}
	return out
}
