package tax

import (
	"fmt"

	"github.com/google/uuid"

	"pharmapos/internal/domain"
)

// ReturnRequest asks to credit returnQuantity units of one original invoice line.
type ReturnRequest struct {
	OriginalLineItemID uuid.UUID
	ReturnQuantity     int64
	ReasonCode         domain.ReturnReason
	Remarks            string
}

// ReversalOptions tunes credit-note aggregation.
type ReversalOptions struct {
	ApplyRoundOff bool
}

// Reversal is the computed body of a credit note, not yet numbered or persisted.
type Reversal struct {
	Lines  []domain.CreditNoteLine
	Totals domain.InvoiceTotals
}

// ReverseInvoice computes the tax reversal for returns against an issued invoice.
//
// Amounts are scaled from the original frozen line fields, never from current
// rates. A return of q units against a line of Q units, of which p were already
// credited, reverses round(f×(p+q)/Q) − round(f×p/Q) of each field f, so any
// sequence of partial returns sums to exactly the original once fully returned.
func ReverseInvoice(inv *domain.Invoice, reqs []ReturnRequest, opts ReversalOptions) (*Reversal, error) {
	if inv == nil {
		return nil, domain.NewValidationError("invoice", "is required")
	}
	if inv.Status != domain.InvoiceStatusIssued {
		return nil, domain.NewInvalidStateError("invoice", string(inv.Status), "credit")
	}
	if len(reqs) == 0 {
		return nil, domain.NewValidationError("lines", "at least one return line is required")
	}

	byID := make(map[uuid.UUID]*domain.InvoiceLineItem, len(inv.LineItems))
	credited := make(map[uuid.UUID]int64, len(inv.LineItems))
	for i := range inv.LineItems {
		li := &inv.LineItems[i]
		byID[li.ID] = li
		credited[li.ID] = li.ReturnedQuantity
	}

	out := &Reversal{Lines: make([]domain.CreditNoteLine, 0, len(reqs))}
	taxLines := make([]domain.LineTaxResult, 0, len(reqs))
	for i := range reqs {
		req := &reqs[i]
		field := fmt.Sprintf("lines[%d]", i)

		if req.ReturnQuantity <= 0 {
			return nil, domain.NewValidationError(field+".return_quantity", "must be greater than zero, got %d", req.ReturnQuantity)
		}
		if !domain.ValidReturnReasons[req.ReasonCode] {
			return nil, domain.NewValidationError(field+".reason_code", "unknown reason code %q", req.ReasonCode)
		}
		orig, ok := byID[req.OriginalLineItemID]
		if !ok {
			return nil, domain.NewValidationError(field+".original_line_item_id",
				"line %s does not belong to invoice %s", req.OriginalLineItemID, inv.ID)
		}
		before := credited[orig.ID]
		after := before + req.ReturnQuantity
		if after > orig.Quantity {
			return nil, domain.NewValidationError(field+".return_quantity",
				"return quantity %d exceeds remaining %d of %d", req.ReturnQuantity, orig.Quantity-before, orig.Quantity)
		}
		credited[orig.ID] = after

		lt := reverseLine(&orig.LineTaxResult, orig.Quantity, before, after)
		taxLines = append(taxLines, lt)
		out.Lines = append(out.Lines, domain.CreditNoteLine{
			OriginalLineItemID: orig.ID,
			OriginalQuantity:   orig.Quantity,
			ReturnedQuantity:   req.ReturnQuantity,
			ReasonCode:         req.ReasonCode,
			Remarks:            req.Remarks,
			LineTaxResult:      lt,
		})
	}

	totals, err := Aggregate(taxLines, inv.SupplyType, opts.ApplyRoundOff)
	if err != nil {
		return nil, err
	}
	out.Totals = totals
	return out, nil
}

func reverseLine(orig *domain.LineTaxResult, qty, before, after int64) domain.LineTaxResult {
	share := func(f domain.Paise) domain.Paise {
		return scale(f, after, qty) - scale(f, before, qty)
	}
	lt := domain.LineTaxResult{
		TaxableValuePaise: share(orig.TaxableValuePaise),
		CGSTPaise:         share(orig.CGSTPaise),
		SGSTPaise:         share(orig.SGSTPaise),
		IGSTPaise:         share(orig.IGSTPaise),
		LineTotalPaise:    share(orig.LineTotalPaise),
		HSNCode:           orig.HSNCode,
		GSTRatePercent:    orig.GSTRatePercent,
		Convention:        orig.Convention,
	}
	lt.TotalGSTPaise = lt.CGSTPaise + lt.SGSTPaise + lt.IGSTPaise
	return lt
}
