package tax

import (
	"regexp"
	"strconv"
	"strings"

	"pharmapos/internal/domain"
)

var gstinPattern = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// SupplyParties identifies the parties of one invoice for classification.
type SupplyParties struct {
	SellerStateCode string
	BuyerStateCode  *string
	Policy          domain.PlaceOfSupplyPolicy
}

// SupplyDecision is the regime chosen for an invoice and the state code
// recorded as its place of supply.
type SupplyDecision struct {
	Type                   domain.SupplyType
	PlaceOfSupplyStateCode string
}

// ClassifySupply decides once per invoice whether CGST+SGST or IGST applies.
// Without a buyer state (walk-in B2C) the supply is intra-state. Under the
// STORE_STATE policy the place of supply is always the seller's state.
func ClassifySupply(p SupplyParties) SupplyDecision {
	seller := strings.TrimSpace(p.SellerStateCode)
	intra := SupplyDecision{Type: domain.SupplyIntraState, PlaceOfSupplyStateCode: seller}

	if p.Policy == domain.PlaceOfSupplyStoreState || p.BuyerStateCode == nil {
		return intra
	}
	buyer := strings.TrimSpace(*p.BuyerStateCode)
	if buyer == "" || buyer == seller {
		return intra
	}
	return SupplyDecision{Type: domain.SupplyInterState, PlaceOfSupplyStateCode: buyer}
}

// ValidStateCode reports whether code is a 2-digit GST state code (01-38, 97, 99).
func ValidStateCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return false
	}
	return (n >= 1 && n <= 38) || n == 97 || n == 99
}

// ValidGSTIN reports whether gstin has the 15-character GSTIN shape.
func ValidGSTIN(gstin string) bool {
	return gstinPattern.MatchString(gstin)
}

// StateCodeFromGSTIN returns the state code embedded in the first two
// characters of a GSTIN.
func StateCodeFromGSTIN(gstin string) (string, bool) {
	if !ValidGSTIN(gstin) {
		return "", false
	}
	return gstin[:2], true
}
