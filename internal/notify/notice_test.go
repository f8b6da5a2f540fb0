package notify_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"pharmapos/internal/domain"
	"pharmapos/internal/notify"
	"pharmapos/internal/port"
)

func TestRender(t *testing.T) {
	hsn := "9999"
	id := uuid.MustParse("0b7b1f5e-2c55-4a53-9d7e-6f0f4e2f4a10")
	subject, body := notify.Render(port.ReviewNotice{
		Kind:        domain.DocumentKindInvoice,
		DocumentID:  id,
		Number:      "INV/2025-03/0007",
		SellerGSTIN: "29ABCDE1234F1Z5",
		Warnings: []domain.RateWarning{
			{LineNo: 2, Source: domain.RateSourceDefault, HSNCode: &hsn, Message: "no rate found for HSN 9999, defaulted to 12% GST"},
			{LineNo: 3, Source: domain.RateSourceCaller, Message: "HSN missing, used caller-supplied 5% GST"},
		},
	})

	assert.Equal(t, "GST rate review: invoice INV/2025-03/0007 (2 line(s))", subject)
	assert.Contains(t, body, "Seller GSTIN: 29ABCDE1234F1Z5")
	assert.Contains(t, body, "line 2  HSN 9999  [SYSTEM_DEFAULT] no rate found for HSN 9999, defaulted to 12% GST")
	assert.Contains(t, body, "line 3  HSN -  [CALLER_OVERRIDE] HSN missing, used caller-supplied 5% GST")
	assert.Contains(t, body, id.String())
}
