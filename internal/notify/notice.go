// Package notify renders and delivers compliance review notices.
package notify

import (
	"fmt"
	"strings"

	"pharmapos/internal/port"
)

// Render builds the subject and plain-text body of a review notice.
func Render(n port.ReviewNotice) (subject, body string) {
	subject = fmt.Sprintf("GST rate review: %s %s (%d line(s))", kindLabel(n), n.Number, len(n.Warnings))

	var b strings.Builder
	fmt.Fprintf(&b, "Seller GSTIN: %s\n", n.SellerGSTIN)
	fmt.Fprintf(&b, "Document: %s %s (%s)\n\n", kindLabel(n), n.Number, n.DocumentID)
	b.WriteString("The following lines were taxed at a fallback rate and need review:\n")
	for _, w := range n.Warnings {
		hsn := "-"
		if w.HSNCode != nil {
			hsn = *w.HSNCode
		}
		fmt.Fprintf(&b, "  line %d  HSN %s  [%s] %s\n", w.LineNo, hsn, w.Source, w.Message)
	}
	return subject, b.String()
}

func kindLabel(n port.ReviewNotice) string {
	return strings.ReplaceAll(strings.ToLower(string(n.Kind)), "_", " ")
}
