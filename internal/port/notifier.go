package port

import (
	"context"

	"github.com/google/uuid"

	"pharmapos/internal/domain"
)

// ReviewNotice lists the lines of one document whose GST rate came from a
// fallback and needs a compliance check.
type ReviewNotice struct {
	Kind        domain.DocumentKind
	DocumentID  uuid.UUID
	Number      string
	SellerGSTIN string
	Warnings    []domain.RateWarning
}

// ComplianceNotifier delivers rate review notices to the compliance team.
type ComplianceNotifier interface {
	NotifyRateReview(ctx context.Context, notice ReviewNotice) error
}
