package port

import (
	"context"

	"github.com/google/uuid"

	"pharmapos/internal/domain"
)

// SequenceAllocator hands out strictly increasing document sequence numbers
// scoped to (seller GSTIN, document kind, "YYYY-MM" period).
type SequenceAllocator interface {
	Next(ctx context.Context, sellerGSTINID uuid.UUID, kind domain.DocumentKind, period string) (int64, error)
}

// Transactor runs fn inside one database transaction. Repositories called
// with the ctx passed to fn take part in it. A non-nil error rolls back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
