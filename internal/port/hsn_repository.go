package port

import (
	"context"

	"pharmapos/internal/domain"
)

// HSNRepository defines the contract for HSN master data access.
type HSNRepository interface {
	LoadAll(ctx context.Context) ([]domain.HSNCode, error)
}
