package port

import (
	"context"

	"github.com/google/uuid"

	"pharmapos/internal/domain"
)

// CatalogRepository reads the tax-relevant snapshot of products and batches.
// Missing IDs are simply absent from the returned maps.
type CatalogRepository interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error)
	GetBatches(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Batch, error)
}

// SellerRepository reads registered seller GSTINs.
type SellerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SellerGSTIN, error)
}
