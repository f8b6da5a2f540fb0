package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pharmapos/internal/domain"
)

// MockCatalogRepo is a mock implementation of port.CatalogRepository.
type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]domain.Product), args.Error(1)
}

func (m *MockCatalogRepo) GetBatches(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Batch, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]domain.Batch), args.Error(1)
}

// MockSellerRepo is a mock implementation of port.SellerRepository.
type MockSellerRepo struct {
	mock.Mock
}

func (m *MockSellerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SellerGSTIN, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellerGSTIN), args.Error(1)
}
