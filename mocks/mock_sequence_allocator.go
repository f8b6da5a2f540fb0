package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pharmapos/internal/domain"
)

// MockSequenceAllocator is a mock implementation of port.SequenceAllocator.
type MockSequenceAllocator struct {
	mock.Mock
}

func (m *MockSequenceAllocator) Next(ctx context.Context, sellerGSTINID uuid.UUID, kind domain.DocumentKind, period string) (int64, error) {
	args := m.Called(ctx, sellerGSTINID, kind, period)
	return args.Get(0).(int64), args.Error(1)
}
