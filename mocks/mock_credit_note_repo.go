package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pharmapos/internal/domain"
)

// MockCreditNoteRepo is a mock implementation of port.CreditNoteRepository.
type MockCreditNoteRepo struct {
	mock.Mock
}

func (m *MockCreditNoteRepo) Create(ctx context.Context, cn *domain.CreditNote) error {
	args := m.Called(ctx, cn)
	return args.Error(0)
}

func (m *MockCreditNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.CreditNote, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditNote), args.Error(1)
}
