package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pharmapos/internal/domain"
	"pharmapos/internal/service"
)

// MockCreditNoteService is a mock implementation of service.CreditNoteService.
type MockCreditNoteService struct {
	mock.Mock
}

func (m *MockCreditNoteService) Create(ctx context.Context, invoiceID uuid.UUID, input service.CreateCreditNoteInput) (*domain.CreditNote, error) {
	args := m.Called(ctx, invoiceID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditNote), args.Error(1)
}

func (m *MockCreditNoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditNote), args.Error(1)
}

func (m *MockCreditNoteService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.CreditNote, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditNote), args.Error(1)
}
