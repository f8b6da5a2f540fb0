package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pharmapos/internal/port"
)

// MockComplianceNotifier is a mock implementation of port.ComplianceNotifier.
type MockComplianceNotifier struct {
	mock.Mock
}

func (m *MockComplianceNotifier) NotifyRateReview(ctx context.Context, notice port.ReviewNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}
