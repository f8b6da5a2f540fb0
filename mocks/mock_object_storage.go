package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"pharmapos/internal/port"
)

// MockObjectStorage is a mock implementation of port.ObjectStorage.
// Upload drains the body into Uploaded so tests can inspect what was sent.
type MockObjectStorage struct {
	mock.Mock
	Uploaded map[string][]byte
}

func (m *MockObjectStorage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if input.Body != nil {
		body, _ := io.ReadAll(input.Body)
		if m.Uploaded == nil {
			m.Uploaded = map[string][]byte{}
		}
		m.Uploaded[input.Key] = body
		input.Body = nil
	}
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.UploadOutput), args.Error(1)
}
