package mocks

import (
	"context"
)

// MockTransactor runs fn directly. Calls counts invocations of WithinTx.
type MockTransactor struct {
	Calls int
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}
