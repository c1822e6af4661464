package source

import (
	"context"

	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"
	"github.com/stretchr/testify/mock"
)

// MockValuesSource is a mock implementation of ValuesSource for testing.
type MockValuesSource struct {
	mock.Mock
}

var _ contract.ValuesSource = &MockValuesSource{} // Compile-time check

// Load implements the ValuesSource interface.
func (m *MockValuesSource) Load(ctx context.Context) ([]schema.IndicatorRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.IndicatorRecord)
	return records, args.Error(1)
}

// Describe implements the ValuesSource interface.
func (m *MockValuesSource) Describe() string {
	args := m.Called()
	return args.String(0)
}

// Close implements the ValuesSource interface.
func (m *MockValuesSource) Close() error {
	args := m.Called()
	return args.Error(0)
}
