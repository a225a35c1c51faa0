package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"enrolpulse/internal/dataprocessing"
	"enrolpulse/pkg/contracts/events"
)

// MockWebSocketHub is a mock for the UpdateBroadcaster and ClientCounter interfaces
type MockWebSocketHub struct {
	mock.Mock
}

func (m *MockWebSocketHub) BroadcastDataUpdate(payload events.DataUpdatePayload) {
	m.Called(payload)
}

func (m *MockWebSocketHub) ClientCount() int {
	args := m.Called()
	return args.Int(0)
}

// MockDatasetSource is a mock for the DatasetSource interface
type MockDatasetSource struct {
	mock.Mock
}

func (m *MockDatasetSource) Dataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataprocessing.Dataset), args.Error(1)
}
