package livefeed_test

import (
	"context"
	"sync/atomic"

	"grievancedesk/backend/internal/livefeed"
	"grievancedesk/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	userID      string
	RecvChannel chan livefeed.Frame
	closed      atomic.Bool
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID:      userID,
		RecvChannel: make(chan livefeed.Frame, 32),
	}
}

func (c *MockClient) GetUserID() string                     { return c.userID }
func (c *MockClient) GetSendChannel() chan<- livefeed.Frame { return c.RecvChannel }
func (c *MockClient) Run()                                  {}
func (c *MockClient) Close()                                { c.closed.Store(true) }

// MockStorage is a testify mock of storage.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) ListGrievanceReports(ctx context.Context, userID string) ([]models.GrievanceReport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GrievanceReport), args.Error(1)
}

func (m *MockStorage) ListSuspiciousReports(ctx context.Context, userID string) ([]models.SuspiciousReport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SuspiciousReport), args.Error(1)
}

func (m *MockStorage) CreateGrievanceReport(ctx context.Context, report *models.GrievanceReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *MockStorage) CreateSuspiciousReport(ctx context.Context, report *models.SuspiciousReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *MockStorage) SubscribeGrievanceReports(ctx context.Context, userID string) (<-chan models.GrievanceChange, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(chan models.GrievanceChange), args.Error(1)
}

func (m *MockStorage) SubscribeSuspiciousReports(ctx context.Context, userID string) (<-chan models.SuspiciousChange, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(chan models.SuspiciousChange), args.Error(1)
}
