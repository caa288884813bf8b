package handler_test

import (
	"context"
	"io"

	"grievancedesk/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

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

// MockBlobStore is a testify mock of reports.BlobStore.
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, objectPath string, body io.Reader) error {
	return m.Called(ctx, objectPath, body).Error(0)
}

func (m *MockBlobStore) PublicURL(objectPath string) string {
	return m.Called(objectPath).String(0)
}

// MockNotifier is a testify mock of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) GrievanceCreated(report *models.GrievanceReport) {
	m.Called(report)
}

func (m *MockNotifier) SuspiciousCreated(report *models.SuspiciousReport) {
	m.Called(report)
}
