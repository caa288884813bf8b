package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"grievancedesk/backend/internal/api/handler"
	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/models"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAdminStore struct {
	mock.Mock
}

func (m *MockAdminStore) ListGrievanceReports(ctx context.Context, userID string) ([]models.GrievanceReport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GrievanceReport), args.Error(1)
}

func (m *MockAdminStore) ListSuspiciousReports(ctx context.Context, userID string) ([]models.SuspiciousReport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SuspiciousReport), args.Error(1)
}

func (m *MockAdminStore) UpdateGrievanceStatus(ctx context.Context, id string, status models.GrievanceStatus) (*models.GrievanceReport, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GrievanceReport), args.Error(1)
}

func (m *MockAdminStore) UpdateSuspiciousStatus(ctx context.Context, id string, status models.SuspiciousStatus) (*models.SuspiciousReport, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SuspiciousReport), args.Error(1)
}

func (m *MockAdminStore) DeleteGrievanceReport(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminStore) DeleteSuspiciousReport(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func run(t *testing.T, store adminStore, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	out := &bytes.Buffer{}
	a := &app{
		cfg: &config.Config{JWTSecret: "secret", JWTIssuer: "grievancedesk", JWTTTL: time.Hour},
		out: out,
		connect: func(context.Context, *config.Config) (adminStore, func(), error) {
			return store, func() {}, nil
		},
	}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSetStatus_Grievance(t *testing.T) {
	store := new(MockAdminStore)
	store.On("UpdateGrievanceStatus", mock.Anything, "g1", models.GrievanceUnderReview).
		Return(&models.GrievanceReport{ID: "g1"}, nil).Once()

	out, err := run(t, store, "set-status", "grievance", "g1", "under_review")

	require.NoError(t, err)
	assert.Contains(t, out, "grievance g1 is now Under Review")
	store.AssertExpectations(t)
}

func TestSetStatus_RejectsInvalidStatus(t *testing.T) {
	store := new(MockAdminStore)

	_, err := run(t, store, "set-status", "suspicious", "s1", "under_review")

	assert.ErrorContains(t, err, "invalid suspicious entity status")
	store.AssertNotCalled(t, "UpdateSuspiciousStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetStatus_UnknownKind(t *testing.T) {
	_, err := run(t, new(MockAdminStore), "set-status", "complaint", "x", "pending")
	assert.ErrorIs(t, err, errUnknownKind)
}

func TestDelete(t *testing.T) {
	store := new(MockAdminStore)
	store.On("DeleteSuspiciousReport", mock.Anything, "s1").Return(nil).Once()
	store.On("DeleteGrievanceReport", mock.Anything, "missing").Return(errors.New("report not found")).Once()

	out, err := run(t, store, "delete", "suspicious", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted suspicious s1")

	_, err = run(t, store, "delete", "grievance", "missing")
	assert.ErrorContains(t, err, "report not found")
}

func TestList(t *testing.T) {
	store := new(MockAdminStore)
	base := time.Date(2025, 3, 4, 14, 30, 0, 0, time.UTC)
	store.On("ListGrievanceReports", mock.Anything, "user-1").Return([]models.GrievanceReport{
		{ID: "g1", Title: "Phishing email", Status: models.GrievancePending, CreatedAt: base},
	}, nil).Once()
	store.On("ListSuspiciousReports", mock.Anything, "user-1").Return([]models.SuspiciousReport{
		{ID: "s1", EntityType: "phone_number", EntityValue: "+1555", Status: models.SuspiciousVerified, CreatedAt: base.Add(time.Hour)},
	}, nil).Once()

	out, err := run(t, store, "list", "user-1")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "s1")
	assert.Contains(t, lines[1], "Verified")
	assert.Contains(t, lines[2], "Phishing email")
}

func TestIssueToken(t *testing.T) {
	const userID = "0b7e3f5c-1111-4000-8000-00000000000a"
	out, err := run(t, new(MockAdminStore), "issue-token", userID)
	require.NoError(t, err)

	user, err := handler.NewAuthenticator("secret", "grievancedesk", time.Hour).ParseToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
}

func TestIssueToken_RejectsNonUUID(t *testing.T) {
	out, err := run(t, new(MockAdminStore), "issue-token", "alice")
	assert.ErrorContains(t, err, "is not a uuid")
	assert.Empty(t, out)
}
