package submission_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"grievancedesk/backend/internal/localization"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/reports"
	"grievancedesk/backend/internal/submission"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) CreateGrievanceReport(ctx context.Context, in reports.GrievanceInput) (*models.GrievanceReport, error) {
	args := m.Called(ctx, in)
	if rf, ok := args.Get(0).(func(context.Context, reports.GrievanceInput) *models.GrievanceReport); ok {
		return rf(ctx, in), args.Error(1)
	}
	if r := args.Get(0); r != nil {
		return r.(*models.GrievanceReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReporter) UploadFile(ctx context.Context, file models.FileUpload, scopeID string) (string, error) {
	args := m.Called(ctx, file, scopeID)
	return args.String(0), args.Error(1)
}

func fileNamed(name string) models.FileUpload {
	return models.FileUpload{Filename: name, Body: strings.NewReader("data")}
}

func reportFrom(in reports.GrievanceInput) *models.GrievanceReport {
	r := &models.GrievanceReport{
		ID:                "3f2a9c1e-0000-4000-8000-000000000001",
		UserID:            "user-1",
		Title:             in.Title,
		ComplaintCategory: in.ComplaintCategory,
		Subcategory:       in.Subcategory,
		Description:       in.Description,
		Location:          in.Location,
		PriorityLevel:     in.PriorityLevel,
		Status:            models.GrievancePending,
	}
	if len(in.EvidenceFiles) > 0 {
		r.EvidenceFiles = pq.StringArray(in.EvidenceFiles)
	}
	return r
}

func TestSubmit_PhishingExample(t *testing.T) {
	// Arrange
	reporter := new(MockReporter)
	submitter := submission.NewSubmitter(reporter, localization.Default())
	form := submission.Form{
		Title:       "Phishing email",
		Category:    "cybercrime",
		Location:    "Office A",
		Description: "Received an email pretending to be my bank.",
		Priority:    "high",
	}

	var captured reports.GrievanceInput
	reporter.On("CreateGrievanceReport", mock.Anything, mock.AnythingOfType("reports.GrievanceInput")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(reports.GrievanceInput) }).
		Return(func(_ context.Context, in reports.GrievanceInput) *models.GrievanceReport { return reportFrom(in) }, nil).
		Once()

	// Act
	res, err := submitter.Submit(context.Background(), "en", form)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, models.GrievancePending, res.Report.Status)
	assert.Equal(t, "high", *res.Report.PriorityLevel)
	assert.Nil(t, res.Report.EvidenceFiles)
	assert.Nil(t, captured.Subcategory)
	assert.Nil(t, captured.EvidenceFiles)
	assert.Equal(t, "Report Submitted", res.Notice.Title)
	assert.Equal(t, submission.VariantDefault, res.Notice.Variant)
	assert.Equal(t, submission.Form{}, res.Form)
	reporter.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_DefaultsPriorityAndKeepsSubcategory(t *testing.T) {
	reporter := new(MockReporter)
	submitter := submission.NewSubmitter(reporter, localization.Default())

	reporter.On("CreateGrievanceReport", mock.Anything, mock.MatchedBy(func(in reports.GrievanceInput) bool {
		return in.PriorityLevel != nil && *in.PriorityLevel == "medium" &&
			in.Subcategory != nil && *in.Subcategory == "sms"
	})).Return(&models.GrievanceReport{ID: "g1"}, nil).Once()

	_, err := submitter.Submit(context.Background(), "en", submission.Form{
		Title:       "Fraud",
		Category:    "fraud",
		Subcategory: "sms",
	})

	require.NoError(t, err)
	reporter.AssertExpectations(t)
}

func TestSubmit_DropsFailedUploads(t *testing.T) {
	reporter := new(MockReporter)
	submitter := submission.NewSubmitter(reporter, localization.Default())
	files := []models.FileUpload{fileNamed("a.pdf"), fileNamed("b.png"), fileNamed("c.txt")}

	reporter.On("UploadFile", mock.Anything, files[0], mock.AnythingOfType("string")).
		Return("https://files/a.pdf", nil).Once()
	reporter.On("UploadFile", mock.Anything, files[1], mock.AnythingOfType("string")).
		Return("", errors.New("bucket unavailable")).Once()
	reporter.On("UploadFile", mock.Anything, files[2], mock.AnythingOfType("string")).
		Return("https://files/c.txt", nil).Once()

	var captured reports.GrievanceInput
	reporter.On("CreateGrievanceReport", mock.Anything, mock.AnythingOfType("reports.GrievanceInput")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(reports.GrievanceInput) }).
		Return(&models.GrievanceReport{ID: "g1"}, nil).Once()

	_, err := submitter.Submit(context.Background(), "en", submission.Form{Title: "t", Files: files})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://files/a.pdf", "https://files/c.txt"}, captured.EvidenceFiles)

	// one scope id shared by every upload of the submission
	var scopes []string
	for _, call := range reporter.Calls {
		if call.Method == "UploadFile" {
			scopes = append(scopes, call.Arguments.String(2))
		}
	}
	require.Len(t, scopes, 3)
	assert.NotEmpty(t, scopes[0])
	assert.Equal(t, scopes[0], scopes[1])
	assert.Equal(t, scopes[0], scopes[2])
}

func TestSubmit_TwoFilesOneFails(t *testing.T) {
	reporter := new(MockReporter)
	submitter := submission.NewSubmitter(reporter, localization.Default())
	files := []models.FileUpload{fileNamed("a.pdf"), fileNamed("b.png")}

	reporter.On("UploadFile", mock.Anything, files[0], mock.Anything).Return("", errors.New("boom")).Once()
	reporter.On("UploadFile", mock.Anything, files[1], mock.Anything).Return("https://files/b.png", nil).Once()
	reporter.On("CreateGrievanceReport", mock.Anything, mock.MatchedBy(func(in reports.GrievanceInput) bool {
		return len(in.EvidenceFiles) == 1 && in.EvidenceFiles[0] == "https://files/b.png"
	})).Return(&models.GrievanceReport{ID: "g1"}, nil).Once()

	_, err := submitter.Submit(context.Background(), "en", submission.Form{Title: "t", Files: files})

	require.NoError(t, err)
	reporter.AssertExpectations(t)
}

func TestSubmit_AllUploadsFailLeavesEvidenceNil(t *testing.T) {
	reporter := new(MockReporter)
	submitter := submission.NewSubmitter(reporter, localization.Default())

	reporter.On("UploadFile", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("boom"))
	reporter.On("CreateGrievanceReport", mock.Anything, mock.MatchedBy(func(in reports.GrievanceInput) bool {
		return in.EvidenceFiles == nil
	})).Return(&models.GrievanceReport{ID: "g1"}, nil).Once()

	_, err := submitter.Submit(context.Background(), "en", submission.Form{
		Title: "t",
		Files: []models.FileUpload{fileNamed("a.pdf")},
	})

	require.NoError(t, err)
	reporter.AssertExpectations(t)
}

func TestSubmit_Unauthenticated(t *testing.T) {
	reporter := new(MockReporter)
	submitter := submission.NewSubmitter(reporter, localization.Default())
	form := submission.Form{Title: "t", Files: []models.FileUpload{fileNamed("a.pdf")}}

	reporter.On("UploadFile", mock.Anything, mock.Anything, mock.Anything).Return("", reports.ErrUnauthenticated)
	reporter.On("CreateGrievanceReport", mock.Anything, mock.Anything).Return(nil, reports.ErrUnauthenticated).Once()

	res, err := submitter.Submit(context.Background(), "en", form)

	assert.ErrorIs(t, err, reports.ErrUnauthenticated)
	assert.Nil(t, res.Report)
	assert.Equal(t, "Error", res.Notice.Title)
	assert.Equal(t, "You need to sign in to submit a report.", res.Notice.Description)
	assert.Equal(t, submission.VariantDestructive, res.Notice.Variant)
	assert.Equal(t, form.Title, res.Form.Title, "form is kept on failure")
}

func TestSubmit_BackendErrorMessageShown(t *testing.T) {
	reporter := new(MockReporter)
	submitter := submission.NewSubmitter(reporter, localization.Default())
	reporter.On("CreateGrievanceReport", mock.Anything, mock.Anything).
		Return(nil, errors.New("new row violates row-level security policy")).Once()

	res, err := submitter.Submit(context.Background(), "uk", submission.Form{Title: "t"})

	require.Error(t, err)
	assert.Equal(t, "new row violates row-level security policy", res.Notice.Description)
	assert.Equal(t, "Помилка", res.Notice.Title)
}

func TestAccepts(t *testing.T) {
	assert.True(t, submission.Accepts("scan.PDF"))
	assert.True(t, submission.Accepts("photo.png"))
	assert.True(t, submission.Accepts("notes.docx"))
	assert.False(t, submission.Accepts("archive.zip"))
	assert.False(t, submission.Accepts("noext"))
}

func TestBuildList(t *testing.T) {
	created := time.Date(2025, 3, 4, 14, 30, 0, 0, time.UTC)
	critical := "critical"
	unknown := "urgent"

	items := submission.BuildList([]models.GrievanceReport{
		{
			ID:            "3f2a9c1e-1111-4000-8000-000000000001",
			Status:        models.GrievanceUnderReview,
			PriorityLevel: &critical,
			EvidenceFiles: pq.StringArray{"a"},
			CreatedAt:     created,
			UpdatedAt:     created,
		},
		{ID: "short", Status: models.GrievancePending, CreatedAt: created},
		{ID: "other", Status: "archived", PriorityLevel: &unknown, CreatedAt: created},
	})

	require.Len(t, items, 3)

	assert.Equal(t, "3f2a9c1e", items[0].ShortID)
	assert.Equal(t, "Under Review", items[0].StatusLabel)
	assert.Equal(t, "blue", items[0].StatusColor)
	assert.Equal(t, "red", items[0].PriorityColor)
	assert.Equal(t, 60, items[0].Progress)
	assert.Equal(t, "Mar 4, 2025, 02:30 PM", items[0].Submitted)
	assert.Equal(t, 1, items[0].Attachments)

	assert.Equal(t, "short", items[1].ShortID)
	assert.Equal(t, "Pending", items[1].StatusLabel)
	assert.Equal(t, "yellow", items[1].StatusColor)
	assert.Equal(t, "medium", items[1].Priority)
	assert.Equal(t, "yellow", items[1].PriorityColor)
	assert.Equal(t, 25, items[1].Progress)

	assert.Equal(t, "archived", items[2].StatusLabel)
	assert.Equal(t, "gray", items[2].StatusColor)
	assert.Equal(t, "gray", items[2].PriorityColor)
	assert.Zero(t, items[2].Progress)
}

func TestNewListView_Empty(t *testing.T) {
	l := localization.Default()

	view := submission.NewListView(reports.State{}, l, "en")
	assert.Empty(t, view.Items)
	assert.Contains(t, view.Empty, "haven't submitted")

	loading := submission.NewListView(reports.State{Loading: true}, l, "en")
	assert.Empty(t, loading.Empty)
}
