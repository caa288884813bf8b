// Package reports is the data-access layer between the views and the backend.
// A Client performs user-bound queries and mutations; a Session mirrors the
// user's two report collections and keeps them live from the change feed.
package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"grievancedesk/backend/internal/metrics"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// ErrUnauthenticated is returned by every operation attempted without a current user.
var ErrUnauthenticated = errors.New("user not authenticated")

// ErrInvalidScope is returned by UploadFile for an empty scope id or one containing a path separator.
var ErrInvalidScope = errors.New("invalid upload scope")

// BlobStore is the backend storage capability for evidence files.
type BlobStore interface {
	Upload(ctx context.Context, objectPath string, body io.Reader) error
	PublicURL(objectPath string) string
}

// Deps are the backend capabilities shared by clients and sessions.
type Deps struct {
	Storage storage.Storage
	Blobs   BlobStore
	Metrics *metrics.Recorder
	Now     func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// GrievanceInput holds the caller-supplied fields of a new grievance.
// The owner, id, status and timestamps are never taken from the caller.
type GrievanceInput struct {
	Title             string
	ComplaintCategory string
	Subcategory       *string
	Description       string
	Location          string
	EvidenceFiles     []string
	PriorityLevel     *string
}

// SuspiciousInput holds the caller-supplied fields of a new suspicious entity report.
type SuspiciousInput struct {
	EntityType    string
	EntityValue   string
	Description   string
	EvidenceFiles []string
	ThreatLevel   *string
}

// Client performs operations on behalf of one user. A Client with a nil user
// fails every operation with ErrUnauthenticated.
type Client struct {
	deps Deps
	user *models.User
}

func NewClient(deps Deps, user *models.User) *Client {
	return &Client{deps: deps, user: user}
}

// User returns the user the client acts for, or nil.
func (c *Client) User() *models.User {
	return c.user
}

func (c *Client) userID() (string, error) {
	if c == nil || c.user == nil || c.user.ID == "" {
		return "", ErrUnauthenticated
	}
	return c.user.ID, nil
}

// ListGrievanceReports returns the user's grievances, newest first.
func (c *Client) ListGrievanceReports(ctx context.Context) ([]models.GrievanceReport, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}
	return c.deps.Storage.ListGrievanceReports(ctx, userID)
}

// ListSuspiciousReports returns the user's suspicious entity reports, newest first.
func (c *Client) ListSuspiciousReports(ctx context.Context) ([]models.SuspiciousReport, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}
	return c.deps.Storage.ListSuspiciousReports(ctx, userID)
}

// CreateGrievanceReport submits a new grievance owned by the current user.
func (c *Client) CreateGrievanceReport(ctx context.Context, in GrievanceInput) (*models.GrievanceReport, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}

	report := &models.GrievanceReport{
		UserID:            userID,
		Title:             in.Title,
		ComplaintCategory: in.ComplaintCategory,
		Subcategory:       in.Subcategory,
		Description:       in.Description,
		Location:          in.Location,
		EvidenceFiles:     evidenceList(in.EvidenceFiles),
		PriorityLevel:     in.PriorityLevel,
	}
	err = c.deps.Storage.CreateGrievanceReport(ctx, report)
	c.deps.Metrics.RecordReportCreated("grievance", err)
	if err != nil {
		return nil, fmt.Errorf("create grievance report: %w", err)
	}
	return report, nil
}

// CreateSuspiciousReport submits a new suspicious entity report owned by the current user.
func (c *Client) CreateSuspiciousReport(ctx context.Context, in SuspiciousInput) (*models.SuspiciousReport, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}

	report := &models.SuspiciousReport{
		UserID:        userID,
		EntityType:    in.EntityType,
		EntityValue:   in.EntityValue,
		Description:   in.Description,
		EvidenceFiles: evidenceList(in.EvidenceFiles),
		ThreatLevel:   in.ThreatLevel,
	}
	err = c.deps.Storage.CreateSuspiciousReport(ctx, report)
	c.deps.Metrics.RecordReportCreated("suspicious", err)
	if err != nil {
		return nil, fmt.Errorf("create suspicious report: %w", err)
	}
	return report, nil
}

// UploadFile stores file under <user>/<scope>/<token>.<ext> and returns its public URL.
func (c *Client) UploadFile(ctx context.Context, file models.FileUpload, scopeID string) (string, error) {
	userID, err := c.userID()
	if err != nil {
		return "", err
	}
	if scopeID == "" || strings.Contains(scopeID, "/") {
		return "", fmt.Errorf("%w %q", ErrInvalidScope, scopeID)
	}

	objectPath := fmt.Sprintf("%s/%s/%s.%s", userID, scopeID, c.uniqueToken(), file.Ext())
	err = c.deps.Blobs.Upload(ctx, objectPath, file.Body)
	c.deps.Metrics.RecordUpload(err)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("file", file.Filename).Msg("evidence upload failed")
		return "", fmt.Errorf("upload %s: %w", file.Filename, err)
	}
	return c.deps.Blobs.PublicURL(objectPath), nil
}

// uniqueToken is the upload timestamp in milliseconds plus a random suffix, so
// files uploaded in parallel within one millisecond do not collide.
func (c *Client) uniqueToken() string {
	return fmt.Sprintf("%d-%s", c.deps.now().UnixMilli(), uuid.New().String()[:8])
}

func evidenceList(refs []string) pq.StringArray {
	if len(refs) == 0 {
		return nil
	}
	out := make(pq.StringArray, len(refs))
	copy(out, refs)
	return out
}
