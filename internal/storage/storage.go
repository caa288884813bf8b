package storage

import (
	"context"
	"errors"
	"fmt"

	"grievancedesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a report id does not exist.
var ErrNotFound = errors.New("report not found")

// Storage is the backend query and realtime capability consumed by the reports layer.
type Storage interface {
	ListGrievanceReports(ctx context.Context, userID string) ([]models.GrievanceReport, error)
	ListSuspiciousReports(ctx context.Context, userID string) ([]models.SuspiciousReport, error)
	CreateGrievanceReport(ctx context.Context, report *models.GrievanceReport) error
	CreateSuspiciousReport(ctx context.Context, report *models.SuspiciousReport) error

	SubscribeGrievanceReports(ctx context.Context, userID string) (<-chan models.GrievanceChange, error)
	SubscribeSuspiciousReports(ctx context.Context, userID string) (<-chan models.SuspiciousChange, error)
}

// Service implements Storage on PostgreSQL (gorm) with change events fanned out over redis Pub/Sub.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate creates or updates both report tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GrievanceReport{},
		&models.SuspiciousReport{},
	)
}

// ListGrievanceReports returns the user's grievances, newest first.
func (s *Service) ListGrievanceReports(ctx context.Context, userID string) ([]models.GrievanceReport, error) {
	reports := []models.GrievanceReport{}
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&reports).Error; err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to list grievance reports")
		return nil, err
	}
	return reports, nil
}

// ListSuspiciousReports returns the user's suspicious entity reports, newest first.
func (s *Service) ListSuspiciousReports(ctx context.Context, userID string) ([]models.SuspiciousReport, error) {
	reports := []models.SuspiciousReport{}
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&reports).Error; err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to list suspicious reports")
		return nil, err
	}
	return reports, nil
}

// CreateGrievanceReport inserts the report and announces it to the owner's change channel.
// The report is filled with the generated id, status and timestamps.
func (s *Service) CreateGrievanceReport(ctx context.Context, report *models.GrievanceReport) error {
	if err := s.DB.WithContext(ctx).Create(report).Error; err != nil {
		log.Error().Err(err).Str("user_id", report.UserID).Msg("failed to save grievance report")
		return err
	}
	s.publish(ctx, models.GrievanceTable, models.ChangeInsert, report.UserID, report, report.ID)
	return nil
}

func (s *Service) CreateSuspiciousReport(ctx context.Context, report *models.SuspiciousReport) error {
	if err := s.DB.WithContext(ctx).Create(report).Error; err != nil {
		log.Error().Err(err).Str("user_id", report.UserID).Msg("failed to save suspicious report")
		return err
	}
	s.publish(ctx, models.SuspiciousTable, models.ChangeInsert, report.UserID, report, report.ID)
	return nil
}

func (s *Service) GetGrievanceReport(ctx context.Context, id string) (*models.GrievanceReport, error) {
	var report models.GrievanceReport
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("grievance %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Service) GetSuspiciousReport(ctx context.Context, id string) (*models.SuspiciousReport, error) {
	var report models.SuspiciousReport
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("suspicious report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateGrievanceStatus is the staff-side status change. It publishes an UPDATE event.
func (s *Service) UpdateGrievanceStatus(ctx context.Context, id string, status models.GrievanceStatus) (*models.GrievanceReport, error) {
	report, err := s.GetGrievanceReport(ctx, id)
	if err != nil {
		return nil, err
	}
	report.Status = status
	if err := s.DB.WithContext(ctx).Save(report).Error; err != nil {
		return nil, err
	}
	s.publish(ctx, models.GrievanceTable, models.ChangeUpdate, report.UserID, report, report.ID)
	return report, nil
}

func (s *Service) UpdateSuspiciousStatus(ctx context.Context, id string, status models.SuspiciousStatus) (*models.SuspiciousReport, error) {
	report, err := s.GetSuspiciousReport(ctx, id)
	if err != nil {
		return nil, err
	}
	report.Status = status
	if err := s.DB.WithContext(ctx).Save(report).Error; err != nil {
		return nil, err
	}
	s.publish(ctx, models.SuspiciousTable, models.ChangeUpdate, report.UserID, report, report.ID)
	return report, nil
}

// DeleteGrievanceReport removes a report upstream of the reports layer and publishes a DELETE event.
func (s *Service) DeleteGrievanceReport(ctx context.Context, id string) error {
	report, err := s.GetGrievanceReport(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(report).Error; err != nil {
		return err
	}
	s.publish(ctx, models.GrievanceTable, models.ChangeDelete, report.UserID, nil, report.ID)
	return nil
}

func (s *Service) DeleteSuspiciousReport(ctx context.Context, id string) error {
	report, err := s.GetSuspiciousReport(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(report).Error; err != nil {
		return err
	}
	s.publish(ctx, models.SuspiciousTable, models.ChangeDelete, report.UserID, nil, report.ID)
	return nil
}

// publish announces a committed row change. A failed publish is logged only:
// the row is already written and subscribers resync on their next fetch.
func (s *Service) publish(ctx context.Context, table string, changeType models.ChangeType, userID string, record any, id string) {
	env, err := NewChangeEnvelope(table, changeType, userID, record, id)
	if err != nil {
		log.Error().Err(err).Str("table", table).Msg("failed to encode change event")
		return
	}
	if err := s.PublishChange(ctx, env); err != nil {
		log.Warn().Err(err).Str("table", table).Str("id", id).Msg("failed to publish change event")
	}
}
