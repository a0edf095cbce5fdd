package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sparkmetric/citewatch-backend/internal/logger"
	"github.com/sparkmetric/citewatch-backend/internal/repos"
	"github.com/sparkmetric/citewatch-backend/internal/types"
)

type CreateEntryInput struct {
	UserID         uuid.UUID
	Query          string
	Domain         string
	CheckFrequency types.CheckFrequency
	AlertOnChange  bool
}

type MonitoringEntryService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*types.MonitoringEntry, error)
	Create(ctx context.Context, input CreateEntryInput) (*types.MonitoringEntry, error)
	Deactivate(ctx context.Context, userID, entryID uuid.UUID) error
}

type monitoringEntryService struct {
	db        *gorm.DB
	log       *logger.Logger
	entryRepo repos.MonitoringEntryRepo
}

func NewMonitoringEntryService(db *gorm.DB, baseLog *logger.Logger, entryRepo repos.MonitoringEntryRepo) MonitoringEntryService {
	return &monitoringEntryService{
		db:        db,
		log:       baseLog.With("service", "MonitoringEntryService"),
		entryRepo: entryRepo,
	}
}

func (s *monitoringEntryService) List(ctx context.Context, userID uuid.UUID) ([]*types.MonitoringEntry, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("monitoring entries: user id required")
	}
	return s.entryRepo.GetByUserID(ctx, nil, userID)
}

func (s *monitoringEntryService) Create(ctx context.Context, input CreateEntryInput) (*types.MonitoringEntry, error) {
	if input.UserID == uuid.Nil {
		return nil, fmt.Errorf("monitoring entries: user id required")
	}
	query := strings.TrimSpace(input.Query)
	domain := strings.TrimSpace(input.Domain)
	if query == "" {
		return nil, fmt.Errorf("monitoring entries: query required")
	}
	if domain == "" {
		return nil, fmt.Errorf("monitoring entries: domain required")
	}

	frequency := input.CheckFrequency
	switch frequency {
	case types.FrequencyDaily, types.FrequencyWeekly, types.FrequencyMonthly:
	default:
		frequency = types.FrequencyDaily
	}

	entry := &types.MonitoringEntry{
		UserID:             input.UserID,
		Query:              query,
		Domain:             domain,
		CheckFrequency:     frequency,
		AlertOnChange:      input.AlertOnChange,
		IsActive:           true,
		LastCitationStatus: types.StatusNeverChecked,
	}

	created, err := s.entryRepo.Create(ctx, nil, []*types.MonitoringEntry{entry})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// Deactivate turns monitoring off without deleting, so accumulated check
// history stays queryable.
func (s *monitoringEntryService) Deactivate(ctx context.Context, userID, entryID uuid.UUID) error {
	entry, err := s.entryRepo.GetByID(ctx, nil, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return fmt.Errorf("monitoring entries: entry does not belong to user")
	}
	return s.entryRepo.Deactivate(ctx, nil, entryID)
}
