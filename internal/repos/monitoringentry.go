package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/sparkmetric/citewatch-backend/internal/logger"
  "github.com/sparkmetric/citewatch-backend/internal/types"
)

type MonitoringEntryRepo interface {
  Create(ctx context.Context, tx *gorm.DB, entries []*types.MonitoringEntry) ([]*types.MonitoringEntry, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MonitoringEntry, error)
  GetActive(ctx context.Context, tx *gorm.DB) ([]*types.MonitoringEntry, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.MonitoringEntry, error)
  UpdateCheckResult(ctx context.Context, tx *gorm.DB, id uuid.UUID, checkedAt time.Time, status types.CitationStatus) error
  Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type monitoringEntryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMonitoringEntryRepo(db *gorm.DB, baseLog *logger.Logger) MonitoringEntryRepo {
  repoLog := baseLog.With("repo", "MonitoringEntryRepo")
  return &monitoringEntryRepo{db: db, log: repoLog}
}

func (r *monitoringEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.MonitoringEntry) ([]*types.MonitoringEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(entries) == 0 {
    return []*types.MonitoringEntry{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
    return nil, err
  }
  return entries, nil
}

func (r *monitoringEntryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MonitoringEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.MonitoringEntry
  if err := transaction.WithContext(ctx).
    Where("id = ?", id).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *monitoringEntryRepo) GetActive(ctx context.Context, tx *gorm.DB) ([]*types.MonitoringEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.MonitoringEntry
  if err := transaction.WithContext(ctx).
    Where("is_active = ?", true).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *monitoringEntryRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.MonitoringEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.MonitoringEntry
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND is_active = ?", userID, true).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// UpdateCheckResult writes last_checked_at and last_citation_status together.
// checkedAt is always the caller's "now", which keeps last_checked_at
// monotonically non-decreasing across successive runs.
func (r *monitoringEntryRepo) UpdateCheckResult(ctx context.Context, tx *gorm.DB, id uuid.UUID, checkedAt time.Time, status types.CitationStatus) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.MonitoringEntry{}).
    Where("id = ?", id).
    Updates(map[string]interface{}{
      "last_checked_at":      checkedAt,
      "last_citation_status": status,
      "updated_at":           checkedAt,
    }).Error
}

// Deactivate flips is_active off instead of deleting, so check history for the
// pair survives.
func (r *monitoringEntryRepo) Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.MonitoringEntry{}).
    Where("id = ?", id).
    Update("is_active", false).Error
}
