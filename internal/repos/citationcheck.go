package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/sparkmetric/citewatch-backend/internal/logger"
  "github.com/sparkmetric/citewatch-backend/internal/types"
)

// CitationCheckRepo is insert-and-read only. Check records are immutable
// observations; nothing in the codebase updates or deletes them.
type CitationCheckRepo interface {
  Create(ctx context.Context, tx *gorm.DB, records []*types.CitationCheckRecord) ([]*types.CitationCheckRecord, error)
  GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*types.CitationCheckRecord, error)
  GetRecentCited(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.CitationCheckRecord, error)
}

type citationCheckRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCitationCheckRepo(db *gorm.DB, baseLog *logger.Logger) CitationCheckRepo {
  repoLog := baseLog.With("repo", "CitationCheckRepo")
  return &citationCheckRepo{db: db, log: repoLog}
}

func (r *citationCheckRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.CitationCheckRecord) ([]*types.CitationCheckRecord, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(records) == 0 {
    return []*types.CitationCheckRecord{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
    return nil, err
  }
  return records, nil
}

func (r *citationCheckRepo) GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*types.CitationCheckRecord, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CitationCheckRecord
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND checked_at >= ?", userID, since).
    Order("checked_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *citationCheckRepo) GetRecentCited(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.CitationCheckRecord, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CitationCheckRecord
  if userID == uuid.Nil {
    return results, nil
  }
  if limit <= 0 {
    limit = 5
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND is_cited = ?", userID, true).
    Order("checked_at DESC").
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
