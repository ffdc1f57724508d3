package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"
  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

type ItemProgressRepo interface {
  Upsert(ctx context.Context, tx *gorm.DB, row *types.ItemProgress) error
  GetByInstanceID(ctx context.Context, tx *gorm.DB, instanceID uuid.UUID) ([]*types.ItemProgress, error)
  GetByInstanceAndItem(ctx context.Context, tx *gorm.DB, instanceID, itemID uuid.UUID) (*types.ItemProgress, error)
  DeleteByInstanceAndItem(ctx context.Context, tx *gorm.DB, instanceID, itemID uuid.UUID) error
}

type itemProgressRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewItemProgressRepo(db *gorm.DB, baseLog *logger.Logger) ItemProgressRepo {
  return &itemProgressRepo{db: db, log: baseLog.With("repo", "ItemProgressRepo")}
}

func (r *itemProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ItemProgress) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if row == nil {
    return nil
  }
  // Upsert by unique instance_id + item_id; marking complete twice updates
  // notes/timestamps but stays a single row.
  return transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns: []clause.Column{{Name: "instance_id"}, {Name: "item_id"}},
      DoUpdates: clause.AssignmentColumns([]string{
        "completed_by_id", "notes", "completed_at", "updated_at",
      }),
    }).
    Create(row).Error
}

func (r *itemProgressRepo) GetByInstanceID(ctx context.Context, tx *gorm.DB, instanceID uuid.UUID) ([]*types.ItemProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var out []*types.ItemProgress
  if instanceID == uuid.Nil {
    return out, nil
  }
  if err := transaction.WithContext(ctx).
    Where("instance_id = ?", instanceID).
    Find(&out).Error; err != nil {
    return nil, err
  }
  return out, nil
}

func (r *itemProgressRepo) GetByInstanceAndItem(ctx context.Context, tx *gorm.DB, instanceID, itemID uuid.UUID) (*types.ItemProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if instanceID == uuid.Nil || itemID == uuid.Nil {
    return nil, nil
  }
  var row types.ItemProgress
  err := transaction.WithContext(ctx).
    Where("instance_id = ? AND item_id = ?", instanceID, itemID).
    First(&row).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &row, nil
}

func (r *itemProgressRepo) DeleteByInstanceAndItem(ctx context.Context, tx *gorm.DB, instanceID, itemID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if instanceID == uuid.Nil || itemID == uuid.Nil {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("instance_id = ? AND item_id = ?", instanceID, itemID).
    Delete(&types.ItemProgress{}).Error
}
