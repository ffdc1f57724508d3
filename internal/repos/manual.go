package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

type ManualRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Manual, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.Manual, error)
}

type manualRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewManualRepo(db *gorm.DB, baseLog *logger.Logger) ManualRepo {
  return &manualRepo{db: db, log: baseLog.With("repo", "ManualRepo")}
}

func (r *manualRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Manual, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var row types.Manual
  err := transaction.WithContext(ctx).
    Where("id = ?", id).
    First(&row).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &row, nil
}

func (r *manualRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Manual, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var out []*types.Manual
  if err := transaction.WithContext(ctx).
    Order("title ASC").
    Find(&out).Error; err != nil {
    return nil, err
  }
  return out, nil
}
