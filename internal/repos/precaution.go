package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

type PrecautionRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Precaution, error)
  List(ctx context.Context, tx *gorm.DB, workArea string) ([]*types.Precaution, error)
}

type precautionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPrecautionRepo(db *gorm.DB, baseLog *logger.Logger) PrecautionRepo {
  return &precautionRepo{db: db, log: baseLog.With("repo", "PrecautionRepo")}
}

func (r *precautionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Precaution, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var row types.Precaution
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

func (r *precautionRepo) List(ctx context.Context, tx *gorm.DB, workArea string) ([]*types.Precaution, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  q := transaction.WithContext(ctx).Model(&types.Precaution{})
  if workArea != "" {
    q = q.Where("work_area = ?", workArea)
  }
  var out []*types.Precaution
  if err := q.Order("title ASC").Find(&out).Error; err != nil {
    return nil, err
  }
  return out, nil
}
