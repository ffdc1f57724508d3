package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

// ChecklistTemplateRepo is read-only: templates are authored elsewhere and
// the core never mutates them.
type ChecklistTemplateRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChecklistTemplate, error)
  GetWithTree(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChecklistTemplate, error)
  List(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod, category string) ([]*types.ChecklistTemplate, error)
}

type checklistTemplateRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewChecklistTemplateRepo(db *gorm.DB, baseLog *logger.Logger) ChecklistTemplateRepo {
  return &checklistTemplateRepo{db: db, log: baseLog.With("repo", "ChecklistTemplateRepo")}
}

func (r *checklistTemplateRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChecklistTemplate, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var tmpl types.ChecklistTemplate
  err := transaction.WithContext(ctx).
    Where("id = ?", id).
    First(&tmpl).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &tmpl, nil
}

func (r *checklistTemplateRepo) GetWithTree(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChecklistTemplate, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var tmpl types.ChecklistTemplate
  err := transaction.WithContext(ctx).
    Preload("Items", func(db *gorm.DB) *gorm.DB {
      return db.Order("sort_order ASC")
    }).
    Preload("Items.Connections", func(db *gorm.DB) *gorm.DB {
      return db.Order("sort_order ASC")
    }).
    Where("id = ?", id).
    First(&tmpl).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &tmpl, nil
}

func (r *checklistTemplateRepo) List(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod, category string) ([]*types.ChecklistTemplate, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  q := transaction.WithContext(ctx).Model(&types.ChecklistTemplate{})
  if workArea != "" {
    q = q.Where("work_area = ?", workArea)
  }
  if shiftPeriod != "" {
    q = q.Where("shift_period = ?", shiftPeriod)
  }
  if category != "" {
    q = q.Where("category = ?", category)
  }
  var out []*types.ChecklistTemplate
  if err := q.Order("name ASC").Find(&out).Error; err != nil {
    return nil, err
  }
  return out, nil
}
