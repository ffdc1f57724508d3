package repos

import (
  "context"
  "errors"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"
  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

type ChecklistInstanceRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChecklistInstance, error)
  // GetOrCreate is insert-if-absent on the unique (template_id, target_date)
  // index. Under concurrent first access exactly one row results; every
  // caller gets the same row back. The bool reports whether this call
  // created it.
  GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.ChecklistInstance) (*types.ChecklistInstance, bool, error)
  // MarkSubmitted flips the instance to its terminal state. The guarded
  // WHERE is the submission race arbiter: only one caller sees a row
  // affected, everyone else already finds is_submitted set.
  MarkSubmitted(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error)
  ListByTemplateAndDate(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, date time.Time) ([]*types.ChecklistInstance, error)
}

type checklistInstanceRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewChecklistInstanceRepo(db *gorm.DB, baseLog *logger.Logger) ChecklistInstanceRepo {
  return &checklistInstanceRepo{db: db, log: baseLog.With("repo", "ChecklistInstanceRepo")}
}

func (r *checklistInstanceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChecklistInstance, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var row types.ChecklistInstance
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

func (r *checklistInstanceRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.ChecklistInstance) (*types.ChecklistInstance, bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if row == nil {
    return nil, false, nil
  }
  res := transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "template_id"}, {Name: "target_date"}},
      DoNothing: true,
    }).
    Create(row)
  if res.Error != nil {
    return nil, false, res.Error
  }
  created := res.RowsAffected == 1
  var out types.ChecklistInstance
  if err := transaction.WithContext(ctx).
    Where("template_id = ? AND target_date = ?", row.TemplateID, row.TargetDate).
    First(&out).Error; err != nil {
    return nil, false, err
  }
  return &out, created, nil
}

func (r *checklistInstanceRepo) MarkSubmitted(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return false, nil
  }
  res := transaction.WithContext(ctx).
    Model(&types.ChecklistInstance{}).
    Where("id = ? AND is_submitted = ?", id, false).
    Updates(map[string]interface{}{
      "is_completed": true,
      "is_submitted": true,
      "completed_at": at,
      "submitted_at": at,
      "updated_at":   at,
    })
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected == 1, nil
}

func (r *checklistInstanceRepo) ListByTemplateAndDate(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, date time.Time) ([]*types.ChecklistInstance, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var out []*types.ChecklistInstance
  if templateID == uuid.Nil {
    return out, nil
  }
  if err := transaction.WithContext(ctx).
    Where("template_id = ? AND target_date = ?", templateID, date).
    Find(&out).Error; err != nil {
    return nil, err
  }
  return out, nil
}
