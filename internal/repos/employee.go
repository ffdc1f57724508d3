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

type EmployeeRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Employee, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Employee, error)
  // EnsureExists mirrors the principal resolved by the identity provider so
  // foreign keys on progress and lock rows resolve locally.
  EnsureExists(ctx context.Context, tx *gorm.DB, row *types.Employee) error
}

type employeeRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewEmployeeRepo(db *gorm.DB, baseLog *logger.Logger) EmployeeRepo {
  return &employeeRepo{db: db, log: baseLog.With("repo", "EmployeeRepo")}
}

func (r *employeeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Employee, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var row types.Employee
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

func (r *employeeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Employee, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var out []*types.Employee
  if len(ids) == 0 {
    return out, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&out).Error; err != nil {
    return nil, err
  }
  return out, nil
}

func (r *employeeRepo) EnsureExists(ctx context.Context, tx *gorm.DB, row *types.Employee) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if row == nil || row.ID == uuid.Nil {
    return nil
  }
  return transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns: []clause.Column{{Name: "id"}},
      DoUpdates: clause.AssignmentColumns([]string{
        "name", "is_super_admin", "updated_at",
      }),
    }).
    Create(row).Error
}
