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

type ConnectedItemProgressRepo interface {
  // InsertIfAbsent is the exactly-once guard for connection side effects:
  // the unique (instance_id, connection_id) index makes concurrent inserts
  // resolve to one winner. Returns whether this call inserted the row.
  InsertIfAbsent(ctx context.Context, tx *gorm.DB, row *types.ConnectedItemProgress) (bool, error)
  UpdateStockSnapshot(ctx context.Context, tx *gorm.DB, id uuid.UUID, previousStock, updatedStock int) error
  GetByInstanceID(ctx context.Context, tx *gorm.DB, instanceID uuid.UUID) ([]*types.ConnectedItemProgress, error)
  GetByInstanceAndConnection(ctx context.Context, tx *gorm.DB, instanceID, connectionID uuid.UUID) (*types.ConnectedItemProgress, error)
}

type connectedItemProgressRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewConnectedItemProgressRepo(db *gorm.DB, baseLog *logger.Logger) ConnectedItemProgressRepo {
  return &connectedItemProgressRepo{db: db, log: baseLog.With("repo", "ConnectedItemProgressRepo")}
}

func (r *connectedItemProgressRepo) InsertIfAbsent(ctx context.Context, tx *gorm.DB, row *types.ConnectedItemProgress) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if row == nil {
    return false, nil
  }
  res := transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "instance_id"}, {Name: "connection_id"}},
      DoNothing: true,
    }).
    Create(row)
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected == 1, nil
}

func (r *connectedItemProgressRepo) UpdateStockSnapshot(ctx context.Context, tx *gorm.DB, id uuid.UUID, previousStock, updatedStock int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.ConnectedItemProgress{}).
    Where("id = ?", id).
    Updates(map[string]interface{}{
      "previous_stock": previousStock,
      "updated_stock":  updatedStock,
    }).Error
}

func (r *connectedItemProgressRepo) GetByInstanceID(ctx context.Context, tx *gorm.DB, instanceID uuid.UUID) ([]*types.ConnectedItemProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var out []*types.ConnectedItemProgress
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

func (r *connectedItemProgressRepo) GetByInstanceAndConnection(ctx context.Context, tx *gorm.DB, instanceID, connectionID uuid.UUID) (*types.ConnectedItemProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if instanceID == uuid.Nil || connectionID == uuid.Nil {
    return nil, nil
  }
  var row types.ConnectedItemProgress
  err := transaction.WithContext(ctx).
    Where("instance_id = ? AND connection_id = ?", instanceID, connectionID).
    First(&row).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &row, nil
}
