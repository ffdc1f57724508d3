package repos

import (
  "context"
  "errors"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

type InventoryItemRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.InventoryItem, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.InventoryItem, error)
  // CompareAndSetStock updates stock only if it still equals prevStock.
  // Callers loop on a fresh read when the row moved underneath them.
  CompareAndSetStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, prevStock, newStock int) (bool, error)
}

type inventoryItemRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewInventoryItemRepo(db *gorm.DB, baseLog *logger.Logger) InventoryItemRepo {
  return &inventoryItemRepo{db: db, log: baseLog.With("repo", "InventoryItemRepo")}
}

func (r *inventoryItemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.InventoryItem, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var row types.InventoryItem
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

func (r *inventoryItemRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.InventoryItem, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var out []*types.InventoryItem
  if err := transaction.WithContext(ctx).
    Order("name ASC").
    Find(&out).Error; err != nil {
    return nil, err
  }
  return out, nil
}

func (r *inventoryItemRepo) CompareAndSetStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, prevStock, newStock int) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return false, nil
  }
  res := transaction.WithContext(ctx).
    Model(&types.InventoryItem{}).
    Where("id = ? AND stock = ?", id, prevStock).
    Updates(map[string]interface{}{
      "stock":      newStock,
      "updated_at": time.Now(),
    })
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected == 1, nil
}
