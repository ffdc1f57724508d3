package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/shiftcheck-backend/internal/apierr"
  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/repos"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

// stockRetryAttempts bounds the compare-and-set loop on the stock counter.
// Contention beyond this surfaces as a server error instead of spinning.
const stockRetryAttempts = 3

type ApplyResult struct {
  ConnectionID   uuid.UUID            `json:"connection_id"`
  Kind           types.ConnectionKind `json:"kind"`
  AlreadyApplied bool                 `json:"already_applied"`
  PreviousStock  *int                 `json:"previous_stock,omitempty"`
  UpdatedStock   *int                 `json:"updated_stock,omitempty"`
}

// ConnectionResolver applies the side effect of completing a connected item.
// Inventory connections adjust stock exactly once per (instance, connection);
// precaution and manual connections only record the acknowledgement. Apply
// must run inside the caller's transaction so completion and side effect
// succeed or fail together.
type ConnectionResolver interface {
  Apply(ctx context.Context, tx *gorm.DB, instance *types.ChecklistInstance, conn *types.ChecklistItemConnection, actor uuid.UUID) (*ApplyResult, error)
}

type connectionResolver struct {
  log           *logger.Logger
  connectedRepo repos.ConnectedItemProgressRepo
  inventoryRepo repos.InventoryItemRepo
}

func NewConnectionResolver(
  baseLog *logger.Logger,
  connectedRepo repos.ConnectedItemProgressRepo,
  inventoryRepo repos.InventoryItemRepo,
) ConnectionResolver {
  return &connectionResolver{
    log:           baseLog.With("service", "ConnectionResolver"),
    connectedRepo: connectedRepo,
    inventoryRepo: inventoryRepo,
  }
}

func (r *connectionResolver) Apply(ctx context.Context, tx *gorm.DB, instance *types.ChecklistInstance, conn *types.ChecklistItemConnection, actor uuid.UUID) (*ApplyResult, error) {
  if tx == nil {
    return nil, fmt.Errorf("connection apply requires a transaction")
  }
  if instance == nil || conn == nil {
    return nil, fmt.Errorf("instance and connection are required")
  }
  switch conn.Kind {
  case types.ConnectionKindInventory, types.ConnectionKindPrecaution, types.ConnectionKindManual:
  default:
    return nil, fmt.Errorf("unknown connection kind %q", conn.Kind)
  }

  now := time.Now()
  row := &types.ConnectedItemProgress{
    ID:            uuid.New(),
    InstanceID:    instance.ID,
    ConnectionID:  conn.ID,
    ItemID:        conn.ItemID,
    Kind:          conn.Kind,
    CompletedByID: actor,
    CompletedAt:   now,
    CreatedAt:     now,
    UpdatedAt:     now,
  }
  inserted, err := r.connectedRepo.InsertIfAbsent(ctx, tx, row)
  if err != nil {
    return nil, fmt.Errorf("record connected progress: %w", err)
  }
  if !inserted {
    // Duplicate apply: return the snapshot recorded by the first one, do
    // not touch stock again.
    existing, err := r.connectedRepo.GetByInstanceAndConnection(ctx, tx, instance.ID, conn.ID)
    if err != nil {
      return nil, fmt.Errorf("read connected progress: %w", err)
    }
    if existing == nil {
      return nil, fmt.Errorf("connected progress vanished for connection %s", conn.ID)
    }
    return &ApplyResult{
      ConnectionID:   conn.ID,
      Kind:           conn.Kind,
      AlreadyApplied: true,
      PreviousStock:  existing.PreviousStock,
      UpdatedStock:   existing.UpdatedStock,
    }, nil
  }

  result := &ApplyResult{ConnectionID: conn.ID, Kind: conn.Kind}
  if conn.Kind != types.ConnectionKindInventory {
    return result, nil
  }

  prev, next, err := r.adjustStock(ctx, tx, conn)
  if err != nil {
    return nil, err
  }
  if err := r.connectedRepo.UpdateStockSnapshot(ctx, tx, row.ID, prev, next); err != nil {
    return nil, fmt.Errorf("record stock snapshot: %w", err)
  }
  result.PreviousStock = &prev
  result.UpdatedStock = &next
  return result, nil
}

// adjustStock applies the connection's signed delta via bounded
// compare-and-set: read the counter, write back only if unchanged, retry on
// interference. A delta that would drive stock negative applies nothing.
func (r *connectionResolver) adjustStock(ctx context.Context, tx *gorm.DB, conn *types.ChecklistItemConnection) (int, int, error) {
  for attempt := 0; attempt < stockRetryAttempts; attempt++ {
    item, err := r.inventoryRepo.GetByID(ctx, tx, conn.ResourceID)
    if err != nil {
      return 0, 0, fmt.Errorf("read inventory item: %w", err)
    }
    if item == nil {
      return 0, 0, fmt.Errorf("inventory item %s referenced by connection %s not found", conn.ResourceID, conn.ID)
    }
    next := item.Stock + conn.StockDelta
    if next < 0 {
      return 0, 0, apierr.InsufficientStock(item.Name, conn.StockDelta)
    }
    swapped, err := r.inventoryRepo.CompareAndSetStock(ctx, tx, item.ID, item.Stock, next)
    if err != nil {
      return 0, 0, fmt.Errorf("adjust stock: %w", err)
    }
    if swapped {
      return item.Stock, next, nil
    }
    r.log.Debug("stock CAS interference, retrying", "inventory_item_id", item.ID, "attempt", attempt+1)
  }
  return 0, 0, fmt.Errorf("stock adjustment for connection %s did not settle after %d attempts", conn.ID, stockRetryAttempts)
}
