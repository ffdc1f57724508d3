package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/repos"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

// ResourceService is the read-only window onto the external resources that
// checklist connections reference.
type ResourceService interface {
  ListInventory(ctx context.Context) ([]*types.InventoryItem, error)
  GetInventoryItem(ctx context.Context, id uuid.UUID) (*types.InventoryItem, error)
  ListPrecautions(ctx context.Context, workArea string) ([]*types.Precaution, error)
  ListManuals(ctx context.Context) ([]*types.Manual, error)
}

type resourceService struct {
  db             *gorm.DB
  log            *logger.Logger
  inventoryRepo  repos.InventoryItemRepo
  precautionRepo repos.PrecautionRepo
  manualRepo     repos.ManualRepo
}

func NewResourceService(
  db *gorm.DB,
  baseLog *logger.Logger,
  inventoryRepo repos.InventoryItemRepo,
  precautionRepo repos.PrecautionRepo,
  manualRepo repos.ManualRepo,
) ResourceService {
  return &resourceService{
    db:             db,
    log:            baseLog.With("service", "ResourceService"),
    inventoryRepo:  inventoryRepo,
    precautionRepo: precautionRepo,
    manualRepo:     manualRepo,
  }
}

func (s *resourceService) ListInventory(ctx context.Context) ([]*types.InventoryItem, error) {
  out, err := s.inventoryRepo.List(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("list inventory: %w", err)
  }
  return out, nil
}

func (s *resourceService) GetInventoryItem(ctx context.Context, id uuid.UUID) (*types.InventoryItem, error) {
  item, err := s.inventoryRepo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, fmt.Errorf("read inventory item: %w", err)
  }
  return item, nil
}

func (s *resourceService) ListPrecautions(ctx context.Context, workArea string) ([]*types.Precaution, error) {
  out, err := s.precautionRepo.List(ctx, nil, workArea)
  if err != nil {
    return nil, fmt.Errorf("list precautions: %w", err)
  }
  return out, nil
}

func (s *resourceService) ListManuals(ctx context.Context) ([]*types.Manual, error) {
  out, err := s.manualRepo.List(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("list manuals: %w", err)
  }
  return out, nil
}
