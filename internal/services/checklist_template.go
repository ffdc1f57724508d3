package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/shiftcheck-backend/internal/apierr"
  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/repos"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

// maxTreeDepth bounds item nesting. Templates are validated at authoring
// time; this guards against corrupted data reaching the instance flow.
const maxTreeDepth = 8

// TemplateNode is one node of the rendered item tree.
type TemplateNode struct {
  Item     *types.ChecklistItem `json:"item"`
  Children []*TemplateNode      `json:"children,omitempty"`
}

type ChecklistTemplateService interface {
  List(ctx context.Context, workArea, shiftPeriod, category string) ([]*types.ChecklistTemplate, error)
  // GetTree returns the template with its items arranged as a validated
  // forest: every parent reference resolves, no cycles, bounded depth.
  GetTree(ctx context.Context, id uuid.UUID) (*types.ChecklistTemplate, []*TemplateNode, error)
}

type checklistTemplateService struct {
  db           *gorm.DB
  log          *logger.Logger
  templateRepo repos.ChecklistTemplateRepo
}

func NewChecklistTemplateService(db *gorm.DB, baseLog *logger.Logger, templateRepo repos.ChecklistTemplateRepo) ChecklistTemplateService {
  return &checklistTemplateService{
    db:           db,
    log:          baseLog.With("service", "ChecklistTemplateService"),
    templateRepo: templateRepo,
  }
}

func (s *checklistTemplateService) List(ctx context.Context, workArea, shiftPeriod, category string) ([]*types.ChecklistTemplate, error) {
  out, err := s.templateRepo.List(ctx, nil, workArea, shiftPeriod, category)
  if err != nil {
    return nil, fmt.Errorf("list templates: %w", err)
  }
  return out, nil
}

func (s *checklistTemplateService) GetTree(ctx context.Context, id uuid.UUID) (*types.ChecklistTemplate, []*TemplateNode, error) {
  tmpl, err := s.templateRepo.GetWithTree(ctx, nil, id)
  if err != nil {
    return nil, nil, fmt.Errorf("read template tree: %w", err)
  }
  if tmpl == nil {
    return nil, nil, apierr.TemplateNotFound(id)
  }
  forest, err := buildItemForest(tmpl.Items)
  if err != nil {
    return nil, nil, fmt.Errorf("template %s has a malformed item tree: %w", id, err)
  }
  return tmpl, forest, nil
}

// buildItemForest arranges a flat item slice into a forest using an arena
// indexed by id. Items arrive ordered by sort_order, which is preserved
// within each parent scope.
func buildItemForest(items []*types.ChecklistItem) ([]*TemplateNode, error) {
  arena := make(map[uuid.UUID]*TemplateNode, len(items))
  for _, item := range items {
    arena[item.ID] = &TemplateNode{Item: item}
  }
  var roots []*TemplateNode
  for _, item := range items {
    node := arena[item.ID]
    if item.ParentID == nil {
      roots = append(roots, node)
      continue
    }
    parent, ok := arena[*item.ParentID]
    if !ok {
      return nil, fmt.Errorf("item %s references missing parent %s", item.ID, *item.ParentID)
    }
    parent.Children = append(parent.Children, node)
  }
  // Depth check doubles as cycle detection: a cycle never reaches a root,
  // so its nodes stay unvisited.
  visited := 0
  var walk func(n *TemplateNode, depth int) error
  walk = func(n *TemplateNode, depth int) error {
    if depth > maxTreeDepth {
      return fmt.Errorf("item nesting exceeds depth %d", maxTreeDepth)
    }
    visited++
    for _, child := range n.Children {
      if err := walk(child, depth+1); err != nil {
        return err
      }
    }
    return nil
  }
  for _, root := range roots {
    if err := walk(root, 1); err != nil {
      return nil, err
    }
  }
  if visited != len(items) {
    return nil, fmt.Errorf("%d items are unreachable from any root (cycle)", len(items)-visited)
  }
  return roots, nil
}
