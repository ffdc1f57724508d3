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

type RemainingItem struct {
  ItemID       uuid.UUID            `json:"item_id"`
  ConnectionID *uuid.UUID           `json:"connection_id,omitempty"`
  Kind         types.ConnectionKind `json:"kind,omitempty"`
  Content      string               `json:"content"`
}

type ProgressSummary struct {
  MainCompleted      int             `json:"main_completed"`
  MainTotal          int             `json:"main_total"`
  ConnectedCompleted int             `json:"connected_completed"`
  ConnectedTotal     int             `json:"connected_total"`
  Percent            float64         `json:"percent"`
  Remaining          []RemainingItem `json:"remaining,omitempty"`
}

func (p *ProgressSummary) Complete() bool {
  return p.MainCompleted == p.MainTotal && p.ConnectedCompleted == p.ConnectedTotal
}

// ProgressService derives completion purely from counting progress rows
// against the template's required set. No side effects; it is both the
// display source and the submission gate.
type ProgressService interface {
  Progress(ctx context.Context, tx *gorm.DB, instanceID uuid.UUID) (*ProgressSummary, error)
}

type progressService struct {
  db            *gorm.DB
  log           *logger.Logger
  instanceRepo  repos.ChecklistInstanceRepo
  templateRepo  repos.ChecklistTemplateRepo
  progressRepo  repos.ItemProgressRepo
  connectedRepo repos.ConnectedItemProgressRepo
}

func NewProgressService(
  db *gorm.DB,
  baseLog *logger.Logger,
  instanceRepo repos.ChecklistInstanceRepo,
  templateRepo repos.ChecklistTemplateRepo,
  progressRepo repos.ItemProgressRepo,
  connectedRepo repos.ConnectedItemProgressRepo,
) ProgressService {
  return &progressService{
    db:            db,
    log:           baseLog.With("service", "ProgressService"),
    instanceRepo:  instanceRepo,
    templateRepo:  templateRepo,
    progressRepo:  progressRepo,
    connectedRepo: connectedRepo,
  }
}

func (s *progressService) Progress(ctx context.Context, tx *gorm.DB, instanceID uuid.UUID) (*ProgressSummary, error) {
  instance, err := s.instanceRepo.GetByID(ctx, tx, instanceID)
  if err != nil {
    return nil, fmt.Errorf("read instance: %w", err)
  }
  if instance == nil {
    return nil, apierr.InstanceNotFound(instanceID)
  }
  tmpl, err := s.templateRepo.GetWithTree(ctx, tx, instance.TemplateID)
  if err != nil {
    return nil, fmt.Errorf("read template tree: %w", err)
  }
  if tmpl == nil {
    return nil, apierr.TemplateNotFound(instance.TemplateID)
  }

  itemRows, err := s.progressRepo.GetByInstanceID(ctx, tx, instanceID)
  if err != nil {
    return nil, fmt.Errorf("read item progress: %w", err)
  }
  connectedRows, err := s.connectedRepo.GetByInstanceID(ctx, tx, instanceID)
  if err != nil {
    return nil, fmt.Errorf("read connected progress: %w", err)
  }

  doneItems := make(map[uuid.UUID]bool, len(itemRows))
  for _, row := range itemRows {
    doneItems[row.ItemID] = true
  }
  doneConnections := make(map[uuid.UUID]bool, len(connectedRows))
  for _, row := range connectedRows {
    doneConnections[row.ConnectionID] = true
  }

  summary := &ProgressSummary{}
  for _, item := range tmpl.Items {
    if item.IsRequired {
      summary.MainTotal++
      if doneItems[item.ID] {
        summary.MainCompleted++
      } else {
        summary.Remaining = append(summary.Remaining, RemainingItem{
          ItemID:  item.ID,
          Content: item.Content,
        })
      }
    }
    for _, conn := range item.Connections {
      if !conn.IsRequired {
        continue
      }
      summary.ConnectedTotal++
      if doneConnections[conn.ID] {
        summary.ConnectedCompleted++
      } else {
        connID := conn.ID
        summary.Remaining = append(summary.Remaining, RemainingItem{
          ItemID:       item.ID,
          ConnectionID: &connID,
          Kind:         conn.Kind,
          Content:      item.Content,
        })
      }
    }
  }

  total := summary.MainTotal + summary.ConnectedTotal
  if total == 0 {
    // A template with no items is trivially complete.
    summary.Percent = 100
  } else {
    summary.Percent = float64(summary.MainCompleted+summary.ConnectedCompleted) / float64(total) * 100
  }
  return summary, nil
}
