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

// ChecklistInstanceService drives one instance through
// IN_PROGRESS -> COMPLETED -> SUBMITTED. Submission is terminal: every
// mutating call on a submitted instance fails closed with AlreadySubmitted.
type ChecklistInstanceService interface {
  GetOrCreate(ctx context.Context, templateID uuid.UUID, date time.Time, actor uuid.UUID) (*types.ChecklistInstance, error)
  GetByID(ctx context.Context, id uuid.UUID) (*types.ChecklistInstance, error)
  MarkItemComplete(ctx context.Context, instanceID, itemID, actor uuid.UUID, notes string) (*types.ItemProgress, []*ApplyResult, error)
  MarkItemIncomplete(ctx context.Context, instanceID, itemID, actor uuid.UUID) error
  Submit(ctx context.Context, instanceID, actor uuid.UUID) (*types.ChecklistInstance, error)
}

type checklistInstanceService struct {
  db              *gorm.DB
  log             *logger.Logger
  instanceRepo    repos.ChecklistInstanceRepo
  templateRepo    repos.ChecklistTemplateRepo
  progressRepo    repos.ItemProgressRepo
  slotLockRepo    repos.SlotLockRepo
  resolver        ConnectionResolver
  progressService ProgressService
  events          SlotEventPublisher
}

func NewChecklistInstanceService(
  db *gorm.DB,
  baseLog *logger.Logger,
  instanceRepo repos.ChecklistInstanceRepo,
  templateRepo repos.ChecklistTemplateRepo,
  progressRepo repos.ItemProgressRepo,
  slotLockRepo repos.SlotLockRepo,
  resolver ConnectionResolver,
  progressService ProgressService,
  events SlotEventPublisher,
) ChecklistInstanceService {
  serviceLog := baseLog.With("service", "ChecklistInstanceService")
  return &checklistInstanceService{
    db:              db,
    log:             serviceLog,
    instanceRepo:    instanceRepo,
    templateRepo:    templateRepo,
    progressRepo:    progressRepo,
    slotLockRepo:    slotLockRepo,
    resolver:        resolver,
    progressService: progressService,
    events:          events,
  }
}

func (s *checklistInstanceService) GetOrCreate(ctx context.Context, templateID uuid.UUID, date time.Time, actor uuid.UUID) (*types.ChecklistInstance, error) {
  if actor == uuid.Nil {
    return nil, fmt.Errorf("actor is required to open a checklist instance")
  }
  tmpl, err := s.templateRepo.GetByID(ctx, nil, templateID)
  if err != nil {
    return nil, fmt.Errorf("read template: %w", err)
  }
  if tmpl == nil {
    return nil, apierr.TemplateNotFound(templateID)
  }

  now := time.Now()
  row := &types.ChecklistInstance{
    ID:         uuid.New(),
    TemplateID: templateID,
    TargetDate: NormalizeDay(date),
    EmployeeID: actor,
    CreatedAt:  now,
    UpdatedAt:  now,
  }
  instance, created, err := s.instanceRepo.GetOrCreate(ctx, nil, row)
  if err != nil {
    return nil, fmt.Errorf("get or create instance: %w", err)
  }
  if created {
    s.log.Info("checklist instance created",
      "instance_id", instance.ID,
      "template_id", templateID,
      "target_date", instance.TargetDate.Format("2006-01-02"))
  }
  return instance, nil
}

func (s *checklistInstanceService) GetByID(ctx context.Context, id uuid.UUID) (*types.ChecklistInstance, error) {
  instance, err := s.instanceRepo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, fmt.Errorf("read instance: %w", err)
  }
  if instance == nil {
    return nil, apierr.InstanceNotFound(id)
  }
  return instance, nil
}

func (s *checklistInstanceService) MarkItemComplete(ctx context.Context, instanceID, itemID, actor uuid.UUID, notes string) (*types.ItemProgress, []*ApplyResult, error) {
  if actor == uuid.Nil {
    return nil, nil, fmt.Errorf("actor is required to complete an item")
  }
  var progress *types.ItemProgress
  var results []*ApplyResult
  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    instance, item, err := s.loadMutable(ctx, tx, instanceID, itemID)
    if err != nil {
      return err
    }

    // Connected side effects first: if any of them fails (insufficient
    // stock included) the whole transaction rolls back and the completion
    // is not recorded.
    for _, conn := range item.Connections {
      res, err := s.resolver.Apply(ctx, tx, instance, conn, actor)
      if err != nil {
        return err
      }
      results = append(results, res)
    }

    now := time.Now()
    progress = &types.ItemProgress{
      ID:            uuid.New(),
      InstanceID:    instance.ID,
      ItemID:        item.ID,
      CompletedByID: actor,
      Notes:         notes,
      CompletedAt:   now,
      CreatedAt:     now,
      UpdatedAt:     now,
    }
    return s.progressRepo.Upsert(ctx, tx, progress)
  })
  if err != nil {
    return nil, nil, err
  }
  return progress, results, nil
}

func (s *checklistInstanceService) MarkItemIncomplete(ctx context.Context, instanceID, itemID, actor uuid.UUID) error {
  if actor == uuid.Nil {
    return fmt.Errorf("actor is required to uncomplete an item")
  }
  return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    instance, item, err := s.loadMutable(ctx, tx, instanceID, itemID)
    if err != nil {
      return err
    }
    // Reversal clears the checklist state only. Stock adjustments are
    // one-directional business events: the connected progress rows stay,
    // no stock is restored, and re-completing will not re-apply them.
    return s.progressRepo.DeleteByInstanceAndItem(ctx, tx, instance.ID, item.ID)
  })
}

func (s *checklistInstanceService) Submit(ctx context.Context, instanceID, actor uuid.UUID) (*types.ChecklistInstance, error) {
  if actor == uuid.Nil {
    return nil, fmt.Errorf("actor is required to submit")
  }
  var submitted *types.ChecklistInstance
  var slotKey SlotKey
  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    instance, err := s.instanceRepo.GetByID(ctx, tx, instanceID)
    if err != nil {
      return fmt.Errorf("read instance: %w", err)
    }
    if instance == nil {
      return apierr.InstanceNotFound(instanceID)
    }
    if instance.IsSubmitted {
      return apierr.AlreadySubmitted()
    }

    summary, err := s.progressService.Progress(ctx, tx, instanceID)
    if err != nil {
      return err
    }
    if !summary.Complete() {
      return apierr.IncompleteRequiredItems(len(summary.Remaining))
    }

    now := time.Now()
    ok, err := s.instanceRepo.MarkSubmitted(ctx, tx, instanceID, now)
    if err != nil {
      return fmt.Errorf("mark submitted: %w", err)
    }
    if !ok {
      // Lost the submission race to a concurrent caller.
      return apierr.AlreadySubmitted()
    }

    tmpl, err := s.templateRepo.GetByID(ctx, tx, instance.TemplateID)
    if err != nil {
      return fmt.Errorf("read template: %w", err)
    }
    if tmpl != nil {
      slotKey = SlotKey{WorkArea: tmpl.WorkArea, ShiftPeriod: tmpl.ShiftPeriod, Date: instance.TargetDate}
      if err := s.slotLockRepo.ClearByKey(ctx, tx, slotKey.WorkArea, slotKey.ShiftPeriod, slotKey.Date, now); err != nil {
        return fmt.Errorf("release slot lock on submit: %w", err)
      }
    }

    instance.IsCompleted = true
    instance.IsSubmitted = true
    instance.CompletedAt = &now
    instance.SubmittedAt = &now
    submitted = instance
    return nil
  })
  if err != nil {
    return nil, err
  }
  s.log.Info("checklist instance submitted", "instance_id", instanceID, "actor_id", actor)
  if s.events != nil && slotKey.WorkArea != "" {
    if err := s.events.PublishSlotEvent(ctx, SlotEvent{
      Type:        "instance_submitted",
      WorkArea:    slotKey.WorkArea,
      ShiftPeriod: slotKey.ShiftPeriod,
      Date:        slotKey.Date.Format("2006-01-02"),
      EmployeeID:  actor,
    }); err != nil {
      s.log.Warn("slot event publish failed", "event", "instance_submitted", "error", err)
    }
  }
  return submitted, nil
}

// loadMutable fetches the instance and the template item behind a mutation,
// rejecting submitted instances and items from other templates.
func (s *checklistInstanceService) loadMutable(ctx context.Context, tx *gorm.DB, instanceID, itemID uuid.UUID) (*types.ChecklistInstance, *types.ChecklistItem, error) {
  instance, err := s.instanceRepo.GetByID(ctx, tx, instanceID)
  if err != nil {
    return nil, nil, fmt.Errorf("read instance: %w", err)
  }
  if instance == nil {
    return nil, nil, apierr.InstanceNotFound(instanceID)
  }
  if instance.IsSubmitted {
    return nil, nil, apierr.AlreadySubmitted()
  }
  tmpl, err := s.templateRepo.GetWithTree(ctx, tx, instance.TemplateID)
  if err != nil {
    return nil, nil, fmt.Errorf("read template tree: %w", err)
  }
  if tmpl == nil {
    return nil, nil, apierr.TemplateNotFound(instance.TemplateID)
  }
  for _, item := range tmpl.Items {
    if item.ID == itemID {
      return instance, item, nil
    }
  }
  return nil, nil, apierr.ItemNotFound(itemID)
}
