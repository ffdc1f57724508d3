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

// SlotKey identifies one unit of schedulable checklist work.
type SlotKey struct {
  WorkArea    string
  ShiftPeriod string
  Date        time.Time
}

func (k SlotKey) normalized() SlotKey {
  k.Date = NormalizeDay(k.Date)
  return k
}

type AcquireResult struct {
  Granted     bool       `json:"granted"`
  OwnedByID   *uuid.UUID `json:"owned_by_id,omitempty"`
  OwnedByName string     `json:"owned_by_name,omitempty"`
}

type SlotStatus struct {
  IsLocked     bool       `json:"is_locked"`
  LockedByID   *uuid.UUID `json:"locked_by_id,omitempty"`
  LockedByName string     `json:"locked_by_name,omitempty"`
  LockedAt     *time.Time `json:"locked_at,omitempty"`
}

// SlotLockService grants exclusive, TTL-bounded ownership of a slot. Acquire
// never blocks: the loser of a race is told who holds the lock and the UI
// decides whether to poll Status. A grant is advisory only; it serializes
// first instance creation and stock-affecting completions, nothing more.
type SlotLockService interface {
  Acquire(ctx context.Context, tx *gorm.DB, key SlotKey, requester uuid.UUID) (*AcquireResult, error)
  Release(ctx context.Context, tx *gorm.DB, key SlotKey, requester uuid.UUID) error
  Status(ctx context.Context, key SlotKey) (*SlotStatus, error)
}

type slotLockService struct {
  db           *gorm.DB
  log          *logger.Logger
  slotLockRepo repos.SlotLockRepo
  events       SlotEventPublisher
  ttl          time.Duration
}

func NewSlotLockService(
  db *gorm.DB,
  baseLog *logger.Logger,
  slotLockRepo repos.SlotLockRepo,
  events SlotEventPublisher,
  ttl time.Duration,
) SlotLockService {
  serviceLog := baseLog.With("service", "SlotLockService")
  return &slotLockService{
    db:           db,
    log:          serviceLog,
    slotLockRepo: slotLockRepo,
    events:       events,
    ttl:          ttl,
  }
}

func (s *slotLockService) Acquire(ctx context.Context, tx *gorm.DB, key SlotKey, requester uuid.UUID) (*AcquireResult, error) {
  if requester == uuid.Nil {
    return nil, fmt.Errorf("requester is required to acquire a slot lock")
  }
  key = key.normalized()
  now := time.Now()
  cutoff := now.Add(-s.ttl)

  // First touch of the key: create the row already owned. The unique slot
  // index rejects the insert when the row exists, locked or not.
  inserted, err := s.slotLockRepo.InsertLocked(ctx, tx, &types.SlotLock{
    ID:          uuid.New(),
    WorkArea:    key.WorkArea,
    ShiftPeriod: key.ShiftPeriod,
    LockDate:    key.Date,
    IsLocked:    true,
    LockedByID:  &requester,
    LockedAt:    &now,
    CreatedAt:   now,
    UpdatedAt:   now,
  })
  if err != nil {
    return nil, fmt.Errorf("acquire slot lock: %w", err)
  }
  if inserted {
    s.publish(ctx, "slot_locked", key, requester)
    return &AcquireResult{Granted: true}, nil
  }

  // Row exists: take it over in one guarded statement when it is free,
  // already ours (re-entrant, refreshes the TTL window), or expired.
  granted, err := s.slotLockRepo.Grab(ctx, tx, key.WorkArea, key.ShiftPeriod, key.Date, requester, cutoff, now)
  if err != nil {
    return nil, fmt.Errorf("acquire slot lock: %w", err)
  }
  if granted {
    s.publish(ctx, "slot_locked", key, requester)
    return &AcquireResult{Granted: true}, nil
  }

  row, err := s.slotLockRepo.GetByKey(ctx, tx, key.WorkArea, key.ShiftPeriod, key.Date)
  if err != nil {
    return nil, fmt.Errorf("read slot lock owner: %w", err)
  }
  res := &AcquireResult{Granted: false}
  if row != nil && row.LockedByID != nil {
    res.OwnedByID = row.LockedByID
    if row.LockedBy != nil {
      res.OwnedByName = row.LockedBy.Name
    }
  }
  return res, nil
}

func (s *slotLockService) Release(ctx context.Context, tx *gorm.DB, key SlotKey, requester uuid.UUID) error {
  if requester == uuid.Nil {
    return fmt.Errorf("requester is required to release a slot lock")
  }
  key = key.normalized()
  now := time.Now()

  released, err := s.slotLockRepo.ReleaseOwned(ctx, tx, key.WorkArea, key.ShiftPeriod, key.Date, requester, now)
  if err != nil {
    return fmt.Errorf("release slot lock: %w", err)
  }
  if released {
    s.publish(ctx, "slot_released", key, requester)
    return nil
  }

  // Releasing an unlocked or absent key is a no-op. Only a foreign owner is
  // reported back to the caller.
  row, err := s.slotLockRepo.GetByKey(ctx, tx, key.WorkArea, key.ShiftPeriod, key.Date)
  if err != nil {
    return fmt.Errorf("read slot lock: %w", err)
  }
  if row == nil || !row.IsLocked || s.expired(row, now) {
    return nil
  }
  if row.LockedByID != nil && *row.LockedByID != requester {
    return apierr.LockNotOwned()
  }
  return nil
}

func (s *slotLockService) Status(ctx context.Context, key SlotKey) (*SlotStatus, error) {
  key = key.normalized()
  now := time.Now()
  cutoff := now.Add(-s.ttl)

  // Lazy expiry hygiene: tombstone a stale lock so the row reflects what we
  // report. Acquire does not depend on this; its guarded update takes over
  // expired locks on its own.
  if err := s.slotLockRepo.ClearExpired(ctx, nil, key.WorkArea, key.ShiftPeriod, key.Date, cutoff, now); err != nil {
    return nil, fmt.Errorf("clear expired slot lock: %w", err)
  }

  row, err := s.slotLockRepo.GetByKey(ctx, nil, key.WorkArea, key.ShiftPeriod, key.Date)
  if err != nil {
    return nil, fmt.Errorf("read slot lock: %w", err)
  }
  if row == nil || !row.IsLocked || s.expired(row, now) {
    return &SlotStatus{IsLocked: false}, nil
  }
  status := &SlotStatus{
    IsLocked:   true,
    LockedByID: row.LockedByID,
    LockedAt:   row.LockedAt,
  }
  if row.LockedBy != nil {
    status.LockedByName = row.LockedBy.Name
  }
  return status, nil
}

func (s *slotLockService) expired(row *types.SlotLock, now time.Time) bool {
  if row == nil || row.LockedAt == nil {
    return false
  }
  return now.Sub(*row.LockedAt) > s.ttl
}

func (s *slotLockService) publish(ctx context.Context, event string, key SlotKey, actor uuid.UUID) {
  if s.events == nil {
    return
  }
  if err := s.events.PublishSlotEvent(ctx, SlotEvent{
    Type:        event,
    WorkArea:    key.WorkArea,
    ShiftPeriod: key.ShiftPeriod,
    Date:        key.Date.Format("2006-01-02"),
    EmployeeID:  actor,
  }); err != nil {
    s.log.Warn("slot event publish failed", "event", event, "error", err)
  }
}

// NormalizeDay truncates to midnight local time; instances and locks are
// day-granular.
func NormalizeDay(t time.Time) time.Time {
  y, m, d := t.Date()
  return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
