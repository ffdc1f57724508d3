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

// SlotLockRepo holds the contended row per (work_area, shift_period,
// lock_date). Every transition is a single guarded statement so two
// concurrent acquirers can never both win: either the unique index rejects
// the second insert or the guarded UPDATE matches zero rows for the loser.
type SlotLockRepo interface {
  GetByKey(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod string, lockDate time.Time) (*types.SlotLock, error)
  // InsertLocked creates the row already owned by the requester. Returns
  // false when a row for the key exists (locked or not).
  InsertLocked(ctx context.Context, tx *gorm.DB, row *types.SlotLock) (bool, error)
  // Grab takes ownership when the lock is free, already owned by the
  // requester, or expired (locked_at before cutoff). Expiry takeover and
  // grant happen in the same statement.
  Grab(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod string, lockDate time.Time, requester uuid.UUID, cutoff, now time.Time) (bool, error)
  // ReleaseOwned unlocks only when the requester holds the lock.
  ReleaseOwned(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod string, lockDate time.Time, requester uuid.UUID, now time.Time) (bool, error)
  // ClearExpired tombstones a lock whose locked_at is before cutoff.
  ClearExpired(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod string, lockDate time.Time, cutoff, now time.Time) error
  // ClearByKey force-unlocks the slot regardless of owner (submission path).
  ClearByKey(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod string, lockDate time.Time, now time.Time) error
}

type slotLockRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSlotLockRepo(db *gorm.DB, baseLog *logger.Logger) SlotLockRepo {
  return &slotLockRepo{db: db, log: baseLog.With("repo", "SlotLockRepo")}
}

func (r *slotLockRepo) GetByKey(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod string, lockDate time.Time) (*types.SlotLock, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var row types.SlotLock
  err := transaction.WithContext(ctx).
    Preload("LockedBy").
    Where("work_area = ? AND shift_period = ? AND lock_date = ?", workArea, shiftPeriod, lockDate).
    First(&row).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &row, nil
}

func (r *slotLockRepo) InsertLocked(ctx context.Context, tx *gorm.DB, row *types.SlotLock) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if row == nil {
    return false, nil
  }
  res := transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "work_area"}, {Name: "shift_period"}, {Name: "lock_date"}},
      DoNothing: true,
    }).
    Create(row)
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected == 1, nil
}

func (r *slotLockRepo) Grab(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod string, lockDate time.Time, requester uuid.UUID, cutoff, now time.Time) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if requester == uuid.Nil {
    return false, nil
  }
  res := transaction.WithContext(ctx).
    Model(&types.SlotLock{}).
    Where("work_area = ? AND shift_period = ? AND lock_date = ?", workArea, shiftPeriod, lockDate).
    Where("is_locked = ? OR locked_by_id = ? OR locked_at < ?", false, requester, cutoff).
    Updates(map[string]interface{}{
      "is_locked":    true,
      "locked_by_id": requester,
      "locked_at":    now,
      "updated_at":   now,
    })
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected == 1, nil
}

func (r *slotLockRepo) ReleaseOwned(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod string, lockDate time.Time, requester uuid.UUID, now time.Time) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if requester == uuid.Nil {
    return false, nil
  }
  res := transaction.WithContext(ctx).
    Model(&types.SlotLock{}).
    Where("work_area = ? AND shift_period = ? AND lock_date = ?", workArea, shiftPeriod, lockDate).
    Where("is_locked = ? AND locked_by_id = ?", true, requester).
    Updates(map[string]interface{}{
      "is_locked":    false,
      "locked_by_id": nil,
      "locked_at":    nil,
      "updated_at":   now,
    })
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected == 1, nil
}

func (r *slotLockRepo) ClearExpired(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod string, lockDate time.Time, cutoff, now time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).
    Model(&types.SlotLock{}).
    Where("work_area = ? AND shift_period = ? AND lock_date = ?", workArea, shiftPeriod, lockDate).
    Where("is_locked = ? AND locked_at < ?", true, cutoff).
    Updates(map[string]interface{}{
      "is_locked":    false,
      "locked_by_id": nil,
      "locked_at":    nil,
      "updated_at":   now,
    }).Error
}

func (r *slotLockRepo) ClearByKey(ctx context.Context, tx *gorm.DB, workArea, shiftPeriod string, lockDate time.Time, now time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).
    Model(&types.SlotLock{}).
    Where("work_area = ? AND shift_period = ? AND lock_date = ?", workArea, shiftPeriod, lockDate).
    Where("is_locked = ?", true).
    Updates(map[string]interface{}{
      "is_locked":    false,
      "locked_by_id": nil,
      "locked_at":    nil,
      "updated_at":   now,
    }).Error
}
