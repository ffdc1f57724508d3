package services

import (
  "context"
  "errors"
  "sync"
  "sync/atomic"
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/yungbote/shiftcheck-backend/internal/apierr"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

func TestAcquireGrantsExactlyOneOwnerUnderContention(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  key := SlotKey{WorkArea: "kitchen", ShiftPeriod: types.ShiftPeriodOpen, Date: testDay()}

  const workers = 8
  requesters := make([]uuid.UUID, workers)
  for i := range requesters {
    requesters[i] = seedEmployee(t, env.db, "worker").ID
  }

  var granted int32
  var wg sync.WaitGroup
  for _, id := range requesters {
    wg.Add(1)
    go func(requester uuid.UUID) {
      defer wg.Done()
      res, err := env.locks.Acquire(ctx, nil, key, requester)
      if err != nil {
        t.Errorf("acquire: %v", err)
        return
      }
      if res.Granted {
        atomic.AddInt32(&granted, 1)
      } else if res.OwnedByID == nil {
        t.Errorf("denied acquire carries no owner")
      }
    }(id)
  }
  wg.Wait()

  if granted != 1 {
    t.Fatalf("concurrent acquire grants: want=1 got=%d", granted)
  }
  if got := len(env.published.byType("slot_locked")); got != 1 {
    t.Fatalf("slot_locked events: want=1 got=%d", got)
  }
}

func TestAcquireIsReentrantForTheOwner(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  owner := seedEmployee(t, env.db, "hana")
  key := SlotKey{WorkArea: "hall", ShiftPeriod: types.ShiftPeriodMid, Date: testDay()}

  for i := 0; i < 3; i++ {
    res, err := env.locks.Acquire(ctx, nil, key, owner.ID)
    if err != nil {
      t.Fatalf("acquire #%d: %v", i+1, err)
    }
    if !res.Granted {
      t.Fatalf("acquire #%d: want granted", i+1)
    }
  }
}

func TestAcquireDeniedReportsOwner(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  owner := seedEmployee(t, env.db, "hana")
  other := seedEmployee(t, env.db, "minsu")
  key := SlotKey{WorkArea: "hall", ShiftPeriod: types.ShiftPeriodClose, Date: testDay()}

  if res, err := env.locks.Acquire(ctx, nil, key, owner.ID); err != nil || !res.Granted {
    t.Fatalf("owner acquire: granted=%v err=%v", res != nil && res.Granted, err)
  }
  res, err := env.locks.Acquire(ctx, nil, key, other.ID)
  if err != nil {
    t.Fatalf("contender acquire: %v", err)
  }
  if res.Granted {
    t.Fatalf("contender acquire: want denied")
  }
  if res.OwnedByID == nil || *res.OwnedByID != owner.ID {
    t.Fatalf("denied owner id: want=%s got=%v", owner.ID, res.OwnedByID)
  }
  if res.OwnedByName != owner.Name {
    t.Fatalf("denied owner name: want=%q got=%q", owner.Name, res.OwnedByName)
  }
}

func TestExpiredLockIsTakenOver(t *testing.T) {
  env := newTestEnv(t, 20*time.Millisecond)
  ctx := context.Background()
  first := seedEmployee(t, env.db, "hana")
  second := seedEmployee(t, env.db, "minsu")
  key := SlotKey{WorkArea: "bar", ShiftPeriod: types.ShiftPeriodOpen, Date: testDay()}

  if res, err := env.locks.Acquire(ctx, nil, key, first.ID); err != nil || !res.Granted {
    t.Fatalf("first acquire: granted=%v err=%v", res != nil && res.Granted, err)
  }
  time.Sleep(40 * time.Millisecond)

  res, err := env.locks.Acquire(ctx, nil, key, second.ID)
  if err != nil {
    t.Fatalf("takeover acquire: %v", err)
  }
  if !res.Granted {
    t.Fatalf("takeover acquire: want granted after ttl expiry")
  }

  status, err := env.locks.Status(ctx, key)
  if err != nil {
    t.Fatalf("status: %v", err)
  }
  if !status.IsLocked || status.LockedByID == nil || *status.LockedByID != second.ID {
    t.Fatalf("status after takeover: want locked by %s got=%+v", second.ID, status)
  }
}

func TestStatusReportsExpiredLockAsFree(t *testing.T) {
  env := newTestEnv(t, 20*time.Millisecond)
  ctx := context.Background()
  owner := seedEmployee(t, env.db, "hana")
  key := SlotKey{WorkArea: "bar", ShiftPeriod: types.ShiftPeriodMid, Date: testDay()}

  if res, err := env.locks.Acquire(ctx, nil, key, owner.ID); err != nil || !res.Granted {
    t.Fatalf("acquire: granted=%v err=%v", res != nil && res.Granted, err)
  }
  time.Sleep(40 * time.Millisecond)

  status, err := env.locks.Status(ctx, key)
  if err != nil {
    t.Fatalf("status: %v", err)
  }
  if status.IsLocked {
    t.Fatalf("status after expiry: want unlocked got locked by %v", status.LockedByID)
  }

  // Lazy expiry also tombstones the row itself.
  row, err := env.slotLockRepo.GetByKey(ctx, nil, key.WorkArea, key.ShiftPeriod, key.Date)
  if err != nil {
    t.Fatalf("read lock row: %v", err)
  }
  if row == nil || row.IsLocked || row.LockedByID != nil {
    t.Fatalf("lock row after expiry: want cleared got=%+v", row)
  }
}

func TestReleaseIsIdempotentAndOwnerChecked(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  owner := seedEmployee(t, env.db, "hana")
  other := seedEmployee(t, env.db, "minsu")
  key := SlotKey{WorkArea: "kitchen", ShiftPeriod: types.ShiftPeriodClose, Date: testDay()}

  // Releasing a key that was never locked is a no-op.
  if err := env.locks.Release(ctx, nil, key, owner.ID); err != nil {
    t.Fatalf("release absent key: %v", err)
  }

  if res, err := env.locks.Acquire(ctx, nil, key, owner.ID); err != nil || !res.Granted {
    t.Fatalf("acquire: granted=%v err=%v", res != nil && res.Granted, err)
  }

  // A foreign caller cannot release the owner's lock.
  err := env.locks.Release(ctx, nil, key, other.ID)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeLockNotOwned {
    t.Fatalf("foreign release: want %s got %v", apierr.CodeLockNotOwned, err)
  }
  status, err := env.locks.Status(ctx, key)
  if err != nil {
    t.Fatalf("status: %v", err)
  }
  if !status.IsLocked {
    t.Fatalf("foreign release must not unlock the slot")
  }

  // Owner release succeeds, and releasing again stays a no-op.
  if err := env.locks.Release(ctx, nil, key, owner.ID); err != nil {
    t.Fatalf("owner release: %v", err)
  }
  if err := env.locks.Release(ctx, nil, key, owner.ID); err != nil {
    t.Fatalf("repeat release: %v", err)
  }
  status, err = env.locks.Status(ctx, key)
  if err != nil {
    t.Fatalf("status: %v", err)
  }
  if status.IsLocked {
    t.Fatalf("status after release: want unlocked")
  }
  if got := len(env.published.byType("slot_released")); got != 1 {
    t.Fatalf("slot_released events: want=1 got=%d", got)
  }
}

func TestAcquireNormalizesDateToDayGranularity(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  owner := seedEmployee(t, env.db, "hana")
  other := seedEmployee(t, env.db, "minsu")

  morning := SlotKey{WorkArea: "hall", ShiftPeriod: types.ShiftPeriodOpen, Date: testDay().Add(9 * time.Hour)}
  evening := SlotKey{WorkArea: "hall", ShiftPeriod: types.ShiftPeriodOpen, Date: testDay().Add(21 * time.Hour)}

  if res, err := env.locks.Acquire(ctx, nil, morning, owner.ID); err != nil || !res.Granted {
    t.Fatalf("morning acquire: granted=%v err=%v", res != nil && res.Granted, err)
  }
  res, err := env.locks.Acquire(ctx, nil, evening, other.ID)
  if err != nil {
    t.Fatalf("evening acquire: %v", err)
  }
  if res.Granted {
    t.Fatalf("same-day acquire under a different clock time must hit the same slot")
  }
}
