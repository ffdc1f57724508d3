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

func TestGetOrCreateIsIdempotentUnderContention(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  tmpl := seedTemplate(t, env.db, "kitchen", types.ShiftPeriodOpen)
  seedItem(t, env.db, tmpl.ID, nil, "wipe counters", true, 0)

  const callers = 6
  actors := make([]uuid.UUID, callers)
  for i := range actors {
    actors[i] = seedEmployee(t, env.db, "opener").ID
  }

  ids := make([]uuid.UUID, callers)
  var wg sync.WaitGroup
  for i := range actors {
    wg.Add(1)
    go func(i int) {
      defer wg.Done()
      instance, err := env.instances.GetOrCreate(ctx, tmpl.ID, testDay(), actors[i])
      if err != nil {
        t.Errorf("get or create: %v", err)
        return
      }
      ids[i] = instance.ID
    }(i)
  }
  wg.Wait()

  for i := 1; i < callers; i++ {
    if ids[i] != ids[0] {
      t.Fatalf("instance ids diverge: want=%s got=%s", ids[0], ids[i])
    }
  }
  var count int64
  if err := env.db.Model(&types.ChecklistInstance{}).
    Where("template_id = ?", tmpl.ID).Count(&count).Error; err != nil {
    t.Fatalf("count instances: %v", err)
  }
  if count != 1 {
    t.Fatalf("instance rows: want=1 got=%d", count)
  }
}

func TestGetOrCreateRejectsUnknownTemplate(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  actor := seedEmployee(t, env.db, "hana")

  _, err := env.instances.GetOrCreate(context.Background(), uuid.New(), testDay(), actor.ID)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeTemplateNotFound {
    t.Fatalf("unknown template: want %s got %v", apierr.CodeTemplateNotFound, err)
  }
}

func TestCompleteItemAdjustsStockExactlyOnce(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  actor := seedEmployee(t, env.db, "hana")
  towels := seedInventory(t, env.db, "towels", 10)
  tmpl := seedTemplate(t, env.db, "kitchen", types.ShiftPeriodOpen)
  item := seedItem(t, env.db, tmpl.ID, nil, "restock towels", true, 0)
  seedConnection(t, env.db, item.ID, types.ConnectionKindInventory, towels.ID, -2, true)

  instance, err := env.instances.GetOrCreate(ctx, tmpl.ID, testDay(), actor.ID)
  if err != nil {
    t.Fatalf("get or create: %v", err)
  }

  _, results, err := env.instances.MarkItemComplete(ctx, instance.ID, item.ID, actor.ID, "")
  if err != nil {
    t.Fatalf("first complete: %v", err)
  }
  if len(results) != 1 || results[0].AlreadyApplied {
    t.Fatalf("first apply: want one fresh result got=%+v", results)
  }
  if results[0].PreviousStock == nil || *results[0].PreviousStock != 10 {
    t.Fatalf("previous stock snapshot: want=10 got=%v", results[0].PreviousStock)
  }
  if results[0].UpdatedStock == nil || *results[0].UpdatedStock != 8 {
    t.Fatalf("updated stock snapshot: want=8 got=%v", results[0].UpdatedStock)
  }

  // Completing again must not touch stock; the first snapshot is replayed.
  _, results, err = env.instances.MarkItemComplete(ctx, instance.ID, item.ID, actor.ID, "")
  if err != nil {
    t.Fatalf("repeat complete: %v", err)
  }
  if len(results) != 1 || !results[0].AlreadyApplied {
    t.Fatalf("repeat apply: want already-applied got=%+v", results)
  }
  if results[0].UpdatedStock == nil || *results[0].UpdatedStock != 8 {
    t.Fatalf("replayed snapshot: want=8 got=%v", results[0].UpdatedStock)
  }

  var current types.InventoryItem
  if err := env.db.First(&current, "id = ?", towels.ID).Error; err != nil {
    t.Fatalf("read inventory: %v", err)
  }
  if current.Stock != 8 {
    t.Fatalf("stock after two completes: want=8 got=%d", current.Stock)
  }
}

func TestConcurrentCompletesApplyStockOnce(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  actor := seedEmployee(t, env.db, "hana")
  gloves := seedInventory(t, env.db, "gloves", 5)
  tmpl := seedTemplate(t, env.db, "kitchen", types.ShiftPeriodMid)
  item := seedItem(t, env.db, tmpl.ID, nil, "use gloves", true, 0)
  seedConnection(t, env.db, item.ID, types.ConnectionKindInventory, gloves.ID, -1, true)

  instance, err := env.instances.GetOrCreate(ctx, tmpl.ID, testDay(), actor.ID)
  if err != nil {
    t.Fatalf("get or create: %v", err)
  }

  const callers = 6
  var fresh int32
  var wg sync.WaitGroup
  for i := 0; i < callers; i++ {
    wg.Add(1)
    go func() {
      defer wg.Done()
      _, results, err := env.instances.MarkItemComplete(ctx, instance.ID, item.ID, actor.ID, "")
      if err != nil {
        t.Errorf("complete: %v", err)
        return
      }
      if len(results) == 1 && !results[0].AlreadyApplied {
        atomic.AddInt32(&fresh, 1)
      }
    }()
  }
  wg.Wait()

  if fresh != 1 {
    t.Fatalf("fresh stock applications: want=1 got=%d", fresh)
  }
  var current types.InventoryItem
  if err := env.db.First(&current, "id = ?", gloves.ID).Error; err != nil {
    t.Fatalf("read inventory: %v", err)
  }
  if current.Stock != 4 {
    t.Fatalf("stock after %d concurrent completes: want=4 got=%d", callers, current.Stock)
  }
}

func TestInsufficientStockRollsBackTheCompletion(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  actor := seedEmployee(t, env.db, "hana")
  bleach := seedInventory(t, env.db, "bleach", 1)
  tmpl := seedTemplate(t, env.db, "kitchen", types.ShiftPeriodClose)
  item := seedItem(t, env.db, tmpl.ID, nil, "sanitize", true, 0)
  conn := seedConnection(t, env.db, item.ID, types.ConnectionKindInventory, bleach.ID, -3, true)

  instance, err := env.instances.GetOrCreate(ctx, tmpl.ID, testDay(), actor.ID)
  if err != nil {
    t.Fatalf("get or create: %v", err)
  }

  _, _, err = env.instances.MarkItemComplete(ctx, instance.ID, item.ID, actor.ID, "")
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeInsufficientStock {
    t.Fatalf("underflow complete: want %s got %v", apierr.CodeInsufficientStock, err)
  }

  // The whole transaction rolled back: no stock change, no progress rows.
  var current types.InventoryItem
  if err := env.db.First(&current, "id = ?", bleach.ID).Error; err != nil {
    t.Fatalf("read inventory: %v", err)
  }
  if current.Stock != 1 {
    t.Fatalf("stock after rejected complete: want=1 got=%d", current.Stock)
  }
  var progressCount, connectedCount int64
  env.db.Model(&types.ItemProgress{}).Where("instance_id = ?", instance.ID).Count(&progressCount)
  env.db.Model(&types.ConnectedItemProgress{}).Where("connection_id = ?", conn.ID).Count(&connectedCount)
  if progressCount != 0 || connectedCount != 0 {
    t.Fatalf("progress rows after rollback: want=0/0 got=%d/%d", progressCount, connectedCount)
  }
}

func TestUncompleteDoesNotRestoreStock(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  actor := seedEmployee(t, env.db, "hana")
  soap := seedInventory(t, env.db, "soap", 4)
  tmpl := seedTemplate(t, env.db, "hall", types.ShiftPeriodOpen)
  item := seedItem(t, env.db, tmpl.ID, nil, "refill soap", true, 0)
  seedConnection(t, env.db, item.ID, types.ConnectionKindInventory, soap.ID, -1, true)

  instance, err := env.instances.GetOrCreate(ctx, tmpl.ID, testDay(), actor.ID)
  if err != nil {
    t.Fatalf("get or create: %v", err)
  }
  if _, _, err := env.instances.MarkItemComplete(ctx, instance.ID, item.ID, actor.ID, ""); err != nil {
    t.Fatalf("complete: %v", err)
  }
  if err := env.instances.MarkItemIncomplete(ctx, instance.ID, item.ID, actor.ID); err != nil {
    t.Fatalf("uncomplete: %v", err)
  }

  var current types.InventoryItem
  if err := env.db.First(&current, "id = ?", soap.ID).Error; err != nil {
    t.Fatalf("read inventory: %v", err)
  }
  if current.Stock != 3 {
    t.Fatalf("stock after uncomplete: want=3 got=%d", current.Stock)
  }

  // Re-completing replays the original application instead of spending again.
  _, results, err := env.instances.MarkItemComplete(ctx, instance.ID, item.ID, actor.ID, "")
  if err != nil {
    t.Fatalf("re-complete: %v", err)
  }
  if len(results) != 1 || !results[0].AlreadyApplied {
    t.Fatalf("re-complete apply: want already-applied got=%+v", results)
  }
  if err := env.db.First(&current, "id = ?", soap.ID).Error; err != nil {
    t.Fatalf("read inventory: %v", err)
  }
  if current.Stock != 3 {
    t.Fatalf("stock after re-complete: want=3 got=%d", current.Stock)
  }
}

func TestSubmitRequiresAllRequiredWork(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  actor := seedEmployee(t, env.db, "hana")
  tmpl := seedTemplate(t, env.db, "hall", types.ShiftPeriodMid)
  first := seedItem(t, env.db, tmpl.ID, nil, "sweep", true, 0)
  seedItem(t, env.db, tmpl.ID, nil, "mop", true, 1)

  instance, err := env.instances.GetOrCreate(ctx, tmpl.ID, testDay(), actor.ID)
  if err != nil {
    t.Fatalf("get or create: %v", err)
  }
  if _, _, err := env.instances.MarkItemComplete(ctx, instance.ID, first.ID, actor.ID, ""); err != nil {
    t.Fatalf("complete: %v", err)
  }

  _, err = env.instances.Submit(ctx, instance.ID, actor.ID)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeIncompleteRequiredItems {
    t.Fatalf("early submit: want %s got %v", apierr.CodeIncompleteRequiredItems, err)
  }

  var row types.ChecklistInstance
  if err := env.db.First(&row, "id = ?", instance.ID).Error; err != nil {
    t.Fatalf("read instance: %v", err)
  }
  if row.IsSubmitted {
    t.Fatalf("rejected submit must not flip is_submitted")
  }
}

func TestSubmitIsTerminalAndReleasesTheSlot(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  actor := seedEmployee(t, env.db, "hana")
  tmpl := seedTemplate(t, env.db, "bar", types.ShiftPeriodClose)
  item := seedItem(t, env.db, tmpl.ID, nil, "count till", true, 0)
  optional := seedItem(t, env.db, tmpl.ID, nil, "polish glasses", false, 1)

  key := SlotKey{WorkArea: tmpl.WorkArea, ShiftPeriod: tmpl.ShiftPeriod, Date: testDay()}
  if res, err := env.locks.Acquire(ctx, nil, key, actor.ID); err != nil || !res.Granted {
    t.Fatalf("acquire: granted=%v err=%v", res != nil && res.Granted, err)
  }

  instance, err := env.instances.GetOrCreate(ctx, tmpl.ID, testDay(), actor.ID)
  if err != nil {
    t.Fatalf("get or create: %v", err)
  }
  if _, _, err := env.instances.MarkItemComplete(ctx, instance.ID, item.ID, actor.ID, ""); err != nil {
    t.Fatalf("complete: %v", err)
  }

  // Optional items do not gate submission.
  submitted, err := env.instances.Submit(ctx, instance.ID, actor.ID)
  if err != nil {
    t.Fatalf("submit: %v", err)
  }
  if !submitted.IsSubmitted || submitted.SubmittedAt == nil {
    t.Fatalf("submitted instance: want terminal state got=%+v", submitted)
  }

  status, err := env.locks.Status(ctx, key)
  if err != nil {
    t.Fatalf("status: %v", err)
  }
  if status.IsLocked {
    t.Fatalf("slot after submit: want released got locked by %v", status.LockedByID)
  }

  // Every mutation on a submitted instance fails closed.
  var apiErr *apierr.Error
  if _, err := env.instances.Submit(ctx, instance.ID, actor.ID); !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeAlreadySubmitted {
    t.Fatalf("repeat submit: want %s got %v", apierr.CodeAlreadySubmitted, err)
  }
  if _, _, err := env.instances.MarkItemComplete(ctx, instance.ID, optional.ID, actor.ID, ""); !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeAlreadySubmitted {
    t.Fatalf("complete after submit: want %s got %v", apierr.CodeAlreadySubmitted, err)
  }
  if err := env.instances.MarkItemIncomplete(ctx, instance.ID, item.ID, actor.ID); !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeAlreadySubmitted {
    t.Fatalf("uncomplete after submit: want %s got %v", apierr.CodeAlreadySubmitted, err)
  }
  if got := len(env.published.byType("instance_submitted")); got != 1 {
    t.Fatalf("instance_submitted events: want=1 got=%d", got)
  }
}

func TestConcurrentSubmitHasOneWinner(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  actor := seedEmployee(t, env.db, "hana")
  tmpl := seedTemplate(t, env.db, "bar", types.ShiftPeriodOpen)
  item := seedItem(t, env.db, tmpl.ID, nil, "stock fridge", true, 0)

  instance, err := env.instances.GetOrCreate(ctx, tmpl.ID, testDay(), actor.ID)
  if err != nil {
    t.Fatalf("get or create: %v", err)
  }
  if _, _, err := env.instances.MarkItemComplete(ctx, instance.ID, item.ID, actor.ID, ""); err != nil {
    t.Fatalf("complete: %v", err)
  }

  const callers = 4
  var wins, losses int32
  var wg sync.WaitGroup
  for i := 0; i < callers; i++ {
    wg.Add(1)
    go func() {
      defer wg.Done()
      _, err := env.instances.Submit(ctx, instance.ID, actor.ID)
      if err == nil {
        atomic.AddInt32(&wins, 1)
        return
      }
      var apiErr *apierr.Error
      if errors.As(err, &apiErr) && apiErr.Code == apierr.CodeAlreadySubmitted {
        atomic.AddInt32(&losses, 1)
        return
      }
      t.Errorf("submit: %v", err)
    }()
  }
  wg.Wait()

  if wins != 1 || losses != callers-1 {
    t.Fatalf("submit race: want wins=1 losses=%d got wins=%d losses=%d", callers-1, wins, losses)
  }
}

func TestCompleteRejectsForeignItem(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  actor := seedEmployee(t, env.db, "hana")
  tmpl := seedTemplate(t, env.db, "kitchen", types.ShiftPeriodOpen)
  seedItem(t, env.db, tmpl.ID, nil, "preheat oven", true, 0)
  otherTmpl := seedTemplate(t, env.db, "hall", types.ShiftPeriodOpen)
  foreign := seedItem(t, env.db, otherTmpl.ID, nil, "set tables", true, 0)

  instance, err := env.instances.GetOrCreate(ctx, tmpl.ID, testDay(), actor.ID)
  if err != nil {
    t.Fatalf("get or create: %v", err)
  }

  _, _, err = env.instances.MarkItemComplete(ctx, instance.ID, foreign.ID, actor.ID, "")
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeItemNotFound {
    t.Fatalf("foreign item complete: want %s got %v", apierr.CodeItemNotFound, err)
  }
}
