package services

import (
  "context"
  "fmt"
  "sync"
  "sync/atomic"
  "testing"
  "time"

  "github.com/google/uuid"
  "go.uber.org/zap"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/yungbote/shiftcheck-backend/internal/logger"
  "github.com/yungbote/shiftcheck-backend/internal/repos"
  "github.com/yungbote/shiftcheck-backend/internal/types"
)

var testDBSeq int64

// newTestDB opens a private in-memory database per test. The pool is pinned
// to one connection so concurrent callers serialize the way the guarded
// statements expect a real database to serialize them.
func newTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
  db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
    Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    t.Fatalf("open test db: %v", err)
  }
  sqlDB, err := db.DB()
  if err != nil {
    t.Fatalf("unwrap test db: %v", err)
  }
  sqlDB.SetMaxOpenConns(1)
  t.Cleanup(func() { _ = sqlDB.Close() })

  if err := db.AutoMigrate(
    &types.Employee{},
    &types.ChecklistTemplate{},
    &types.ChecklistItem{},
    &types.ChecklistItemConnection{},
    &types.ChecklistInstance{},
    &types.ItemProgress{},
    &types.ConnectedItemProgress{},
    &types.SlotLock{},
    &types.InventoryItem{},
    &types.Precaution{},
    &types.Manual{},
  ); err != nil {
    t.Fatalf("migrate test db: %v", err)
  }
  return db
}

func newTestLogger() *logger.Logger {
  return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// recordingPublisher captures slot events in-process for assertions.
type recordingPublisher struct {
  mu     sync.Mutex
  events []SlotEvent
}

func (p *recordingPublisher) PublishSlotEvent(_ context.Context, event SlotEvent) error {
  p.mu.Lock()
  defer p.mu.Unlock()
  p.events = append(p.events, event)
  return nil
}

func (p *recordingPublisher) byType(eventType string) []SlotEvent {
  p.mu.Lock()
  defer p.mu.Unlock()
  var out []SlotEvent
  for _, e := range p.events {
    if e.Type == eventType {
      out = append(out, e)
    }
  }
  return out
}

type testEnv struct {
  db           *gorm.DB
  locks        SlotLockService
  instances    ChecklistInstanceService
  templates    ChecklistTemplateService
  progress     ProgressService
  slotLockRepo repos.SlotLockRepo
  published    *recordingPublisher
}

func newTestEnv(t *testing.T, ttl time.Duration) *testEnv {
  t.Helper()
  db := newTestDB(t)
  log := newTestLogger()

  templateRepo := repos.NewChecklistTemplateRepo(db, log)
  instanceRepo := repos.NewChecklistInstanceRepo(db, log)
  progressRepo := repos.NewItemProgressRepo(db, log)
  connectedRepo := repos.NewConnectedItemProgressRepo(db, log)
  slotLockRepo := repos.NewSlotLockRepo(db, log)
  inventoryRepo := repos.NewInventoryItemRepo(db, log)

  published := &recordingPublisher{}
  resolver := NewConnectionResolver(log, connectedRepo, inventoryRepo)
  progress := NewProgressService(db, log, instanceRepo, templateRepo, progressRepo, connectedRepo)

  return &testEnv{
    db:           db,
    locks:        NewSlotLockService(db, log, slotLockRepo, published, ttl),
    instances:    NewChecklistInstanceService(db, log, instanceRepo, templateRepo, progressRepo, slotLockRepo, resolver, progress, published),
    templates:    NewChecklistTemplateService(db, log, templateRepo),
    progress:     progress,
    slotLockRepo: slotLockRepo,
    published:    published,
  }
}

func seedEmployee(t *testing.T, db *gorm.DB, name string) *types.Employee {
  t.Helper()
  row := &types.Employee{ID: uuid.New(), Name: name, Email: name + "@example.test", Role: "staff"}
  if err := db.Create(row).Error; err != nil {
    t.Fatalf("seed employee %s: %v", name, err)
  }
  return row
}

func seedInventory(t *testing.T, db *gorm.DB, name string, stock int) *types.InventoryItem {
  t.Helper()
  row := &types.InventoryItem{ID: uuid.New(), Name: name, Unit: "ea", Stock: stock}
  if err := db.Create(row).Error; err != nil {
    t.Fatalf("seed inventory %s: %v", name, err)
  }
  return row
}

func seedTemplate(t *testing.T, db *gorm.DB, workArea, shiftPeriod string) *types.ChecklistTemplate {
  t.Helper()
  row := &types.ChecklistTemplate{ID: uuid.New(), Name: workArea + " " + shiftPeriod, WorkArea: workArea, ShiftPeriod: shiftPeriod}
  if err := db.Create(row).Error; err != nil {
    t.Fatalf("seed template: %v", err)
  }
  return row
}

func seedItem(t *testing.T, db *gorm.DB, templateID uuid.UUID, parentID *uuid.UUID, content string, required bool, sortOrder int) *types.ChecklistItem {
  t.Helper()
  row := &types.ChecklistItem{
    ID:         uuid.New(),
    TemplateID: templateID,
    ParentID:   parentID,
    SortOrder:  sortOrder,
    Content:    content,
    IsRequired: required,
  }
  if err := db.Create(row).Error; err != nil {
    t.Fatalf("seed item %s: %v", content, err)
  }
  return row
}

func seedConnection(t *testing.T, db *gorm.DB, itemID uuid.UUID, kind types.ConnectionKind, resourceID uuid.UUID, stockDelta int, required bool) *types.ChecklistItemConnection {
  t.Helper()
  row := &types.ChecklistItemConnection{
    ID:         uuid.New(),
    ItemID:     itemID,
    Kind:       kind,
    ResourceID: resourceID,
    StockDelta: stockDelta,
    IsRequired: required,
  }
  if err := db.Create(row).Error; err != nil {
    t.Fatalf("seed connection: %v", err)
  }
  return row
}

func testDay() time.Time {
  return time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
}
