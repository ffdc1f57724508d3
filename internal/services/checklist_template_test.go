package services

import (
  "context"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/yungbote/shiftcheck-backend/internal/types"
)

func item(id uuid.UUID, parent *uuid.UUID, sort int) *types.ChecklistItem {
  return &types.ChecklistItem{ID: id, ParentID: parent, SortOrder: sort, Content: "item", IsRequired: true}
}

func TestBuildItemForestPreservesOrderAndNesting(t *testing.T) {
  rootA, rootB, child, grandchild := uuid.New(), uuid.New(), uuid.New(), uuid.New()
  forest, err := buildItemForest([]*types.ChecklistItem{
    item(rootA, nil, 0),
    item(rootB, nil, 1),
    item(child, &rootA, 0),
    item(grandchild, &child, 0),
  })
  if err != nil {
    t.Fatalf("build forest: %v", err)
  }
  if len(forest) != 2 {
    t.Fatalf("roots: want=2 got=%d", len(forest))
  }
  if forest[0].Item.ID != rootA || forest[1].Item.ID != rootB {
    t.Fatalf("root order not preserved")
  }
  if len(forest[0].Children) != 1 || forest[0].Children[0].Item.ID != child {
    t.Fatalf("child not attached under its parent")
  }
  if len(forest[0].Children[0].Children) != 1 || forest[0].Children[0].Children[0].Item.ID != grandchild {
    t.Fatalf("grandchild not attached under its parent")
  }
}

func TestBuildItemForestRejectsMissingParent(t *testing.T) {
  missing := uuid.New()
  _, err := buildItemForest([]*types.ChecklistItem{item(uuid.New(), &missing, 0)})
  if err == nil || !strings.Contains(err.Error(), "missing parent") {
    t.Fatalf("missing parent: want error got %v", err)
  }
}

func TestBuildItemForestRejectsCycle(t *testing.T) {
  a, b := uuid.New(), uuid.New()
  _, err := buildItemForest([]*types.ChecklistItem{
    item(uuid.New(), nil, 0),
    item(a, &b, 1),
    item(b, &a, 2),
  })
  if err == nil || !strings.Contains(err.Error(), "cycle") {
    t.Fatalf("cycle: want error got %v", err)
  }
}

func TestBuildItemForestRejectsExcessiveDepth(t *testing.T) {
  items := make([]*types.ChecklistItem, 0, maxTreeDepth+2)
  var parent *uuid.UUID
  for i := 0; i < maxTreeDepth+1; i++ {
    id := uuid.New()
    items = append(items, item(id, parent, i))
    next := id
    parent = &next
  }
  _, err := buildItemForest(items)
  if err == nil || !strings.Contains(err.Error(), "depth") {
    t.Fatalf("deep chain: want depth error got %v", err)
  }
}

func TestGetTreeReturnsOrderedForest(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  tmpl := seedTemplate(t, env.db, "kitchen", types.ShiftPeriodOpen)
  second := seedItem(t, env.db, tmpl.ID, nil, "second", true, 1)
  first := seedItem(t, env.db, tmpl.ID, nil, "first", true, 0)
  seedItem(t, env.db, tmpl.ID, &first.ID, "first sub", true, 0)

  got, forest, err := env.templates.GetTree(ctx, tmpl.ID)
  if err != nil {
    t.Fatalf("get tree: %v", err)
  }
  if got.ID != tmpl.ID {
    t.Fatalf("template id: want=%s got=%s", tmpl.ID, got.ID)
  }
  if len(forest) != 2 {
    t.Fatalf("roots: want=2 got=%d", len(forest))
  }
  if forest[0].Item.ID != first.ID || forest[1].Item.ID != second.ID {
    t.Fatalf("roots not ordered by sort_order")
  }
  if len(forest[0].Children) != 1 {
    t.Fatalf("first root children: want=1 got=%d", len(forest[0].Children))
  }
}

func TestListFiltersByWorkAreaAndShift(t *testing.T) {
  env := newTestEnv(t, time.Hour)
  ctx := context.Background()
  kitchen := seedTemplate(t, env.db, "kitchen", types.ShiftPeriodOpen)
  seedTemplate(t, env.db, "kitchen", types.ShiftPeriodClose)
  seedTemplate(t, env.db, "hall", types.ShiftPeriodOpen)

  out, err := env.templates.List(ctx, "kitchen", types.ShiftPeriodOpen, "")
  if err != nil {
    t.Fatalf("list: %v", err)
  }
  if len(out) != 1 || out[0].ID != kitchen.ID {
    t.Fatalf("filtered list: want only %s got %d rows", kitchen.ID, len(out))
  }
}
