package cartograph

import (
	"context"
	"testing"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/store"
)

func TestTranslateActionInversePerformsUndo(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	id, _ := m.InsertNode(ctx, geometry.Vector3{}, store.RoleObject, mapper.InsertOptions{Type: "grass", Radius: 1})

	act := &TranslateAction{Mapper: m, Target: id, Offset: geometry.Vector3{X: 5, Y: 0}}
	inv, err := act.Perform(ctx)
	if err != nil {
		t.Fatal(err)
	}
	center, _ := m.Node(id).Center(ctx)
	if center.X != 5 {
		t.Fatalf("center.X = %v, want 5", center.X)
	}

	if _, err := inv.Perform(ctx); err != nil {
		t.Fatal(err)
	}
	center, _ = m.Node(id).Center(ctx)
	if center.X != 0 {
		t.Fatalf("center.X after undo = %v, want 0", center.X)
	}
}

func TestRemoveActionInverseUnremoves(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	id, _ := m.InsertNode(ctx, geometry.Vector3{}, store.RoleObject, mapper.InsertOptions{Type: "grass", Radius: 1})

	act := &RemoveAction{Mapper: m, Refs: []store.EntityID{id}}
	inv, err := act.Perform(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if valid, _ := m.Store().EntityValid(ctx, id); valid {
		t.Fatal("expected node invalid after RemoveAction")
	}
	if _, err := inv.Perform(ctx); err != nil {
		t.Fatal(err)
	}
	if valid, _ := m.Store().EntityValid(ctx, id); !valid {
		t.Fatal("expected node valid after undoing RemoveAction")
	}
}

func TestBulkActionEmptyWhenAllChildrenEmpty(t *testing.T) {
	m := mapper.New(store.NewMemStore())
	bulk := &BulkAction{Actions: []Action{
		&RemoveAction{Mapper: m},
		&TranslateAction{Mapper: m},
	}}
	if !bulk.Empty() {
		t.Error("bulk of empty actions should itself be empty")
	}
}

func TestNodeCleanupActionCollapsesNearDuplicatePoints(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	parent, _ := m.InsertNode(ctx, geometry.Vector3{}, store.RoleObject, mapper.InsertOptions{Type: "grass", Radius: 10})

	a, _ := m.InsertNode(ctx, geometry.Vector3{X: 10, Y: 0}, store.RolePoint, mapper.InsertOptions{Parent: parent, Radius: 4})
	b, _ := m.InsertNode(ctx, geometry.Vector3{X: 10.5, Y: 0}, store.RolePoint, mapper.InsertOptions{Parent: parent, Radius: 4})

	cleanup := &NodeCleanupAction{Mapper: m, Parent: parent}
	inv, err := cleanup.Perform(ctx)
	if err != nil {
		t.Fatal(err)
	}

	aValid, _ := m.Store().EntityValid(ctx, a)
	bValid, _ := m.Store().EntityValid(ctx, b)
	if aValid == bValid {
		t.Fatalf("expected exactly one survivor, a valid=%v b valid=%v", aValid, bValid)
	}

	center, _ := m.Node(parent).Center(ctx)
	if center.X != 10 {
		t.Fatalf("parent center.X = %v, want 10 (the surviving point's center)", center.X)
	}

	if _, err := inv.Perform(ctx); err != nil {
		t.Fatal(err)
	}
	aValid, _ = m.Store().EntityValid(ctx, a)
	bValid, _ = m.Store().EntityValid(ctx, b)
	if !aValid || !bValid {
		t.Fatalf("expected both points valid after undo, a valid=%v b valid=%v", aValid, bValid)
	}
}
