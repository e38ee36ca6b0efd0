package mapper

import (
	"context"
	"testing"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/store"
)

func TestInsertNodeSetsCenterAndECenterEqual(t *testing.T) {
	ctx := context.Background()
	m := New(store.NewMemStore())

	id, err := m.InsertNode(ctx, geometry.Vector3{X: 1, Y: 2, Z: 3}, store.RoleObject, InsertOptions{Type: "grass", Radius: 5})
	if err != nil {
		t.Fatal(err)
	}
	n := m.Node(id)
	center, _ := n.Center(ctx)
	eCenter, _ := n.EffectiveCenter(ctx)
	if center != eCenter {
		t.Errorf("center=%v eCenter=%v, want equal on insert", center, eCenter)
	}
	layer, _ := n.LayerKey(ctx)
	if layer != "geographical" {
		t.Errorf("layer = %q, want geographical (grass's default)", layer)
	}
}

func TestTranslateNodeMovesDescendants(t *testing.T) {
	ctx := context.Background()
	m := New(store.NewMemStore())

	parent, _ := m.InsertNode(ctx, geometry.Vector3{}, store.RoleObject, InsertOptions{Type: "region", Radius: 10})
	child, err := m.store.CreateNode(ctx, parent, store.RolePoint)
	if err != nil {
		t.Fatal(err)
	}
	childHandle := m.Node(child)
	if err := childHandle.SetCenter(ctx, geometry.Vector3{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}
	if err := childHandle.SetEffectiveCenter(ctx, geometry.Vector3{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}

	if err := m.TranslateNode(ctx, parent, geometry.Vector3{X: 5, Y: 0}); err != nil {
		t.Fatal(err)
	}

	gotParent, _ := m.Node(parent).Center(ctx)
	if gotParent.X != 5 {
		t.Errorf("parent.X = %v, want 5", gotParent.X)
	}
	gotChild, _ := childHandle.Center(ctx)
	if gotChild.X != 6 {
		t.Errorf("child.X = %v, want 6", gotChild.X)
	}
}

func TestRemoveAndUnremoveNodesCascade(t *testing.T) {
	ctx := context.Background()
	m := New(store.NewMemStore())

	parent, _ := m.InsertNode(ctx, geometry.Vector3{}, store.RoleObject, InsertOptions{Type: "region", Radius: 10})
	child1, _ := m.store.CreateNode(ctx, parent, store.RolePoint)
	child2, _ := m.store.CreateNode(ctx, parent, store.RolePoint)

	affected, err := m.RemoveNodes(ctx, []store.EntityID{parent})
	if err != nil {
		t.Fatal(err)
	}
	if len(affected) != 3 {
		t.Fatalf("affected = %v, want 3 entries", affected)
	}
	for _, id := range []store.EntityID{parent, child1, child2} {
		valid, _ := m.store.EntityValid(ctx, id)
		if valid {
			t.Errorf("entity %d should be invalid after RemoveNodes", id)
		}
	}

	if err := m.UnremoveNodes(ctx, affected); err != nil {
		t.Fatal(err)
	}
	for _, id := range []store.EntityID{parent, child1, child2} {
		valid, _ := m.store.EntityValid(ctx, id)
		if !valid {
			t.Errorf("entity %d should be valid after UnremoveNodes", id)
		}
	}
}

func TestRemoveNodesSoftDeletesChildlessParent(t *testing.T) {
	ctx := context.Background()
	m := New(store.NewMemStore())

	parent, _ := m.InsertNode(ctx, geometry.Vector3{}, store.RoleObject, InsertOptions{Type: "region", Radius: 10})
	onlyChild, _ := m.store.CreateNode(ctx, parent, store.RolePoint)

	affected, err := m.RemoveNodes(ctx, []store.EntityID{onlyChild})
	if err != nil {
		t.Fatal(err)
	}
	if len(affected) != 2 {
		t.Fatalf("affected = %v, want [child, parent]", affected)
	}
	parentValid, _ := m.store.EntityValid(ctx, parent)
	if parentValid {
		t.Error("parent left childless should be soft-deleted too")
	}
}

func TestRemoveAndUnremoveEdges(t *testing.T) {
	ctx := context.Background()
	m := New(store.NewMemStore())
	a, _ := m.store.CreateNode(ctx, store.NoEntity, store.RolePoint)
	b, _ := m.store.CreateNode(ctx, store.NoEntity, store.RolePoint)
	edgeID, err := m.store.CreateEdge(ctx, a, b)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.RemoveEdges(ctx, []store.EntityID{edgeID}); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := m.store.GetEdgeBetween(ctx, a, b); err != nil || ok {
		t.Errorf("edge should be gone, ok=%v err=%v", ok, err)
	}

	ids, err := m.UnremoveEdges(ctx, [][2]store.EntityID{{a, b}})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Fatalf("UnremoveEdges returned %v", ids)
	}
	if _, ok, err := m.store.GetEdgeBetween(ctx, a, b); err != nil || !ok {
		t.Errorf("edge should be recreated, ok=%v err=%v", ok, err)
	}
}

func TestUnsavedChangeStateTransitionsEmitOnce(t *testing.T) {
	ctx := context.Background()
	m := New(store.NewMemStore())
	fires := 0
	m.Hooks.On("unsavedChanges", func(ctx context.Context, args ...any) error {
		fires++
		return nil
	})

	if m.HasUnsavedChanges() {
		t.Fatal("new mapper should start clean")
	}
	if _, err := m.InsertNode(ctx, geometry.Vector3{}, store.RoleObject, InsertOptions{Type: "grass", Radius: 1}); err != nil {
		t.Fatal(err)
	}
	if !m.HasUnsavedChanges() {
		t.Error("expected unsaved changes after InsertNode")
	}
	if fires != 1 {
		t.Errorf("fires = %d, want 1 (dirty transition)", fires)
	}

	if err := m.ClearUnsavedChangeState(ctx); err != nil {
		t.Fatal(err)
	}
	if fires != 2 {
		t.Errorf("fires = %d, want 2 (clean transition)", fires)
	}
	if err := m.ClearUnsavedChangeState(ctx); err != nil {
		t.Fatal(err)
	}
	if fires != 2 {
		t.Errorf("fires = %d, want still 2 (no-op when already clean)", fires)
	}
}

func TestUnitsMetersConversion(t *testing.T) {
	if UnitsToMeters(10) != 20 {
		t.Errorf("UnitsToMeters(10) = %v, want 20", UnitsToMeters(10))
	}
	if MetersToUnits(20) != 10 {
		t.Errorf("MetersToUnits(20) = %v, want 10", MetersToUnits(20))
	}
}
