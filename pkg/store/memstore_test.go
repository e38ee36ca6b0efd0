package store

import (
	"context"
	"testing"

	"github.com/worldforge/cartograph/pkg/geometry"
)

func TestCreateNodeAndProperties(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	id, err := s.CreateNode(ctx, NoEntity, RoleObject)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if err := s.SetPVector3(ctx, id, PropCenter, geometry.Vector3{X: 1, Y: 2, Z: 3}); err != nil {
		t.Fatalf("SetPVector3: %v", err)
	}
	got, ok, err := s.GetPVector3(ctx, id, PropCenter)
	if err != nil || !ok {
		t.Fatalf("GetPVector3: %v, ok=%v", err, ok)
	}
	if got != (geometry.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("GetPVector3 = %v, want (1,2,3)", got)
	}
}

func TestPNumberDefaultStringSerialization(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	id, _ := s.CreateNode(ctx, NoEntity, RolePoint)

	// A raw string-encoded number (as the default string-column storage
	// would hand back) must still parse via GetPNumber.
	if err := s.SetPString(ctx, id, "radius", "12.5"); err != nil {
		t.Fatal(err)
	}
	n, ok, err := s.GetPNumber(ctx, id, "radius")
	if err != nil || !ok {
		t.Fatalf("GetPNumber: %v ok=%v", err, ok)
	}
	if n != 12.5 {
		t.Errorf("GetPNumber = %f, want 12.5", n)
	}
}

func TestSoftDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	parent, _ := s.CreateNode(ctx, NoEntity, RoleObject)
	child, _ := s.CreateNode(ctx, parent, RolePoint)
	grandchild, _ := s.CreateNode(ctx, child, RolePoint)

	if err := s.Invalidate(ctx, parent); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	for _, id := range []EntityID{parent, child, grandchild} {
		valid, err := s.EntityValid(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if valid {
			t.Errorf("entity %d should be invalid after cascading delete", id)
		}
	}
}

func TestSetNodeParentRejectsCycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	a, _ := s.CreateNode(ctx, NoEntity, RoleObject)
	b, _ := s.CreateNode(ctx, a, RolePoint)

	if err := s.SetNodeParent(ctx, a, b); err != ErrCyclicParent {
		t.Errorf("SetNodeParent cycle = %v, want ErrCyclicParent", err)
	}
	if err := s.SetNodeParent(ctx, a, a); err != ErrCyclicParent {
		t.Errorf("SetNodeParent self = %v, want ErrCyclicParent", err)
	}
}

func TestCreateEdgeRejectsSelfLoop(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	a, _ := s.CreateNode(ctx, NoEntity, RolePoint)

	if _, err := s.CreateEdge(ctx, a, a); err != ErrSelfEdge {
		t.Errorf("CreateEdge self-loop = %v, want ErrSelfEdge", err)
	}
}

func TestGetEdgeBetweenAndOtherNode(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	a, _ := s.CreateNode(ctx, NoEntity, RolePoint)
	b, _ := s.CreateNode(ctx, NoEntity, RolePoint)
	edgeID, err := s.CreateEdge(ctx, a, b)
	if err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.GetEdgeBetween(ctx, a, b)
	if err != nil || !ok || got != edgeID {
		t.Fatalf("GetEdgeBetween = %v, %v, %v", got, ok, err)
	}

	other, err := s.GetEdgeOtherNode(ctx, edgeID, a)
	if err != nil || other != b {
		t.Errorf("GetEdgeOtherNode(a) = %v, %v, want %v", other, err, b)
	}
}

func TestNodesTouchingArea(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	a, _ := s.CreateNode(ctx, NoEntity, RoleObject)
	_ = s.SetPVector3(ctx, a, PropCenter, geometry.Vector3{X: 0, Y: 0, Z: 0})
	_ = s.SetPNumber(ctx, a, PropRadius, 10)

	far, _ := s.CreateNode(ctx, NoEntity, RoleObject)
	_ = s.SetPVector3(ctx, far, PropCenter, geometry.Vector3{X: 1000, Y: 1000, Z: 0})
	_ = s.SetPNumber(ctx, far, PropRadius, 10)

	box := geometry.FromRadius(geometry.Vector3{}, 20)
	seq, err := s.GetNodesTouchingArea(ctx, box, 0)
	if err != nil {
		t.Fatal(err)
	}
	var found []EntityID
	for id := range seq {
		found = append(found, id)
	}
	if len(found) != 1 || found[0] != a {
		t.Errorf("GetNodesTouchingArea = %v, want [%d]", found, a)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	parent, _ := s.CreateNode(ctx, NoEntity, RoleObject)
	child, _ := s.CreateNode(ctx, parent, RolePoint)
	_ = s.SetPVector3(ctx, child, PropCenter, geometry.Vector3{X: 5, Y: 6, Z: 0})
	edgeA, _ := s.CreateNode(ctx, NoEntity, RolePoint)
	edgeID, _ := s.CreateEdge(ctx, child, edgeA)

	data, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	s2 := NewMemStore()
	if err := s2.Import(ctx, data); err != nil {
		t.Fatalf("Import: %v", err)
	}

	gotParent, err := s2.GetNodeParent(ctx, child)
	if err != nil || gotParent != parent {
		t.Errorf("GetNodeParent after import = %v, %v, want %v", gotParent, err, parent)
	}
	gotCenter, ok, err := s2.GetPVector3(ctx, child, PropCenter)
	if err != nil || !ok || gotCenter != (geometry.Vector3{X: 5, Y: 6, Z: 0}) {
		t.Errorf("GetPVector3 after import = %v, %v, %v", gotCenter, ok, err)
	}
	gotEdge, ok, err := s2.GetEdgeBetween(ctx, child, edgeA)
	if err != nil || !ok || gotEdge != edgeID {
		t.Errorf("GetEdgeBetween after import = %v, %v, %v", gotEdge, ok, err)
	}
}
