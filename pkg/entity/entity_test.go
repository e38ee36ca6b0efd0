package entity

import (
	"context"
	"testing"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/store"
)

func TestNodeHandleCenterAndEffectiveCenter(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	id, _ := s.CreateNode(ctx, store.NoEntity, store.RoleObject)
	n := NewNodeHandle(s, id)

	v := geometry.Vector3{X: 3, Y: 4, Z: 0}
	if err := n.SetCenter(ctx, v); err != nil {
		t.Fatal(err)
	}
	if err := n.SetEffectiveCenter(ctx, v); err != nil {
		t.Fatal(err)
	}
	got, err := n.Center(ctx)
	if err != nil || got != v {
		t.Errorf("Center = %v, %v, want %v", got, err, v)
	}
	eGot, err := n.EffectiveCenter(ctx)
	if err != nil || eGot != v {
		t.Errorf("EffectiveCenter = %v, %v, want %v", eGot, err, v)
	}
}

func TestNodeHandleDescendantsCachedUntilInvalidate(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	parent, _ := s.CreateNode(ctx, store.NoEntity, store.RoleObject)
	child, _ := s.CreateNode(ctx, parent, store.RolePoint)
	n := NewNodeHandle(s, parent)

	got, err := n.GetAllDescendants(ctx)
	if err != nil || len(got) != 1 || got[0] != child {
		t.Fatalf("GetAllDescendants = %v, %v, want [%d]", got, err, child)
	}

	grandchild, _ := s.CreateNode(ctx, child, store.RolePoint)
	stale, _ := n.GetAllDescendants(ctx)
	if len(stale) != 1 {
		t.Errorf("expected stale cached result before Invalidate, got %v", stale)
	}

	n.Invalidate()
	fresh, err := n.GetAllDescendants(ctx)
	if err != nil || len(fresh) != 2 {
		t.Errorf("GetAllDescendants after Invalidate = %v, %v, want 2 entries incl. %d", fresh, err, grandchild)
	}
}

func TestNodeHandleNeighborsViaEdges(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	a, _ := s.CreateNode(ctx, store.NoEntity, store.RolePoint)
	b, _ := s.CreateNode(ctx, store.NoEntity, store.RolePoint)
	if _, err := s.CreateEdge(ctx, a, b); err != nil {
		t.Fatal(err)
	}

	na := NewNodeHandle(s, a)
	neighbors, err := na.GetNeighbors(ctx)
	if err != nil || len(neighbors) != 1 || neighbors[0] != b {
		t.Errorf("GetNeighbors = %v, %v, want [%d]", neighbors, err, b)
	}

	self, err := na.GetSelfAndNeighbors(ctx)
	if err != nil || len(self) != 2 || self[0] != a {
		t.Errorf("GetSelfAndNeighbors = %v, %v", self, err)
	}
}

func TestEdgeHandleOtherNode(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	a, _ := s.CreateNode(ctx, store.NoEntity, store.RolePoint)
	b, _ := s.CreateNode(ctx, store.NoEntity, store.RolePoint)
	edgeID, _ := s.CreateEdge(ctx, a, b)

	e := NewEdgeHandle(s, edgeID)
	other, err := e.OtherNode(ctx, a)
	if err != nil || other != b {
		t.Errorf("OtherNode(a) = %v, %v, want %v", other, err, b)
	}
}

func TestHandleRemoveCascades(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	parent, _ := s.CreateNode(ctx, store.NoEntity, store.RoleObject)
	child, _ := s.CreateNode(ctx, parent, store.RolePoint)

	h := Handle{Store: s, ID: parent}
	if err := h.Remove(ctx); err != nil {
		t.Fatal(err)
	}
	childValid, err := s.EntityValid(ctx, child)
	if err != nil || childValid {
		t.Errorf("child valid = %v, %v, want false", childValid, err)
	}
}
