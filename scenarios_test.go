package cartograph

import (
	"context"
	"testing"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/store"
)

// TestScenarioPaintThenUndo covers spec §8's "paint then undo" case:
// dragging an AddBrush across the canvas lays down one object node with
// at least two point children whose radius reaches the brush's minimum
// footprint, and Ctrl+Z removes the whole stroke — object, children, and
// edges alike.
func TestScenarioPaintThenUndo(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	rc := NewRenderContext(m, 800, 600)
	rc.Zoom = 5
	in := NewInput(rc)
	brush := NewAddBrush("grass")
	brush.Size = 1
	in.Brush = brush

	inj := &Injector{}
	inj.Drag(100, 100, 200, 100, 10)
	if err := inj.Drain(ctx, in); err != nil {
		t.Fatal(err)
	}
	if err := rc.Recalc(ctx); err != nil {
		t.Fatal(err)
	}

	part, ok := rc.GetDrawnNodePartAtCanvasPoint(150, 100)
	if !ok {
		t.Fatal("expected a painted point node along the stroke")
	}
	parentID, err := m.Node(part.NodeRef).Parent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if parentID == store.NoEntity {
		t.Fatal("expected the stroke's point nodes to have an object parent")
	}

	parent := m.Node(parentID)
	children, err := parent.Children(ctx)
	if err != nil {
		t.Fatal(err)
	}
	pointCount := 0
	for _, id := range children {
		role, err := m.Node(id).Role(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if role == store.RolePoint {
			pointCount++
		}
	}
	if pointCount < 2 {
		t.Fatalf("expected at least 2 point children, got %d", pointCount)
	}

	radius, err := parent.Radius(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if minRadius := rc.pixelsToUnits(15); radius < minRadius {
		t.Fatalf("radius = %v, want >= %v", radius, minRadius)
	}

	if len(in.UndoStack) == 0 {
		t.Fatal("expected the stroke to have recorded an undo entry")
	}
	if _, err := in.Undo(ctx); err != nil {
		t.Fatal(err)
	}

	if valid, _ := m.Store().EntityValid(ctx, parentID); valid {
		t.Fatal("expected the object node to be invalid after undo")
	}
	for _, id := range children {
		if valid, _ := m.Store().EntityValid(ctx, id); valid {
			t.Errorf("expected child %v to be invalid after undo", id)
		}
	}
}

// TestScenarioPegDistance covers spec §8's peg-distance measurement: three
// pegs dropped in a straight line report two consecutive gaps.
func TestScenarioPegDistance(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	rc := NewRenderContext(m, 800, 600)
	brush := NewDistancePegBrush(3)

	for _, p := range []geometry.Vector3{{X: 0}, {X: 10}, {X: 25}} {
		if _, err := brush.Activate(ctx, rc, p); err != nil {
			t.Fatal(err)
		}
	}

	dists := brush.Distances()
	if len(dists) != 2 {
		t.Fatalf("expected 2 distances, got %d", len(dists))
	}
	if dists[0] <= 0 || dists[1] <= 0 {
		t.Fatalf("expected positive distances, got %v", dists)
	}
}

// TestScenarioHoverHitTest covers spec §8's hover hit-test: after a
// Recalc, the part under a painted point node's center resolves back to
// that node's ID.
func TestScenarioHoverHitTest(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	rc := NewRenderContext(m, 800, 600)

	obj, err := m.InsertNode(ctx, geometry.Vector3{X: 50, Y: 50}, store.RoleObject, mapper.InsertOptions{Type: "grass", Radius: 3})
	if err != nil {
		t.Fatal(err)
	}
	id, err := m.InsertNode(ctx, geometry.Vector3{X: 50, Y: 50}, store.RolePoint, mapper.InsertOptions{Parent: obj, Radius: 3})
	if err != nil {
		t.Fatal(err)
	}
	if err := rc.Recalc(ctx); err != nil {
		t.Fatal(err)
	}

	px, py := rc.mapPointToCanvas(geometry.Vector3{X: 50, Y: 50})
	part, ok := rc.GetDrawnNodePartAtCanvasPoint(px, py)
	if !ok {
		t.Fatal("expected a hit at the node's center")
	}
	if part.NodeRef != id {
		t.Fatalf("NodeRef = %v, want %v", part.NodeRef, id)
	}

	if _, ok := rc.GetDrawnNodePartAtCanvasPoint(-500, -500); ok {
		t.Fatal("expected a miss far outside the painted node")
	}
}

// TestScenarioTranslate covers spec §8's translate case: dragging a
// SelectBrush hit on an already-selected point node past the dead zone
// moves that node in the drag direction.
func TestScenarioTranslate(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	rc := NewRenderContext(m, 800, 600)

	obj, err := m.InsertNode(ctx, geometry.Vector3{X: 100, Y: 100}, store.RoleObject, mapper.InsertOptions{Type: "grass", Radius: 3})
	if err != nil {
		t.Fatal(err)
	}
	id, err := m.InsertNode(ctx, geometry.Vector3{X: 100, Y: 100}, store.RolePoint, mapper.InsertOptions{Parent: obj, Radius: 3})
	if err != nil {
		t.Fatal(err)
	}
	if err := rc.Recalc(ctx); err != nil {
		t.Fatal(err)
	}

	sel := NewSelection()
	if err := sel.Set(ctx, m, []store.EntityID{id}); err != nil {
		t.Fatal(err)
	}

	in := NewInput(rc)
	in.Brush = NewSelectBrush(sel)

	px, py := rc.mapPointToCanvas(geometry.Vector3{X: 100, Y: 100})
	inj := &Injector{}
	inj.Press(px, py)
	inj.Move(px+40, py)
	inj.Release(px+40, py)
	if err := inj.Drain(ctx, in); err != nil {
		t.Fatal(err)
	}

	center, err := m.Node(id).Center(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if center.X <= 100 {
		t.Fatalf("expected node to have moved right, center = %v", center)
	}
}

// TestScenarioDeleteCascade covers spec §8's delete-cascade case: removing
// a parent with three point children and three connecting edges
// invalidates all seven entities, and unremoving restores them all.
func TestScenarioDeleteCascade(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())

	parent, err := m.InsertNode(ctx, geometry.Vector3{}, store.RoleObject, mapper.InsertOptions{Type: "grass", Radius: 5})
	if err != nil {
		t.Fatal(err)
	}

	var children, edges []store.EntityID
	for i := 0; i < 3; i++ {
		child, err := m.InsertNode(ctx, geometry.Vector3{X: float64(i)}, store.RolePoint, mapper.InsertOptions{Parent: parent})
		if err != nil {
			t.Fatal(err)
		}
		children = append(children, child)
		edge, err := m.Store().CreateEdge(ctx, parent, child)
		if err != nil {
			t.Fatal(err)
		}
		edges = append(edges, edge)
	}

	act := &RemoveAction{Mapper: m, Refs: []store.EntityID{parent}}
	inv, err := act.Perform(ctx)
	if err != nil {
		t.Fatal(err)
	}

	all := append([]store.EntityID{parent}, children...)
	for _, id := range all {
		if valid, _ := m.Store().EntityValid(ctx, id); valid {
			t.Errorf("node %v should be invalid after cascade removal", id)
		}
	}
	_ = edges

	if _, err := inv.Perform(ctx); err != nil {
		t.Fatal(err)
	}
	for _, id := range all {
		if valid, _ := m.Store().EntityValid(ctx, id); !valid {
			t.Errorf("node %v should be valid after unremove", id)
		}
	}
}

// TestScenarioZoomPreservesCursorAnchor is the end-to-end version of
// rendercontext_test.go's TestSetZoomPreservesCursorAnchor, driven by two
// successive direct SetZoom calls, the call Input's wheel handling makes
// (spec §8 invariant 5).
func TestScenarioZoomPreservesCursorAnchor(t *testing.T) {
	ctx := context.Background()
	_ = ctx
	m := mapper.New(store.NewMemStore())
	rc := NewRenderContext(m, 800, 600)
	rc.CursorX, rc.CursorY = 500, 400

	before := rc.canvasPointToMap(rc.CursorX, rc.CursorY)
	rc.SetZoom(rc.Zoom + 1)
	rc.SetZoom(rc.Zoom + 1)
	after := rc.canvasPointToMap(rc.CursorX, rc.CursorY)

	if before != after {
		t.Fatalf("world point under cursor drifted across zoom steps: before=%v after=%v", before, after)
	}
}
