package cartograph

import (
	"context"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/store"
)

func TestLabelOverlayDrawUsesRegistryLabel(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	rc := NewRenderContext(m, 800, 600)
	if _, err := m.InsertNode(ctx, geometry.Vector3{X: 5, Y: 5}, store.RoleObject, mapper.InsertOptions{Type: "grass", Radius: 2}); err != nil {
		t.Fatal(err)
	}

	screen := ebiten.NewImage(800, 600)
	overlay := &LabelOverlay{}
	if err := overlay.Draw(ctx, screen, rc); err != nil {
		t.Fatal(err)
	}
}

func TestLabelOverlayPrefersExplicitName(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	rc := NewRenderContext(m, 800, 600)
	id, err := m.InsertNode(ctx, geometry.Vector3{}, store.RoleObject, mapper.InsertOptions{Type: "grass", Radius: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Node(id).SetName(ctx, "Willowbrook"); err != nil {
		t.Fatal(err)
	}

	label, err := nodeLabel(ctx, rc, m.Node(id).TypeKey, m.Node(id).Name)
	if err != nil {
		t.Fatal(err)
	}
	if label != "Willowbrook" {
		t.Fatalf("label = %q, want explicit name", label)
	}
}

func TestLabelOverlayEmptyMapDrawsNothing(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	rc := NewRenderContext(m, 800, 600)
	screen := ebiten.NewImage(800, 600)

	overlay := &LabelOverlay{}
	if err := overlay.Draw(ctx, screen, rc); err != nil {
		t.Fatal(err)
	}
}
