package cartograph

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/store"
)

func TestMegaTileCacheReverseIndexTracksAndClearsOnEvict(t *testing.T) {
	c := NewMegaTileCache()
	rec := LayerRecord{
		Corner: geometry.Vector3{X: 0, Y: 0},
		Width:  16,
		Height: 16,
		Parts: []Part{
			{NodeRef: 7, Point: geometry.Vector3{X: 0, Y: 0}, Radius: 1},
		},
		canvas: ebiten.NewImage(16, 16),
		built:  true,
	}
	render := &NodeRender{
		Object: store.EntityID(7),
		Zoom:   5,
		Layers: []LayerRecord{rec},
	}

	c.Composite(render, 5, nil)

	keys := c.MegaTilesFor(7)
	if len(keys) != 1 {
		t.Fatalf("expected node present in exactly 1 megatile, got %d", len(keys))
	}
	key := keys[0]
	mt, ok := c.Get(key)
	if !ok {
		t.Fatal("expected megatile to exist")
	}
	if !mt.HasNode(7) {
		t.Error("megatile should report node 7 as present")
	}

	c.Evict(key)

	if _, ok := c.Get(key); ok {
		t.Error("megatile should be gone after Evict")
	}
	if keys := c.MegaTilesFor(7); len(keys) != 0 {
		t.Errorf("reverse index for node 7 should be empty after Evict, got %v", keys)
	}
}
