package cartograph

import (
	"math"
	"testing"

	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/store"
)

func TestSetZoomPreservesCursorAnchor(t *testing.T) {
	m := mapper.New(store.NewMemStore())
	r := NewRenderContext(m, 800, 600)
	r.ScrollX, r.ScrollY = 100, 50
	r.CursorX, r.CursorY = 300, 200

	anchor := r.canvasPointToMap(r.CursorX, r.CursorY)

	r.SetZoom(r.Zoom + 3)

	px, py := r.mapPointToCanvas(anchor)
	if math.Abs(px-r.CursorX) > 1 || math.Abs(py-r.CursorY) > 1 {
		t.Errorf("cursor anchor drifted: got (%v, %v), want within 1px of (%v, %v)", px, py, r.CursorX, r.CursorY)
	}
}

func TestSetZoomClampsToRange(t *testing.T) {
	m := mapper.New(store.NewMemStore())
	r := NewRenderContext(m, 800, 600)

	r.SetZoom(999)
	if r.Zoom != maxZoom {
		t.Errorf("Zoom = %d, want clamped to %d", r.Zoom, maxZoom)
	}
	r.SetZoom(-5)
	if r.Zoom != minZoom {
		t.Errorf("Zoom = %d, want clamped to %d", r.Zoom, minZoom)
	}
}

func TestVisibleAreaGrowsWithMargin(t *testing.T) {
	m := mapper.New(store.NewMemStore())
	r := NewRenderContext(m, 800, 600)
	r.ScrollX, r.ScrollY = 0, 0

	tight := r.VisibleArea(0)
	wide := r.VisibleArea(100)

	if !(wide.Min().X <= tight.Min().X && wide.Max().X >= tight.Max().X) {
		t.Errorf("wider margin should not shrink the area: tight=%v wide=%v", tight, wide)
	}
}
