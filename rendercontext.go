package cartograph

import (
	"context"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/store"
)

const (
	minZoom     = 1
	maxZoom     = 30
	defaultZoom = 5
)

// RenderContext owns the viewport, zoom, and scroll state, and drives the
// recalc/redraw/selection-recheck passes a host loop calls once per frame
// (spec §4.I). There is no internal goroutine or lock here: the whole
// engine runs on a single cooperative scheduler (spec §5) that suspends at
// store calls, hook emits, and brush/action operations, not at arbitrary
// points picked by this package.
type RenderContext struct {
	Mapper    *mapper.Mapper
	MegaTiles *MegaTileCache
	Fills     *fillStyleCache

	Zoom int
	// ScrollX, ScrollY are the world-space point shown at the viewport's
	// top-left corner.
	ScrollX, ScrollY float64

	ViewportWidth, ViewportHeight int

	// CursorX, CursorY are the last observed canvas-space pointer position.
	CursorX, CursorY float64

	Selected map[store.EntityID]bool

	renderCache map[renderCacheKey]*NodeRender
	flash       *undoFlash
}

type renderCacheKey struct {
	object store.EntityID
	zoom   int
}

// NewRenderContext creates a context at the default zoom with no scroll.
func NewRenderContext(m *mapper.Mapper, width, height int) *RenderContext {
	return &RenderContext{
		Mapper:      m,
		MegaTiles:   NewMegaTileCache(),
		Fills:       newFillStyleCache(),
		Zoom:        defaultZoom,
		ViewportWidth: width,
		ViewportHeight: height,
		Selected:    make(map[store.EntityID]bool),
		renderCache: make(map[renderCacheKey]*NodeRender),
	}
}

func (r *RenderContext) pixelsToUnits(px float64) float64 { return pixelsToUnits(px, r.Zoom) }
func (r *RenderContext) unitsToPixels(u float64) float64  { return unitsToPixels(u, r.Zoom) }

// canvasPointToMap converts a canvas-space pixel (relative to the
// viewport's top-left corner) to a world point.
func (r *RenderContext) canvasPointToMap(px, py float64) geometry.Vector3 {
	return geometry.Vector3{
		X: r.ScrollX + r.pixelsToUnits(px),
		Y: r.ScrollY + r.pixelsToUnits(py),
	}
}

// mapPointToCanvas is the inverse of canvasPointToMap.
func (r *RenderContext) mapPointToCanvas(m geometry.Vector3) (px, py float64) {
	return r.unitsToPixels(m.X - r.ScrollX), r.unitsToPixels(m.Y - r.ScrollY)
}

// SetZoom changes the zoom level while keeping the map point currently
// under the cursor anchored to the same canvas pixel (spec §4.I, §8
// scenario 5). Clamped to [minZoom, maxZoom]; out-of-range values clamp
// rather than error, since the input layer only ever requests +/-1 steps.
func (r *RenderContext) SetZoom(zoom int) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	if zoom == r.Zoom {
		return
	}
	anchor := r.canvasPointToMap(r.CursorX, r.CursorY)
	r.Zoom = zoom
	// Re-derive scroll so anchor still maps to (CursorX, CursorY).
	r.ScrollX = anchor.X - r.pixelsToUnits(r.CursorX)
	r.ScrollY = anchor.Y - r.pixelsToUnits(r.CursorY)
}

// VisibleArea returns the world-space box currently shown, expanded by
// margin world units on every side.
func (r *RenderContext) VisibleArea(margin float64) geometry.Box3 {
	minPt := geometry.Vector3{X: r.ScrollX - margin, Y: r.ScrollY - margin}
	maxPt := geometry.Vector3{
		X: r.ScrollX + r.pixelsToUnits(float64(r.ViewportWidth)) + margin,
		Y: r.ScrollY + r.pixelsToUnits(float64(r.ViewportHeight)) + margin,
	}
	return geometry.Box3{A: minPt, B: maxPt}
}

// Recalc runs the seven-step pass that keeps rendered state in sync with
// the map (spec §4.I):
//  1. compute the visible world area,
//  2. query the store for every object node touching it,
//  3. fetch or build each one's NodeRender at the current zoom (a build
//     that panics is skipped for this pass and left uncached),
//  4. composite each render into the megatile cache,
//  5. evict megatiles that fell outside the visible area (plus margin),
//  6. drop render-cache entries for objects no longer visible, bounding
//     memory growth,
//  7. emit "recalculated" so listeners (e.g. a minimap) can react.
func (r *RenderContext) Recalc(ctx context.Context) error {
	const margin = megaTileSize
	area := r.VisibleArea(margin)

	visible, err := r.Mapper.ObjectNodesTouchingArea(ctx, area, 0)
	if err != nil {
		return err
	}
	visibleSet := make(map[store.EntityID]bool, len(visible))

	for _, id := range visible {
		visibleSet[id] = true
		key := renderCacheKey{object: id, zoom: r.Zoom}
		render, ok := r.renderCache[key]
		if !ok {
			var built *NodeRender
			var present bool
			panicked := func() (p any) {
				defer func() { p = recover() }()
				built, present, err = BuildNodeRender(ctx, r.Mapper, r.Fills, id, r.Zoom)
				return nil
			}()
			if panicked != nil {
				continue
			}
			if err != nil {
				return err
			}
			if !present {
				continue
			}
			render = built
			r.renderCache[key] = render
		}
		r.MegaTiles.Composite(render, r.Zoom, r.Selected)
	}

	r.evictOutsideArea(area)

	for key := range r.renderCache {
		if key.zoom != r.Zoom || !visibleSet[key.object] {
			delete(r.renderCache, key)
		}
	}

	return r.Mapper.Hooks.Emit(ctx, "recalculated")
}

func (r *RenderContext) evictOutsideArea(area geometry.Box3) {
	minMegaX := int(math.Floor(r.unitsToPixels(area.Min().X) / megaTileSize))
	minMegaY := int(math.Floor(r.unitsToPixels(area.Min().Y) / megaTileSize))
	maxMegaX := int(math.Floor(r.unitsToPixels(area.Max().X) / megaTileSize))
	maxMegaY := int(math.Floor(r.unitsToPixels(area.Max().Y) / megaTileSize))

	for key := range r.MegaTiles.byKey {
		if key.zoom != r.Zoom {
			r.MegaTiles.Evict(key)
			continue
		}
		if key.megaX < minMegaX || key.megaX > maxMegaX || key.megaY < minMegaY || key.megaY > maxMegaY {
			r.MegaTiles.Evict(key)
		}
	}
}

// InvalidateNode evicts every megatile holding id and its cached render at
// every zoom, forcing a rebuild on the next Recalc. RecheckSelection is its
// only caller; no hook listener calls it, so a mutation by itself does not
// evict a cached render.
func (r *RenderContext) InvalidateNode(id store.EntityID) {
	r.MegaTiles.EvictNode(id)
	for key := range r.renderCache {
		if key.object == id {
			delete(r.renderCache, key)
		}
	}
}

// RecheckSelection re-evaluates which composited parts belong to
// r.Selected and forces their megatiles to rebuild, so a selection change
// is reflected by the darkened-composite rule (spec §4.H) without waiting
// for a full Recalc.
func (r *RenderContext) RecheckSelection(ctx context.Context) error {
	for id, selected := range r.Selected {
		if !selected {
			continue
		}
		r.InvalidateNode(id)
	}
	return r.Recalc(ctx)
}

// Redraw blits every megatile overlapping the viewport to screen, anchored
// by the current scroll position.
func (r *RenderContext) Redraw(screen *ebiten.Image) {
	minMegaX := int(math.Floor(r.unitsToPixelsScrollX() / megaTileSize))
	minMegaY := int(math.Floor(r.unitsToPixelsScrollY() / megaTileSize))
	maxMegaX := int(math.Floor((r.unitsToPixelsScrollX() + float64(r.ViewportWidth)) / megaTileSize))
	maxMegaY := int(math.Floor((r.unitsToPixelsScrollY() + float64(r.ViewportHeight)) / megaTileSize))

	for mx := minMegaX; mx <= maxMegaX; mx++ {
		for my := minMegaY; my <= maxMegaY; my++ {
			key := megaKey{zoom: r.Zoom, megaX: mx, megaY: my}
			mt, ok := r.MegaTiles.Get(key)
			if !ok || mt.canvas == nil {
				continue
			}
			var op ebiten.DrawImageOptions
			op.GeoM.Translate(float64(mx*megaTileSize)-r.unitsToPixelsScrollX(), float64(my*megaTileSize)-r.unitsToPixelsScrollY())
			screen.DrawImage(mt.canvas, &op)
		}
	}
	r.drawFlash(screen)
}

func (r *RenderContext) unitsToPixelsScrollX() float64 { return r.unitsToPixels(r.ScrollX) }
func (r *RenderContext) unitsToPixelsScrollY() float64 { return r.unitsToPixels(r.ScrollY) }

// GetDrawnNodePartAtCanvasPoint hit-tests a canvas-space pixel against the
// composited megatiles (spec §4.I hit-testing).
func (r *RenderContext) GetDrawnNodePartAtCanvasPoint(px, py float64) (Part, bool) {
	absX := r.unitsToPixelsScrollX() + px
	absY := r.unitsToPixelsScrollY() + py
	megaX := int(math.Floor(absX / megaTileSize))
	megaY := int(math.Floor(absY / megaTileSize))
	mt, ok := r.MegaTiles.Get(megaKey{zoom: r.Zoom, megaX: megaX, megaY: megaY})
	if !ok {
		return Part{}, false
	}
	return mt.PartAt(absX, absY, r.Zoom)
}
