package cartograph

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/store"
)

// debugStats holds per-Recalc timing and composite-count metrics.
// Populated by a caller's own timer and passed to log.
type debugStats struct {
	recalcTime     int64 // nanoseconds
	visibleNodes   int
	rebuiltRenders int
	compositedMega int
}

func (s debugStats) log() {
	_, _ = fmt.Fprintf(os.Stderr,
		"[cartograph] recalc: %dns | visible: %d | rebuilt: %d | megatiles: %d\n",
		s.recalcTime, s.visibleNodes, s.rebuiltRenders, s.compositedMega)
}

// DebugOverlay draws diagnostic layers on top of a RenderContext's normal
// output: the megatile grid, node centers/radii, and the edge graph. Each
// layer is toggled independently so a host can enable just the one it
// needs (spec §4.I debug overlay).
type DebugOverlay struct {
	ShowMegaTileGrid bool
	ShowNodeGraph    bool
	ShowRadii        bool
}

var (
	gridLineColor   = Color{R: 1, G: 1, B: 1, A: 0.15}
	nodeDotColor    = Color{R: 1, G: 1, B: 0, A: 0.9}
	edgeLineColor   = Color{R: 0, G: 1, B: 1, A: 0.6}
	radiusLineColor = Color{R: 1, G: 1, B: 1, A: 0.35}
)

// Draw renders every enabled overlay layer onto screen, in canvas space.
func (d *DebugOverlay) Draw(ctx context.Context, screen *ebiten.Image, rc *RenderContext) error {
	if d.ShowMegaTileGrid {
		d.drawMegaTileGrid(screen, rc)
	}
	if d.ShowNodeGraph || d.ShowRadii {
		if err := d.drawNodeGraph(ctx, screen, rc); err != nil {
			return err
		}
	}
	return nil
}

// drawMegaTileGrid draws a line at every megatile boundary crossing the
// viewport, so a developer can see the composite cache's tiling directly
// (spec §4.H).
func (d *DebugOverlay) drawMegaTileGrid(screen *ebiten.Image, rc *RenderContext) {
	originX := rc.unitsToPixelsScrollX()
	originY := rc.unitsToPixelsScrollY()
	col := colorToRGBA(gridLineColor)

	firstX := math.Floor(originX/megaTileSize) * megaTileSize
	for x := firstX; x-originX < float64(rc.ViewportWidth); x += megaTileSize {
		px := float32(x - originX)
		vector.StrokeLine(screen, px, 0, px, float32(rc.ViewportHeight), 1, col, false)
	}

	firstY := math.Floor(originY/megaTileSize) * megaTileSize
	for y := firstY; y-originY < float64(rc.ViewportHeight); y += megaTileSize {
		py := float32(y - originY)
		vector.StrokeLine(screen, 0, py, float32(rc.ViewportWidth), py, 1, col, false)
	}
}

// drawNodeGraph draws every visible node's center (and radius, and edges
// to its neighbors), independent of the normal NodeRender/MegaTile
// compositing path — this overlay reads the store directly so it never
// lies about what is actually in the map.
func (d *DebugOverlay) drawNodeGraph(ctx context.Context, screen *ebiten.Image, rc *RenderContext) error {
	area := rc.VisibleArea(0)
	ids, err := rc.Mapper.NodesTouchingArea(ctx, area, 0)
	if err != nil {
		return err
	}

	dotCol := colorToRGBA(nodeDotColor)
	edgeCol := colorToRGBA(edgeLineColor)
	radiusCol := colorToRGBA(radiusLineColor)

	for _, id := range ids {
		n := rc.Mapper.Node(id)
		center, err := n.Center(ctx)
		if err != nil {
			return err
		}
		cx, cy := rc.mapPointToCanvas(center)

		if d.ShowRadii {
			radius, err := n.Radius(ctx)
			if err != nil {
				return err
			}
			if radius > 0 {
				r := float32(rc.unitsToPixels(radius))
				vector.StrokeCircle(screen, float32(cx), float32(cy), r, 1, radiusCol, true)
			}
		}

		if !d.ShowNodeGraph {
			continue
		}
		vector.DrawFilledCircle(screen, float32(cx), float32(cy), 3, dotCol, true)

		if err := d.drawEdgesFrom(ctx, screen, rc, id, center, edgeCol); err != nil {
			return err
		}
	}
	return nil
}

// drawEdgesFrom draws a line to each of id's edge-connected neighbors
// whose EntityID is greater than id, so every edge is drawn exactly once
// across the full loop in drawNodeGraph.
func (d *DebugOverlay) drawEdgesFrom(ctx context.Context, screen *ebiten.Image, rc *RenderContext, id store.EntityID, center geometry.Vector3, edgeCol color.RGBA) error {
	edges, err := rc.Mapper.Node(id).GetEdges(ctx)
	if err != nil {
		return err
	}
	cx, cy := rc.mapPointToCanvas(center)
	for _, de := range edges {
		a, b, err := rc.Mapper.Store().GetEdgeNodes(ctx, de.Edge)
		if err != nil {
			return err
		}
		other := a
		if a == id {
			other = b
		}
		if other <= id {
			continue
		}
		oc, err := rc.Mapper.Node(other).Center(ctx)
		if err != nil {
			return err
		}
		ox, oy := rc.mapPointToCanvas(oc)
		vector.StrokeLine(screen, float32(cx), float32(cy), float32(ox), float32(oy), 1, edgeCol, false)
	}
	return nil
}
