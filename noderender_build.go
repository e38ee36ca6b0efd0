package cartograph

import (
	"context"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/store"
)

// childInfo is one object-node child snapshotted for rasterization.
type childInfo struct {
	id     store.EntityID
	center geometry.Vector3
	radius float64
}

// BuildNodeRender rasterizes object at zoom (spec §4.G). Returns
// (nil, false) if unitsToPixels(radius) < 1 — the rasterizer skips
// building a render for sub-pixel nodes.
func BuildNodeRender(ctx context.Context, m *mapper.Mapper, fills *fillStyleCache, object store.EntityID, zoom int) (*NodeRender, bool, error) {
	obj := m.Node(object)
	radius, err := obj.Radius(ctx)
	if err != nil {
		return nil, false, err
	}
	if unitsToPixels(radius, zoom) < 1 {
		return nil, false, nil
	}

	typeKey, err := obj.TypeKey(ctx)
	if err != nil {
		return nil, false, err
	}
	layerKey, err := obj.LayerKey(ctx)
	if err != nil {
		return nil, false, err
	}
	nt, _ := m.NodeTypes.Get(typeKey)
	layer, _ := m.Layers.Get(layerKey)

	mode := modeTerrain
	if nt.Scale == "explicit" {
		mode = modeExplicit
	} else if layer.DrawMode == "border" {
		mode = modeBorder
	}

	childIDs, err := obj.Children(ctx)
	if err != nil {
		return nil, false, err
	}
	children := make([]childInfo, 0, len(childIDs))
	for _, id := range childIDs {
		ch := m.Node(id)
		c, err := ch.EffectiveCenter(ctx)
		if err != nil {
			return nil, false, err
		}
		r, err := ch.Radius(ctx)
		if err != nil {
			return nil, false, err
		}
		children = append(children, childInfo{id: id, center: c, radius: r})
	}
	if len(children) == 0 {
		return &NodeRender{Object: object, Zoom: zoom}, true, nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range children {
		px, py := unitsToPixels(c.center.X, zoom), unitsToPixels(c.center.Y, zoom)
		pr := unitsToPixels(c.radius, zoom)
		minX, minY = math.Min(minX, px-pr), math.Min(minY, py-pr)
		maxX, maxY = math.Max(maxX, px+pr), math.Max(maxY, py+pr)
	}
	corner := geometry.Vector3{X: float64(snapDown(minX, tileSize)), Y: float64(snapDown(minY, tileSize))}
	width := ceilMultiple(maxX-corner.X, tileSize)
	height := ceilMultiple(maxY-corner.Y, tileSize)
	if width > miniCanvasLimit {
		width = miniCanvasLimit
	}
	if height > miniCanvasLimit {
		height = miniCanvasLimit
	}

	var parts []Part
	focusTiles := make(map[int]map[int]FocusTile)

	switch mode {
	case modeExplicit:
		for _, c := range children {
			fillCol := fills.Get(m.NodeTypes, typeKey, "")
			r := math.Max(c.radius, pixelsToUnitsForTile(zoom))
			parts = append(parts, Part{NodeRef: c.id, Point: c.center, Radius: r, Layer: layerKey, FillStyle: fillCol})
		}
	case modeTerrain:
		for _, c := range children {
			bg := resolveBackground(ctx, m, c.id, c.center, layerKey, typeKey, pixelsToUnits(1, zoom))
			bgType := ""
			if bg != store.NoEntity {
				bgType, _ = m.Node(bg).TypeKey(ctx)
			}
			fillCol := fills.Get(m.NodeTypes, typeKey, bgType)
			part := Part{NodeRef: c.id, Point: c.center, Radius: c.radius, Layer: layerKey, FillStyle: fillCol, BackgroundRef: bg}
			parts = append(parts, part)
			collectFocusTiles(focusTiles, parts, part, zoom)
		}
	case modeBorder:
		strokeCol := parseHexColor(nt.Color)
		for _, c := range children {
			part := Part{NodeRef: c.id, Point: c.center, Radius: c.radius, Layer: layerKey, FillStyle: strokeCol}
			parts = append(parts, part)
		}
	}

	layerRec := LayerRecord{
		Corner:     geometry.Vector3{X: corner.X, Y: corner.Y, Z: children[0].center.Z},
		Width:      width,
		Height:     height,
		Z:          children[0].center.Z,
		Parts:      parts,
		FocusTiles: focusTiles,
	}
	layerRec.canvasFn = func() *ebiten.Image {
		return rasterize(layerRec, mode, zoom)
	}

	return &NodeRender{Object: object, Zoom: zoom, Layers: []LayerRecord{layerRec}}, true, nil
}

// pixelsToUnitsForTile converts half a tile's pixel size into world units,
// used as the minimum explicit-stamp radius (spec §4.G: "radius
// max(childRadius, tileSize/2)", expressed in world units since Part.Radius
// is stored in world units elsewhere in this file).
func pixelsToUnitsForTile(zoom int) float64 {
	return pixelsToUnits(tileSize/2, zoom)
}

// collectFocusTiles samples the outer arc of part (angle step 8/radius)
// and keeps tiles whose center is not fully covered by any part gathered
// so far (spec §4.G terrain clause).
func collectFocusTiles(out map[int]map[int]FocusTile, allParts []Part, part Part, zoom int) {
	if part.Radius <= 0 {
		return
	}
	step := 8 / part.Radius
	if step <= 0 || math.IsInf(step, 1) {
		return
	}
	for angle := 0.0; angle < 2*math.Pi; angle += step {
		px := part.Point.X + part.Radius*math.Cos(angle)
		py := part.Point.Y + part.Radius*math.Sin(angle)
		tx := snapDown(unitsToPixels(px, zoom), tileSize) / tileSize
		ty := snapDown(unitsToPixels(py, zoom), tileSize) / tileSize
		centerX := (float64(tx) + 0.5) * tileSize
		centerY := (float64(ty) + 0.5) * tileSize
		centerUnitsX := pixelsToUnits(centerX, zoom)
		centerUnitsY := pixelsToUnits(centerY, zoom)

		covered := false
		for _, p := range allParts {
			d := math.Hypot(centerUnitsX-p.Point.X, centerUnitsY-p.Point.Y)
			if d < p.Radius-2*pixelsToUnits(tileSize, zoom) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		if out[tx] == nil {
			out[tx] = make(map[int]FocusTile)
		}
		out[tx][ty] = FocusTile{TileX: tx, TileY: ty, Part: part}
	}
}

// rasterize draws the layer record's parts to a fresh canvas in the
// style chosen by mode.
func rasterize(rec LayerRecord, mode renderMode, zoom int) *ebiten.Image {
	img := ebiten.NewImage(rec.Width, rec.Height)
	switch mode {
	case modeExplicit, modeTerrain:
		for _, p := range rec.Parts {
			cx := float32(unitsToPixels(p.Point.X, zoom) - rec.Corner.X)
			cy := float32(unitsToPixels(p.Point.Y, zoom) - rec.Corner.Y)
			r := float32(unitsToPixels(p.Radius, zoom))
			vector.DrawFilledCircle(img, cx, cy, r, colorToRGBA(p.FillStyle), true)
		}
	case modeBorder:
		for _, p := range rec.Parts {
			cx := float32(unitsToPixels(p.Point.X, zoom) - rec.Corner.X)
			cy := float32(unitsToPixels(p.Point.Y, zoom) - rec.Corner.Y)
			r := float32(unitsToPixels(p.Radius, zoom))
			drawArcSegments(img, rec.Parts, p, cx, cy, r, colorToRGBA(p.FillStyle), rec.Corner, zoom)
		}
	}
	return img
}

// drawArcSegments draws short outer-arc segments around part's disk,
// dropping any segment whose endpoints both lie inside a different
// child's inner disk (radius-1), per spec §4.G Border rendering.
func drawArcSegments(img *ebiten.Image, allParts []Part, part Part, cx, cy, r float32, col color.RGBA, corner geometry.Vector3, zoom int) {
	const segments = 32
	step := 2 * math.Pi / segments
	for i := 0; i < segments; i++ {
		a0 := float64(i) * step
		a1 := a0 + step
		x0 := cx + r*float32(math.Cos(a0))
		y0 := cy + r*float32(math.Sin(a0))
		x1 := cx + r*float32(math.Cos(a1))
		y1 := cy + r*float32(math.Sin(a1))
		if bothInsideOtherChild(allParts, part, x0, y0, corner, zoom) && bothInsideOtherChild(allParts, part, x1, y1, corner, zoom) {
			continue
		}
		vector.StrokeLine(img, x0, y0, x1, y1, 1.5, col, true)
	}
}

// bothInsideOtherChild reports whether the canvas-local pixel (x, y) falls
// inside some other child's inner disk. x and y are corner-relative pixels;
// other.Point/other.Radius are world units, so both sides are converted to
// world space before comparing.
func bothInsideOtherChild(allParts []Part, self Part, x, y float32, corner geometry.Vector3, zoom int) bool {
	worldX := pixelsToUnits(float64(x)+corner.X, zoom)
	worldY := pixelsToUnits(float64(y)+corner.Y, zoom)
	margin := pixelsToUnits(1, zoom)
	for _, other := range allParts {
		if other.NodeRef == self.NodeRef {
			continue
		}
		dx, dy := worldX-other.Point.X, worldY-other.Point.Y
		if math.Hypot(dx, dy) < other.Radius-margin {
			return true
		}
	}
	return false
}
