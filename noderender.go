package cartograph

import (
	"context"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/registry"
	"github.com/worldforge/cartograph/pkg/store"
)

// tileSize is the rasterizer's tile grid unit in pixels (spec §4.G).
const tileSize = 16

// miniCanvasLimit bounds a single layer record's canvas dimension.
const miniCanvasLimit = 2048

// renderMode selects how a NodeRender's children are stamped, chosen from
// the object node's own type (spec §4.G).
type renderMode int

const (
	modeExplicit renderMode = iota
	modeTerrain
	modeBorder
)

// Part is one rendered child, kept for hit-testing (spec §4.G).
type Part struct {
	NodeRef       store.EntityID
	Point         geometry.Vector3
	Radius        float64
	Layer         string
	FillStyle     Color
	BackgroundRef store.EntityID
}

// FocusTile is a candidate smoothing site: a tile whose center sits on the
// outer arc of some part but is not fully covered by any part (spec §4.G,
// §4.H).
type FocusTile struct {
	TileX, TileY int
	Part         Part
}

// LayerRecord is one rectangular, tile-aligned canvas produced by a
// NodeRender (spec §4.G).
type LayerRecord struct {
	Corner geometry.Vector3 // absolute canvas coords, snapped to tileSize
	Width  int
	Height int
	Z      float64

	Parts      []Part
	FocusTiles map[int]map[int]FocusTile

	canvasFn func() *ebiten.Image
	canvas   *ebiten.Image
	built    bool
}

// Canvas builds the raster on first call and caches it (spec §4.G
// "canvas() — a lazy thunk").
func (l *LayerRecord) Canvas() *ebiten.Image {
	if !l.built {
		l.canvas = l.canvasFn()
		l.built = true
	}
	return l.canvas
}

// NodeRender is the per-(object-node, zoom) rasterized representation
// (spec §4.G).
type NodeRender struct {
	Object store.EntityID
	Zoom   int
	Layers []LayerRecord
}

func snapDown(v float64, unit int) int {
	return int(math.Floor(v/float64(unit))) * unit
}

func ceilMultiple(v float64, unit int) int {
	n := int(math.Ceil(v / float64(unit)))
	if n < 1 {
		n = 1
	}
	return n * unit
}

// fillStyleCache maps a (nodeTypeId, backgroundNodeTypeId) pair to a
// Color, mirroring willow's Atlas.Region lookup-with-placeholder idiom
// (atlas.go) generalized from named texture regions to named colors, and
// adapted from a JSON-loaded atlas to a registry-driven one. Patterns are
// conceptually process-lifetime; since fills here are flat colors rather
// than 16x16 tiled images, the cache is just the flattened color, kept
// for the stable-identity invariant (spec §8 invariant 9: "the cache
// returns the same pattern instance for the same tuple" — equal Color
// values compare equal, which is the value-type equivalent of identity).
type fillStyleCache struct {
	byKey map[string]Color
}

func newFillStyleCache() *fillStyleCache {
	return &fillStyleCache{byKey: make(map[string]Color)}
}

func fillStyleKey(nodeTypeID, backgroundNodeTypeID string) string {
	return nodeTypeID + "|" + backgroundNodeTypeID
}

// Get returns the fill color for nodeTypeID composited over an optional
// background type, building and caching it on first request.
func (c *fillStyleCache) Get(types *registry.NodeTypeRegistry, nodeTypeID, backgroundNodeTypeID string) Color {
	key := fillStyleKey(nodeTypeID, backgroundNodeTypeID)
	if col, ok := c.byKey[key]; ok {
		return col
	}
	col := c.build(types, nodeTypeID, backgroundNodeTypeID)
	c.byKey[key] = col
	return col
}

func (c *fillStyleCache) build(types *registry.NodeTypeRegistry, nodeTypeID, backgroundNodeTypeID string) Color {
	nt, ok := types.Get(nodeTypeID)
	if !ok {
		return Color{1, 0, 1, 1} // magenta placeholder, as willow's Atlas.Region does for a missing name
	}
	fg := parseHexColor(nt.Color)
	if backgroundNodeTypeID == "" {
		return fg
	}
	bg, ok := types.Get(backgroundNodeTypeID)
	if !ok {
		return fg
	}
	bgColor := parseHexColor(bg.Color)
	// "fills with the background color if any, overlays the image" — with
	// no actual image asset, approximate the overlay as a 70/30 blend
	// toward the foreground so the background is still perceptible.
	return Color{
		R: bgColor.R*0.3 + fg.R*0.7,
		G: bgColor.G*0.3 + fg.G*0.7,
		B: bgColor.B*0.3 + fg.B*0.7,
		A: 1,
	}
}

// resolveBackground implements spec §4.G "Background resolution": among
// nodes within 1 pixel-equivalent of target's effective center, in the
// same layer, with GivesBackground set, a different type, and whose
// radius covers the distance, pick the greatest Z. May return
// store.NoEntity.
func resolveBackground(ctx context.Context, m *mapper.Mapper, targetID store.EntityID, center geometry.Vector3, layer, ownType string, pixelUnits float64) store.EntityID {
	box := geometry.FromRadius(center, pixelUnits+1e-9)
	candidates, err := m.NodesTouchingArea(ctx, box, 0)
	if err != nil {
		return store.NoEntity
	}
	best := store.NoEntity
	var bestZ float64
	haveBest := false
	for _, id := range candidates {
		if id == targetID {
			continue
		}
		n := m.Node(id)
		nLayer, err := n.LayerKey(ctx)
		if err != nil || nLayer != layer {
			continue
		}
		typeKey, err := n.TypeKey(ctx)
		if err != nil || typeKey == ownType {
			continue
		}
		nt, ok := m.NodeTypes.Get(typeKey)
		if !ok || !nt.GivesBackground {
			continue
		}
		nCenter, err := n.EffectiveCenter(ctx)
		if err != nil {
			continue
		}
		radius, err := n.Radius(ctx)
		if err != nil {
			continue
		}
		if nCenter.Distance(center) > radius {
			continue
		}
		z := nCenter.Z
		if !haveBest || z > bestZ {
			haveBest = true
			bestZ = z
			best = id
		}
	}
	return best
}
