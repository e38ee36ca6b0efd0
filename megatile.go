package cartograph

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/worldforge/cartograph/pkg/store"
)

// megaTileSize is the edge length, in screen pixels, of one composited
// megatile canvas (spec §4.H).
const megaTileSize = 512

// renderTexturePool manages reusable offscreen ebiten.Images keyed by
// power-of-two dimensions, so repeatedly evicted/rebuilt megatiles don't
// churn GPU allocations.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
}

func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	pw, ph := nextPowerOfTwo(w), nextPowerOfTwo(h)
	key := poolKey(pw, ph)
	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}
	return ebiten.NewImageWithOptions(image.Rect(0, 0, pw, ph), &ebiten.NewImageOptions{Unmanaged: true})
}

func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

// compassOffsets are the 8 fixed directions focus-tile smoothing samples a
// neighbor in (spec §4.H).
var compassOffsets = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// megaKey addresses one megatile at a given zoom level.
type megaKey struct {
	zoom       int
	megaX      int
	megaY      int
}

// MegaTile is a 512x512 screen-aligned composite of every Part that
// overlaps its cell, at one zoom level (spec §4.H).
type MegaTile struct {
	key megaKey

	canvas    *ebiten.Image
	nodeIDs   map[store.EntityID]bool
	parts     []Part // composited order, for hit testing
	tileParts map[int]map[int]Part // per-(tileX,tileY) center cache, fast hit-test path
}

func newMegaTile(key megaKey) *MegaTile {
	return &MegaTile{
		key:       key,
		nodeIDs:   make(map[store.EntityID]bool),
		tileParts: make(map[int]map[int]Part),
	}
}

// HasNode reports whether node was composited into this megatile.
func (t *MegaTile) HasNode(id store.EntityID) bool {
	return t.nodeIDs[id]
}

// PartAt returns the topmost composited part whose disk contains (px, py)
// in absolute screen pixels, or ok=false.
func (t *MegaTile) PartAt(px, py float64, zoom int) (Part, bool) {
	for i := len(t.parts) - 1; i >= 0; i-- {
		p := t.parts[i]
		cx, cy := unitsToPixels(p.Point.X, zoom), unitsToPixels(p.Point.Y, zoom)
		if math.Hypot(px-cx, py-cy) <= unitsToPixels(p.Radius, zoom) {
			return p, true
		}
	}
	return Part{}, false
}

// MegaTileCache owns the pool of composited megatiles and the reverse
// node->megatile index used to invalidate them on mutation (spec §4.H).
type MegaTileCache struct {
	pool    renderTexturePool
	byKey   map[megaKey]*MegaTile
	byNode  map[store.EntityID]map[megaKey]bool
}

func NewMegaTileCache() *MegaTileCache {
	return &MegaTileCache{
		byKey:  make(map[megaKey]*MegaTile),
		byNode: make(map[store.EntityID]map[megaKey]bool),
	}
}

// megaCoordsForLayer returns every (megaX, megaY) a layer record's pixel
// rect overlaps at zoom.
func megaCoordsForLayer(rec LayerRecord, zoom int) [][2]int {
	x0 := int(math.Floor(rec.Corner.X / megaTileSize))
	y0 := int(math.Floor(rec.Corner.Y / megaTileSize))
	x1 := int(math.Floor((rec.Corner.X + float64(rec.Width)) / megaTileSize))
	y1 := int(math.Floor((rec.Corner.Y + float64(rec.Height)) / megaTileSize))
	var coords [][2]int
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			coords = append(coords, [2]int{x, y})
		}
	}
	return coords
}

// Composite merges render's layers into every megatile they touch at
// zoom, marking render.Object present in the reverse index for each.
// selected nodes are darkened ~10% at composite time (spec §4.H).
func (c *MegaTileCache) Composite(render *NodeRender, zoom int, selected map[store.EntityID]bool) {
	for _, rec := range render.Layers {
		darken := selected[render.Object]
		for _, coord := range megaCoordsForLayer(rec, zoom) {
			key := megaKey{zoom: zoom, megaX: coord[0], megaY: coord[1]}
			mt, ok := c.byKey[key]
			if !ok {
				mt = newMegaTile(key)
				c.byKey[key] = mt
			}
			c.blit(mt, rec, coord, darken)
			mt.nodeIDs[render.Object] = true
			if c.byNode[render.Object] == nil {
				c.byNode[render.Object] = make(map[megaKey]bool)
			}
			c.byNode[render.Object][key] = true
		}
		c.smoothFocusTiles(rec, zoom, selected)
	}
}

func (c *MegaTileCache) blit(mt *MegaTile, rec LayerRecord, coord [2]int, darken bool) {
	if mt.canvas == nil {
		mt.canvas = c.pool.Acquire(megaTileSize, megaTileSize)
	}
	ox := rec.Corner.X - float64(coord[0])*megaTileSize
	oy := rec.Corner.Y - float64(coord[1])*megaTileSize
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(ox, oy)
	if darken {
		op.ColorScale.ScaleWithColor(colorToRGBA(Color{R: 0.9, G: 0.9, B: 0.9, A: 1}))
	}
	mt.canvas.DrawImage(rec.Canvas(), &op)
	mt.parts = append(mt.parts, rec.Parts...)
	for tx, col := range rec.FocusTiles {
		for ty, ft := range col {
			absTX := tx + int(rec.Corner.X)/tileSize
			absTY := ty + int(rec.Corner.Y)/tileSize
			if mt.tileParts[absTX] == nil {
				mt.tileParts[absTX] = make(map[int]Part)
			}
			mt.tileParts[absTX][absTY] = ft.Part
		}
	}
}

// smoothFocusTiles draws a half-disk smoothing stamp at each collected
// focus tile, sampling its 8 compass neighbors and adding extra darkening
// if a neighbor is selected (spec §4.H).
func (c *MegaTileCache) smoothFocusTiles(rec LayerRecord, zoom int, selected map[store.EntityID]bool) {
	for tx, col := range rec.FocusTiles {
		for ty, ft := range col {
			neighborSelected := false
			for _, off := range compassOffsets {
				nx, ny := tx+off[0], ty+off[1]
				if nRow, ok := rec.FocusTiles[nx]; ok {
					if nft, ok := nRow[ny]; ok && selected[nft.Part.NodeRef] {
						neighborSelected = true
					}
				}
			}
			alpha := 0.5
			if neighborSelected {
				alpha += 0.05
			}
			key := megaKey{zoom: zoom,
				megaX: int(math.Floor((rec.Corner.X + float64(tx*tileSize)) / megaTileSize)),
				megaY: int(math.Floor((rec.Corner.Y + float64(ty*tileSize)) / megaTileSize)),
			}
			mt, ok := c.byKey[key]
			if !ok {
				continue
			}
			c.stampFocusTile(mt, ft, alpha)
		}
	}
}

func (c *MegaTileCache) stampFocusTile(mt *MegaTile, ft FocusTile, alpha float64) {
	if mt.canvas == nil {
		mt.canvas = c.pool.Acquire(megaTileSize, megaTileSize)
	}
	localX := float64(ft.TileX*tileSize) - float64(mt.key.megaX*megaTileSize)
	localY := float64(ft.TileY*tileSize) - float64(mt.key.megaY*megaTileSize)
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(localX, localY)
	op.ColorScale.ScaleWithColor(colorToRGBA(ft.Part.FillStyle.withAlpha(alpha)))
	mt.canvas.DrawImage(whitePixel, &op)
}

// Evict removes key from the cache, releases its canvas to the pool, and
// drops it from the reverse index of every node it held.
func (c *MegaTileCache) Evict(key megaKey) {
	mt, ok := c.byKey[key]
	if !ok {
		return
	}
	c.pool.Release(mt.canvas)
	delete(c.byKey, key)
	for id := range mt.nodeIDs {
		if set := c.byNode[id]; set != nil {
			delete(set, key)
			if len(set) == 0 {
				delete(c.byNode, id)
			}
		}
	}
}

// EvictNode evicts every megatile that contains node (used when a node is
// removed, translated, or otherwise invalidated).
func (c *MegaTileCache) EvictNode(id store.EntityID) {
	for key := range c.byNode[id] {
		c.Evict(key)
	}
}

// MegaTilesFor returns the set of megatile keys currently holding node.
func (c *MegaTileCache) MegaTilesFor(id store.EntityID) []megaKey {
	set := c.byNode[id]
	keys := make([]megaKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return keys
}

// Get returns the megatile at key, if composited.
func (c *MegaTileCache) Get(key megaKey) (*MegaTile, bool) {
	mt, ok := c.byKey[key]
	return mt, ok
}
