package cartograph

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/store"
)

const (
	minBrushSize   = 1
	maxBrushSize   = 20
	pixelsPerSize  = 15
)

// Brush is a pointer-activated tool: it decides what a press on the
// canvas does, and may start a multi-frame DragEvent (spec §4.J).
type Brush interface {
	Description() string
	DisplayButton() string
	DisplaySidebar() bool
	RadiusPixels() float64
	SizeInMeters() float64
	Draw(screen *ebiten.Image, rc *RenderContext)
	Activate(ctx context.Context, rc *RenderContext, point geometry.Vector3) (DragEvent, error)
	Increment()
	Decrement()
	Enlarge()
	Shrink()
	SignalLayerChange(layer string)
}

// baseBrush implements the size/radius bookkeeping shared by every brush
// (spec §4.J: "getRadius() = size x 15px bounded 1..20").
type baseBrush struct {
	Size  int
	Layer string
}

func newBaseBrush() baseBrush {
	return baseBrush{Size: 5}
}

func (b *baseBrush) clampSize() {
	if b.Size < minBrushSize {
		b.Size = minBrushSize
	}
	if b.Size > maxBrushSize {
		b.Size = maxBrushSize
	}
}

func (b *baseBrush) RadiusPixels() float64 {
	b.clampSize()
	return float64(b.Size * pixelsPerSize)
}

func (b *baseBrush) SizeInMeters() float64 {
	return mapper.UnitsToMeters(float64(b.Size))
}

func (b *baseBrush) Increment() { b.Size++; b.clampSize() }
func (b *baseBrush) Decrement() { b.Size--; b.clampSize() }
func (b *baseBrush) Enlarge()   { b.Size += 2; b.clampSize() }
func (b *baseBrush) Shrink()    { b.Size -= 2; b.clampSize() }

func (b *baseBrush) SignalLayerChange(layer string) { b.Layer = layer }

func (b *baseBrush) drawCircleOutline(screen *ebiten.Image, rc *RenderContext, col Color) {
	cx, cy := float32(rc.CursorX), float32(rc.CursorY)
	r := float32(b.RadiusPixels())
	vector.StrokeCircle(screen, cx, cy, r, 1, colorToRGBA(col), true)
}

// AddBrush paints point nodes of Type along a drag, under a hovered object
// of the same type or a new object node created on press (spec §4.J).
type AddBrush struct {
	baseBrush
	Type string
}

func NewAddBrush(nodeType string) *AddBrush {
	return &AddBrush{baseBrush: newBaseBrush(), Type: nodeType}
}

func (b *AddBrush) Description() string  { return fmt.Sprintf("add %s", b.Type) }
func (b *AddBrush) DisplayButton() string { return "add" }
func (b *AddBrush) DisplaySidebar() bool  { return true }

func (b *AddBrush) Draw(screen *ebiten.Image, rc *RenderContext) {
	b.drawCircleOutline(screen, rc, ColorWhite)
}

// Activate reuses the hovered object node if its type matches this
// brush's, or creates a fresh zero-radius "object" parent, then returns a
// DrawDragEvent whose trigger runs a DrawPathAction over each frame's
// newest path segment and, on the final frame, a trailing
// NodeCleanupAction over the whole parent (spec §4.J, §4.K).
func (b *AddBrush) Activate(ctx context.Context, rc *RenderContext, point geometry.Vector3) (DragEvent, error) {
	radiusUnits := rc.pixelsToUnits(b.RadiusPixels())

	parent, err := b.hoveredParent(ctx, rc)
	if err != nil {
		return nil, err
	}
	createdParent := parent == store.NoEntity
	if createdParent {
		parent, err = rc.Mapper.InsertNode(ctx, point, store.RoleObject, mapper.InsertOptions{
			Type: b.Type, Radius: 0, Layer: b.Layer,
		})
		if err != nil {
			return nil, err
		}
	}

	draw := &DrawPathAction{
		Mapper: rc.Mapper, RC: rc, Parent: parent, Layer: b.Layer, Type: b.Type, RadiusUnits: radiusUnits,
	}
	first := true
	// When createdParent, undoing the whole stroke is a single cascading
	// RemoveAction over parent — it already removes every point/path node
	// and the object itself, so the per-frame inverses are dropped along
	// the way rather than accumulated. Reusing an existing parent can't
	// do that (it would delete content from earlier strokes too), so
	// those inverses are kept and bundled at the end instead.
	trigger := func(ctx context.Context, path *geometry.Path, last bool) (Action, error) {
		seg := path.LastSegmentOnly()
		seg.Bisect(radiusUnits)
		draw.Points = seg.Vertices()
		draw.First = first
		draw.Last = last
		first = false

		inv, err := draw.Perform(ctx)
		if err != nil {
			return nil, err
		}
		if !last {
			if createdParent {
				return nil, nil
			}
			return inv, nil
		}

		cleanupInv, err := (&NodeCleanupAction{Mapper: rc.Mapper, Parent: parent}).Perform(ctx)
		if err != nil {
			return nil, err
		}
		if createdParent {
			return &RemoveAction{Mapper: rc.Mapper, Refs: []store.EntityID{parent}}, nil
		}
		return &BulkAction{Actions: []Action{cleanupInv, inv}}, nil
	}
	return NewDrawDragEvent(point, trigger), nil
}

// hoveredParent returns the object node under the cursor whose type
// matches b.Type, or store.NoEntity if nothing is hovered or the hovered
// object is a different type (spec §4.J).
func (b *AddBrush) hoveredParent(ctx context.Context, rc *RenderContext) (store.EntityID, error) {
	part, ok := rc.GetDrawnNodePartAtCanvasPoint(rc.CursorX, rc.CursorY)
	if !ok {
		return store.NoEntity, nil
	}
	child := rc.Mapper.Node(part.NodeRef)
	parent, err := child.Parent(ctx)
	if err != nil || parent == store.NoEntity {
		return store.NoEntity, err
	}
	typeKey, err := rc.Mapper.Node(parent).TypeKey(ctx)
	if err != nil {
		return store.NoEntity, err
	}
	if typeKey != b.Type {
		return store.NoEntity, nil
	}
	return parent, nil
}

// DeleteBrush soft-deletes, along a drag, the leaf point/path nodes inside
// the brush circle, or the object nodes touching it while Shift is held
// (spec §4.J).
type DeleteBrush struct {
	baseBrush
}

func NewDeleteBrush() *DeleteBrush {
	return &DeleteBrush{baseBrush: newBaseBrush()}
}

func (b *DeleteBrush) Description() string  { return "delete" }
func (b *DeleteBrush) DisplayButton() string { return "delete" }
func (b *DeleteBrush) DisplaySidebar() bool  { return false }

func (b *DeleteBrush) Draw(screen *ebiten.Image, rc *RenderContext) {
	b.drawCircleOutline(screen, rc, Color{R: 1, G: 0.3, B: 0.3, A: 1})
}

// Activate returns a DrawDragEvent whose trigger removes, on each frame,
// either the drawn point/path leaf nodes within the brush circle at the
// segment's endpoint (default) or the hovered parent-object roots, when
// Shift is held (spec §4.J).
func (b *DeleteBrush) Activate(ctx context.Context, rc *RenderContext, point geometry.Vector3) (DragEvent, error) {
	radiusUnits := rc.pixelsToUnits(b.RadiusPixels())
	trigger := func(ctx context.Context, path *geometry.Path, last bool) (Action, error) {
		ids, err := b.targets(ctx, rc, path.Last(), radiusUnits)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		return (&RemoveAction{Mapper: rc.Mapper, Refs: ids}).Perform(ctx)
	}
	return NewDrawDragEvent(point, trigger), nil
}

// targets finds what a brush circle at center should remove: leaf point
// or path descendants in the current layer by default, or whole
// parent-object roots when Shift is held (spec §4.J).
func (b *DeleteBrush) targets(ctx context.Context, rc *RenderContext, center geometry.Vector3, radiusUnits float64) ([]store.EntityID, error) {
	box := geometry.FromRadius(center, radiusUnits)

	if readModifiers()&ModShift != 0 {
		return rc.Mapper.ObjectNodesTouchingArea(ctx, box, 0)
	}

	candidates, err := rc.Mapper.NodesTouchingArea(ctx, box, 0)
	if err != nil {
		return nil, err
	}
	var out []store.EntityID
	for _, id := range candidates {
		n := rc.Mapper.Node(id)
		role, err := n.Role(ctx)
		if err != nil {
			return nil, err
		}
		if role != store.RolePoint && role != store.RolePath {
			continue
		}
		hasChildren, err := n.HasChildren(ctx)
		if err != nil {
			return nil, err
		}
		if hasChildren {
			continue
		}
		if b.Layer != "" {
			layer, err := n.LayerKey(ctx)
			if err != nil {
				return nil, err
			}
			if layer != b.Layer {
				continue
			}
		}
		out = append(out, id)
	}
	return out, nil
}

// SelectBrush replaces the active selection with the node under the
// cursor on press, or starts a TranslateDragEvent if the press landed on
// an already-selected node (spec §4.J).
type SelectBrush struct {
	baseBrush
	Selection *Selection
}

func NewSelectBrush(sel *Selection) *SelectBrush {
	return &SelectBrush{baseBrush: newBaseBrush(), Selection: sel}
}

func (b *SelectBrush) Description() string  { return "select" }
func (b *SelectBrush) DisplayButton() string { return "select" }
func (b *SelectBrush) DisplaySidebar() bool  { return false }

func (b *SelectBrush) Draw(screen *ebiten.Image, rc *RenderContext) {}

func (b *SelectBrush) Activate(ctx context.Context, rc *RenderContext, point geometry.Vector3) (DragEvent, error) {
	part, ok := rc.GetDrawnNodePartAtCanvasPoint(rc.CursorX, rc.CursorY)
	if !ok {
		b.Selection.Clear()
		return nil, nil
	}
	if b.Selection.HasNodeRef(part.NodeRef) {
		return NewTranslateDragEvent(rc.Mapper, part.NodeRef, point), nil
	}
	if err := b.Selection.Set(ctx, rc.Mapper, []store.EntityID{part.NodeRef}); err != nil {
		return nil, err
	}
	return nil, nil
}

const pegPulseDuration float32 = 0.6

func newPegPulseTween(up bool) *gween.Tween {
	if up {
		return gween.New(0, 1, pegPulseDuration, ease.InOutSine)
	}
	return gween.New(1, 0, pegPulseDuration, ease.InOutSine)
}

// DistancePegBrush drops a measuring peg on press, keeps the n most recent
// pegs, and reports the straight-line distance, in meters, between each
// consecutive pair of them (spec §4.J). The most recently dropped peg breathes with a looping pulse
// ring so it stands out from the rest while the brush stays active;
// purely cosmetic, it never feeds back into peg placement or distance
// math.
type DistancePegBrush struct {
	baseBrush
	maxPegs int
	pegs    []geometry.Vector3

	pulse      *gween.Tween
	pulseUp    bool
	pulseValue float32
}

func NewDistancePegBrush(n int) *DistancePegBrush {
	return &DistancePegBrush{baseBrush: newBaseBrush(), maxPegs: n, pulse: newPegPulseTween(true), pulseUp: true}
}

func (b *DistancePegBrush) Description() string  { return "distance peg" }
func (b *DistancePegBrush) DisplayButton() string { return "peg" }
func (b *DistancePegBrush) DisplaySidebar() bool  { return true }

// Advance steps the peg pulse by dt seconds, reversing direction each
// time it completes a half-cycle. A host calls this once per frame
// alongside RenderContext.Recalc while this brush is active.
func (b *DistancePegBrush) Advance(dt float32) {
	if b.pulse == nil {
		return
	}
	v, done := b.pulse.Update(dt)
	b.pulseValue = v
	if done {
		b.pulseUp = !b.pulseUp
		b.pulse = newPegPulseTween(b.pulseUp)
	}
}

func (b *DistancePegBrush) Draw(screen *ebiten.Image, rc *RenderContext) {
	b.drawCircleOutline(screen, rc, Color{R: 1, G: 0.9, B: 0.2, A: 1})
	if len(b.pegs) == 0 {
		return
	}
	last := b.pegs[len(b.pegs)-1]
	cx, cy := rc.mapPointToCanvas(last)
	r := float32(6 + 5*b.pulseValue)
	vector.StrokeCircle(screen, float32(cx), float32(cy), r, 1.5, colorToRGBA(Color{R: 1, G: 0.9, B: 0.2, A: 0.7}), true)
}

func (b *DistancePegBrush) Activate(ctx context.Context, rc *RenderContext, point geometry.Vector3) (DragEvent, error) {
	b.pegs = append(b.pegs, point)
	if len(b.pegs) > b.maxPegs {
		b.pegs = b.pegs[len(b.pegs)-b.maxPegs:]
	}
	return nil, nil
}

// Distances returns the straight-line meter distance between each
// consecutive pair of dropped pegs.
func (b *DistancePegBrush) Distances() []float64 {
	if len(b.pegs) < 2 {
		return nil
	}
	out := make([]float64, 0, len(b.pegs)-1)
	for i := 1; i < len(b.pegs); i++ {
		units := b.pegs[i].Distance(b.pegs[i-1])
		out = append(out, mapper.UnitsToMeters(units))
	}
	return out
}
