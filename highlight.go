package cartograph

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/store"
)

const undoFlashDuration float32 = 0.45

type flashedNode struct {
	center geometry.Vector3
	radius float64
}

// undoFlash fades a highlight ring over the nodes an undo or redo just
// touched, so the change is visible even if it happened off-screen from
// the last click. Purely cosmetic: it never affects hit-testing or the
// megatile cache, only what RenderContext.Redraw draws on top of it.
type undoFlash struct {
	nodes []flashedNode
	tween *gween.Tween
	alpha float32
}

// FlashUndo snapshots the current center and radius of every node in ids
// and starts (replacing any in-progress flash) a fading highlight ring
// over them. A host calls this right after performing the Action an undo
// or redo produced. Ids whose center or radius cannot be read (the store
// has no record of them) are skipped rather than erroring, since a flash
// is best-effort decoration; soft-deleted nodes still resolve and flash.
func (r *RenderContext) FlashUndo(ctx context.Context, ids []store.EntityID) {
	nodes := make([]flashedNode, 0, len(ids))
	for _, id := range ids {
		n := r.Mapper.Node(id)
		center, err := n.Center(ctx)
		if err != nil {
			continue
		}
		radius, err := n.Radius(ctx)
		if err != nil {
			continue
		}
		nodes = append(nodes, flashedNode{center: center, radius: radius})
	}
	if len(nodes) == 0 {
		return
	}
	r.flash = &undoFlash{
		nodes: nodes,
		tween: gween.New(1, 0, undoFlashDuration, ease.OutQuad),
		alpha: 1,
	}
}

// AdvanceFlash steps the active undo/redo flash by dt seconds, clearing
// it once the fade completes. Call once per frame before Redraw.
func (r *RenderContext) AdvanceFlash(dt float32) {
	if r.flash == nil {
		return
	}
	alpha, done := r.flash.tween.Update(dt)
	r.flash.alpha = alpha
	if done {
		r.flash = nil
	}
}

// drawFlash outlines every flashed node with a ring whose opacity follows
// the active fade.
func (r *RenderContext) drawFlash(screen *ebiten.Image) {
	if r.flash == nil || r.flash.alpha <= 0 {
		return
	}
	col := colorToRGBA(Color{R: 1, G: 1, B: 1, A: float64(r.flash.alpha)})
	for _, n := range r.flash.nodes {
		cx, cy := r.mapPointToCanvas(n.center)
		rad := float32(r.unitsToPixels(n.radius)) + 4
		vector.StrokeCircle(screen, float32(cx), float32(cy), rad, 2, col, true)
	}
}
