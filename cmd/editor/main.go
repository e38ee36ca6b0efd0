// Command editor is a minimal map editor host: a brush toolbar driven
// from number keys, an undo/redo stack built on cartograph.Action, a
// debug overlay toggled from function keys, and an always-on FPS overlay.
package main

import (
	"context"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/worldforge/cartograph"
	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/store"
)

const (
	windowTitle = "Cartograph Editor"
	screenW     = 1024
	screenH     = 768
)

type game struct {
	ctx context.Context
	rc  *cartograph.RenderContext
	in  *cartograph.Input
	sel *cartograph.Selection

	brushes    []cartograph.Brush
	brushIndex int

	debug  *cartograph.DebugOverlay
	labels *cartograph.LabelOverlay
	fps    *cartograph.FrameStats
}

func newGame() *game {
	ctx := context.Background()
	m := mapper.New(store.NewMemStore())
	rc := cartograph.NewRenderContext(m, screenW, screenH)
	sel := cartograph.NewSelection()

	g := &game{
		ctx: ctx,
		rc:  rc,
		sel: sel,
		brushes: []cartograph.Brush{
			cartograph.NewAddBrush("grass"),
			cartograph.NewDeleteBrush(),
			cartograph.NewSelectBrush(sel),
			cartograph.NewDistancePegBrush(8),
		},
		debug:  &cartograph.DebugOverlay{},
		labels: &cartograph.LabelOverlay{},
		fps:    &cartograph.FrameStats{},
	}
	g.in = cartograph.NewInput(rc)
	g.in.Brush = g.brushes[0]
	return g
}

func (g *game) undo() error {
	act, err := g.in.Undo(g.ctx)
	if err != nil {
		return err
	}
	if ids := affectedIDs(act); len(ids) > 0 {
		g.rc.FlashUndo(g.ctx, ids)
	}
	return nil
}

func (g *game) redo() error {
	act, err := g.in.Redo(g.ctx)
	if err != nil {
		return err
	}
	if ids := affectedIDs(act); len(ids) > 0 {
		g.rc.FlashUndo(g.ctx, ids)
	}
	return nil
}

// affectedIDs extracts the entity refs an Action touched, for the undo
// flash overlay. Only the action kinds this host actually performs carry
// refs worth flashing; everything else is skipped rather than guessed at.
func affectedIDs(act cartograph.Action) []store.EntityID {
	switch a := act.(type) {
	case *cartograph.RemoveAction:
		return a.Refs
	case *cartograph.UnremoveAction:
		return a.Refs
	case *cartograph.TranslateAction:
		return []store.EntityID{a.Target}
	case *cartograph.BulkAction:
		var ids []store.EntityID
		for _, child := range a.Actions {
			ids = append(ids, affectedIDs(child)...)
		}
		return ids
	}
	return nil
}

func (g *game) Update() error {
	if err := g.in.Update(g.ctx); err != nil {
		return err
	}

	for i, key := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4} {
		if i < len(g.brushes) && inpututil.IsKeyJustPressed(key) {
			g.brushIndex = i
			if err := g.in.SetBrush(g.ctx, g.brushes[i]); err != nil {
				return err
			}
		}
	}
	if peg, ok := g.in.Brush.(*cartograph.DistancePegBrush); ok {
		peg.Advance(1.0 / 60)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyZ) {
		if err := g.undo(); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyY) {
		if err := g.redo(); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug.ShowMegaTileGrid = !g.debug.ShowMegaTileGrid
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.debug.ShowNodeGraph = !g.debug.ShowNodeGraph
		g.debug.ShowRadii = g.debug.ShowNodeGraph
	}

	g.rc.AdvanceFlash(1.0 / 60)
	return g.rc.Recalc(g.ctx)
}

func (g *game) Draw(screen *ebiten.Image) {
	g.rc.Redraw(screen)
	if err := g.debug.Draw(g.ctx, screen, g.rc); err != nil {
		log.Println("debug overlay:", err)
	}
	if err := g.labels.Draw(g.ctx, screen, g.rc); err != nil {
		log.Println("label overlay:", err)
	}
	g.fps.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.rc.ViewportWidth, g.rc.ViewportHeight = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func main() {
	g := newGame()
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle(windowTitle)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
