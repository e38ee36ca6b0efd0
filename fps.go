package cartograph

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FrameStats tracks how long Recalc and Redraw took on the last frame, and
// prints it via ebitenutil.DebugPrint when drawn — a lightweight
// replacement for a scene-graph FPS widget, since this package has no
// node tree to hang one off of; the host loop owns calling Recalc/Redraw
// once per frame (spec §5), so this just reports their cost.
type FrameStats struct {
	RecalcMillis float64
	RedrawMillis float64
}

// Draw overlays the last recorded frame cost plus Ebitengine's own
// FPS/TPS counters in the screen's top-left corner.
func (f *FrameStats) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f\nTPS: %.1f\nrecalc: %.2fms\nredraw: %.2fms",
		ebiten.ActualFPS(), ebiten.ActualTPS(), f.RecalcMillis, f.RedrawMillis))
}
