package cartograph

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// syntheticEvent is a single injected pointer event, in canvas-space
// pixels (spec §8 end-to-end scenario tests).
type syntheticEvent struct {
	x, y    float64
	pressed bool
	button  MouseButton
}

// Injector queues synthetic pointer events and replays them through an
// Input's press/drag/release state machine without touching a real
// mouse — so scenario tests drive the exact same code path a live user
// would, one frame at a time (spec §8).
type Injector struct {
	queue []syntheticEvent
}

// Press queues a left-button press at (x, y).
func (inj *Injector) Press(x, y float64) {
	inj.queue = append(inj.queue, syntheticEvent{x: x, y: y, pressed: true, button: MouseButtonLeft})
}

// Move queues a left-button-held move to (x, y).
func (inj *Injector) Move(x, y float64) {
	inj.queue = append(inj.queue, syntheticEvent{x: x, y: y, pressed: true, button: MouseButtonLeft})
}

// Release queues a left-button release at (x, y).
func (inj *Injector) Release(x, y float64) {
	inj.queue = append(inj.queue, syntheticEvent{x: x, y: y, pressed: false, button: MouseButtonLeft})
}

// Click queues a press immediately followed by a release at the same
// point — two frames once drained.
func (inj *Injector) Click(x, y float64) {
	inj.Press(x, y)
	inj.Release(x, y)
}

// Drag queues a press at (fromX, fromY), steps linearly-interpolated
// moves, and a release at (toX, toY). steps < 1 is treated as 1.
func (inj *Injector) Drag(fromX, fromY, toX, toY float64, steps int) {
	if steps < 1 {
		steps = 1
	}
	inj.Press(fromX, fromY)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		inj.Move(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	inj.Release(toX, toY)
}

// Pending reports how many events remain queued.
func (inj *Injector) Pending() int { return len(inj.queue) }

// Step drains exactly one queued event through in's state machine,
// mirroring what Input.Update would do for the equivalent live pointer
// state. Returns false once the queue is empty.
func (inj *Injector) Step(ctx context.Context, in *Input) (bool, error) {
	if len(inj.queue) == 0 {
		return false, nil
	}
	evt := inj.queue[0]
	inj.queue = inj.queue[1:]
	in.RC.CursorX, in.RC.CursorY = evt.x, evt.y

	switch {
	case evt.pressed && !in.down:
		return true, in.press(ctx, evt.x, evt.y, evt.button)
	case evt.pressed && in.down:
		return true, in.hold(ctx, evt.x, evt.y)
	case !evt.pressed && in.down:
		return true, in.release(ctx)
	default:
		return true, nil
	}
}

// Drain feeds every queued event through in, one per simulated frame,
// stopping at the first error.
func (inj *Injector) Drain(ctx context.Context, in *Input) error {
	for {
		more, err := inj.Step(ctx, in)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Capture reads screen into a flat, row-major RGBA byte slice for
// deterministic in-memory pixel assertions — scenario tests compare
// bytes directly rather than writing PNGs to disk (spec §8).
func Capture(screen *ebiten.Image) []byte {
	b := screen.Bounds()
	pix := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pix)
	return pix
}

// PixelAt returns the color at (x, y) in screen, straight-alpha.
func PixelAt(screen *ebiten.Image, x, y int) color.RGBA {
	b := screen.Bounds()
	pix := Capture(screen)
	i := 4 * (y*b.Dx() + x)
	if i < 0 || i+4 > len(pix) {
		return color.RGBA{}
	}
	return color.RGBA{R: pix[i], G: pix[i+1], B: pix[i+2], A: pix[i+3]}
}
