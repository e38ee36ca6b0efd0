package cartograph

import (
	"context"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// defaultDragDeadZone is the minimum canvas-pixel movement before a held
// press counts as a drag rather than a click (spec §4.J, §8 invariant:
// a click that never moves must not translate a node).
const defaultDragDeadZone = 4.0

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// cursorState reads the current pointer position and which button, if
// any, is held down. Only one button is reported at a time; if more than
// one is physically held, left wins, then right, then middle, matching
// the precedence a single-button touch pointer would report.
func cursorState() (x, y float64, pressed bool, button MouseButton) {
	mx, my := ebiten.CursorPosition()
	x, y = float64(mx), float64(my)
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		return x, y, true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		return x, y, true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		return x, y, true, MouseButtonMiddle
	default:
		return x, y, false, 0
	}
}

// Input drives a RenderContext's active Brush from mouse and keyboard
// state: one call to Update per frame runs the whole press/drag/release
// state machine (spec §4.I, §4.J — the "host loop" this package never
// schedules for itself, per the single-threaded model in spec §5).
type Input struct {
	RC           *RenderContext
	Brush        Brush
	DragDeadZone float64

	// UndoStack/RedoStack hold every committed Action in press order;
	// Undo/Redo pop and replay them (spec §4.K).
	UndoStack []Action
	RedoStack []Action

	down     bool
	button   MouseButton
	startX   float64
	startY   float64
	dragging bool
	active   DragEvent
}

// NewInput builds an Input bound to rc, initially with no active brush.
func NewInput(rc *RenderContext) *Input {
	return &Input{RC: rc, DragDeadZone: defaultDragDeadZone}
}

// SetBrush swaps the active brush. A drag already in progress under the
// previous brush is cancelled first, so switching tools mid-drag never
// leaves a dangling mutation.
func (in *Input) SetBrush(ctx context.Context, b Brush) error {
	if err := in.cancelActive(ctx); err != nil {
		return err
	}
	in.Brush = b
	return nil
}

func (in *Input) cancelActive(ctx context.Context) error {
	if in.active == nil {
		return nil
	}
	err := in.active.Cancel(ctx)
	in.active = nil
	in.down = false
	in.dragging = false
	return err
}

func (in *Input) insideCanvas(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(in.RC.ViewportWidth) && y < float64(in.RC.ViewportHeight)
}

// Update reads the current pointer and keyboard state and advances the
// press/drag/release state machine by one frame. Scroll wheel motion
// zooms the view, anchored on the cursor (spec §4.I SetZoom). Right
// button down cancels any left-button drag in progress and starts a pan
// instead, tracked independently of the left/middle precedence
// cursorState applies (spec §4.I mouse handling).
func (in *Input) Update(ctx context.Context) error {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	in.RC.CursorX, in.RC.CursorY = x, y

	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		if wheelY > 0 {
			in.RC.SetZoom(in.RC.Zoom + 1)
		} else {
			in.RC.SetZoom(in.RC.Zoom - 1)
		}
	}

	if in.down && in.button == MouseButtonRight {
		if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
			return in.release(ctx)
		}
		if !in.insideCanvas(x, y) {
			return in.cancelActive(ctx)
		}
		return in.hold(ctx, x, y)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		return in.pressRight(ctx, x, y)
	}

	_, _, pressed, button := cursorState()
	switch {
	case pressed && !in.down:
		return in.press(ctx, x, y, button)
	case pressed && in.down:
		if button != in.button {
			return in.cancelActive(ctx)
		}
		if !in.insideCanvas(x, y) {
			return in.cancelActive(ctx)
		}
		return in.hold(ctx, x, y)
	case !pressed && in.down:
		return in.release(ctx)
	default:
		return nil
	}
}

// pressRight cancels any in-progress left-button drag (undoing its
// pending action) and starts a PanDragEvent, bypassing the drag dead zone
// since panning has no click-vs-drag ambiguity to resolve (spec §4.I).
func (in *Input) pressRight(ctx context.Context, x, y float64) error {
	if in.down && in.button == MouseButtonLeft {
		if err := in.cancelActive(ctx); err != nil {
			return err
		}
	}
	in.down = true
	in.button = MouseButtonRight
	in.startX, in.startY = x, y
	in.dragging = true
	in.active = NewPanDragEvent(in.RC, in.RC.canvasPointToMap(x, y))
	return nil
}

func (in *Input) press(ctx context.Context, x, y float64, button MouseButton) error {
	in.down = true
	in.button = button
	in.startX, in.startY = x, y
	in.dragging = false
	in.active = nil

	if in.Brush == nil {
		return nil
	}
	world := in.RC.canvasPointToMap(x, y)
	ev, err := in.Brush.Activate(ctx, in.RC, world)
	if err != nil {
		return err
	}
	in.active = ev
	return nil
}

func (in *Input) hold(ctx context.Context, x, y float64) error {
	if in.active == nil {
		return nil
	}
	if !in.dragging {
		dx, dy := x-in.startX, y-in.startY
		if math.Hypot(dx, dy) <= in.DragDeadZone {
			return nil
		}
		in.dragging = true
	}
	return in.active.Update(ctx, in.RC.canvasPointToMap(x, y))
}

func (in *Input) release(ctx context.Context) error {
	in.down = false
	in.dragging = false
	if in.active == nil {
		return nil
	}
	active := in.active
	in.active = nil
	act, err := active.End(ctx)
	if err != nil {
		return err
	}
	in.pushUndo(act)
	return nil
}

// pushUndo records act on the undo stack and clears the redo stack, the
// usual "new action invalidates redo history" rule. A nil or empty action
// is dropped rather than recorded.
func (in *Input) pushUndo(act Action) {
	if act == nil || act.Empty() {
		return
	}
	in.UndoStack = append(in.UndoStack, act)
	in.RedoStack = nil
}

// Undo performs the most recent undo-stack action, pushing its inverse
// onto the redo stack, and returns the action that was undone (nil if
// the stack was empty) so a host can e.g. flash the nodes it touched.
func (in *Input) Undo(ctx context.Context) (Action, error) {
	if len(in.UndoStack) == 0 {
		return nil, nil
	}
	n := len(in.UndoStack) - 1
	act := in.UndoStack[n]
	in.UndoStack = in.UndoStack[:n]

	inv, err := act.Perform(ctx)
	if err != nil {
		return nil, err
	}
	in.RedoStack = append(in.RedoStack, inv)
	return act, nil
}

// Redo is the mirror of Undo: it replays the most recently undone action.
func (in *Input) Redo(ctx context.Context) (Action, error) {
	if len(in.RedoStack) == 0 {
		return nil, nil
	}
	n := len(in.RedoStack) - 1
	act := in.RedoStack[n]
	in.RedoStack = in.RedoStack[:n]

	inv, err := act.Perform(ctx)
	if err != nil {
		return nil, err
	}
	in.UndoStack = append(in.UndoStack, inv)
	return act, nil
}
