package cartograph

import (
	"context"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/store"
)

// Selection tracks the directly-selected node set plus the wider set that
// includes their parents, children, and siblings — the set the UI treats
// as "related" for highlighting purposes (spec §4.L).
type Selection struct {
	direct map[store.EntityID]bool
	wide   map[store.EntityID]bool
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{direct: make(map[store.EntityID]bool), wide: make(map[store.EntityID]bool)}
}

// Set replaces the directly-selected set with ids and recomputes the wider
// set (spec §4.L).
func (s *Selection) Set(ctx context.Context, m *mapper.Mapper, ids []store.EntityID) error {
	s.direct = make(map[store.EntityID]bool, len(ids))
	for _, id := range ids {
		s.direct[id] = true
	}
	return s.recomputeWide(ctx, m)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.direct = make(map[store.EntityID]bool)
	s.wide = make(map[store.EntityID]bool)
}

func (s *Selection) recomputeWide(ctx context.Context, m *mapper.Mapper) error {
	wide := make(map[store.EntityID]bool)
	for id := range s.direct {
		wide[id] = true
		n := m.Node(id)
		parent, err := n.Parent(ctx)
		if err != nil {
			return err
		}
		if parent != store.NoEntity {
			wide[parent] = true
			children, err := m.Node(parent).Children(ctx)
			if err != nil {
				return err
			}
			for _, c := range children {
				wide[c] = true
			}
		}
		children, err := n.Children(ctx)
		if err != nil {
			return err
		}
		for _, c := range children {
			wide[c] = true
		}
	}
	s.wide = wide
	return nil
}

// HasNodeRef reports whether id is in the directly-selected set.
func (s *Selection) HasNodeRef(id store.EntityID) bool {
	return s.direct[id]
}

// Contains reports whether id is in the directly-selected set or the
// wider parent/child/sibling set.
func (s *Selection) Contains(id store.EntityID) bool {
	return s.direct[id] || s.wide[id]
}

// JoinWith returns a new selection whose direct set is the union of s and
// other's direct sets.
func (s *Selection) JoinWith(ctx context.Context, m *mapper.Mapper, other *Selection) (*Selection, error) {
	ids := make([]store.EntityID, 0, len(s.direct)+len(other.direct))
	for id := range s.direct {
		ids = append(ids, id)
	}
	for id := range other.direct {
		ids = append(ids, id)
	}
	joined := NewSelection()
	if err := joined.Set(ctx, m, ids); err != nil {
		return nil, err
	}
	return joined, nil
}

// AsMap returns the direct selection as a map, suitable for
// MegaTileCache.Composite's darkening parameter.
func (s *Selection) AsMap() map[store.EntityID]bool {
	return s.direct
}

// DragEvent is a multi-frame pointer interaction started by a brush (spec
// §4.L). Update is called on every subsequent pointer move while the
// button stays down; End on release, returning whatever Action should go
// on the undo stack (nil if nothing happened); Cancel reverses the drag
// in place if the interaction is aborted (opposite button pressed,
// pointer left the canvas) — it never touches the undo stack itself.
type DragEvent interface {
	Update(ctx context.Context, world geometry.Vector3) error
	End(ctx context.Context) (Action, error)
	Cancel(ctx context.Context) error
}

// PanDragEvent scrolls the render context by the pointer's delta each
// frame; it never touches the store (spec §4.L).
type PanDragEvent struct {
	RC        *RenderContext
	lastPoint geometry.Vector3
}

func NewPanDragEvent(rc *RenderContext, start geometry.Vector3) *PanDragEvent {
	return &PanDragEvent{RC: rc, lastPoint: start}
}

func (p *PanDragEvent) Update(ctx context.Context, world geometry.Vector3) error {
	p.RC.ScrollX -= world.X - p.lastPoint.X
	p.RC.ScrollY -= world.Y - p.lastPoint.Y
	p.lastPoint = world
	return nil
}

func (p *PanDragEvent) End(ctx context.Context) (Action, error) { return nil, nil }
func (p *PanDragEvent) Cancel(ctx context.Context) error        { return nil }

// TranslateDragEvent moves the target node (and descendants) by the
// pointer's delta each frame; Cancel reverts the accumulated delta so an
// aborted drag leaves the map untouched. End returns the single
// TranslateAction that reverses the whole drag, for the undo stack (spec
// §4.K, §4.L).
type TranslateDragEvent struct {
	Mapper     *mapper.Mapper
	Target     store.EntityID
	lastPoint  geometry.Vector3
	totalDelta geometry.Vector3
}

func NewTranslateDragEvent(m *mapper.Mapper, target store.EntityID, start geometry.Vector3) *TranslateDragEvent {
	return &TranslateDragEvent{Mapper: m, Target: target, lastPoint: start}
}

func (d *TranslateDragEvent) Update(ctx context.Context, world geometry.Vector3) error {
	delta := world.Sub(d.lastPoint)
	if err := d.Mapper.TranslateNode(ctx, d.Target, delta); err != nil {
		return err
	}
	d.lastPoint = world
	d.totalDelta = d.totalDelta.Add(delta)
	return nil
}

func (d *TranslateDragEvent) End(ctx context.Context) (Action, error) {
	if d.totalDelta == (geometry.Vector3{}) {
		return nil, nil
	}
	return &TranslateAction{Mapper: d.Mapper, Target: d.Target, Offset: d.totalDelta.Scale(-1)}, nil
}

func (d *TranslateDragEvent) Cancel(ctx context.Context) error {
	if d.totalDelta == (geometry.Vector3{}) {
		return nil
	}
	return d.Mapper.TranslateNode(ctx, d.Target, d.totalDelta.Scale(-1))
}

// DrawDragEvent drives a brush's trigger once per frame over the path's
// most-recent segment, accumulating every trigger's inverse into one
// BulkAction returned from End (spec §4.L). AddBrush and DeleteBrush each
// supply their own Trigger: AddBrush's runs a DrawPathAction over the
// segment, DeleteBrush's runs a RemoveAction over whatever the segment's
// brush circle covers (spec §4.J).
type DrawDragEvent struct {
	// Trigger is called once per frame with the path so far and whether
	// this is the terminal call (drag end). It returns the inverse of
	// whatever it did.
	Trigger func(ctx context.Context, path *geometry.Path, last bool) (Action, error)

	path     *geometry.Path
	inverses []Action
}

// NewDrawDragEvent starts a drag at start, driven by trigger.
func NewDrawDragEvent(start geometry.Vector3, trigger func(ctx context.Context, path *geometry.Path, last bool) (Action, error)) *DrawDragEvent {
	return &DrawDragEvent{Trigger: trigger, path: geometry.NewPath(start)}
}

func (d *DrawDragEvent) Update(ctx context.Context, world geometry.Vector3) error {
	d.path.AppendVertex(world)
	inv, err := d.Trigger(ctx, d.path, false)
	if err != nil {
		return err
	}
	if inv != nil {
		d.inverses = append(d.inverses, inv)
	}
	return nil
}

func (d *DrawDragEvent) End(ctx context.Context) (Action, error) {
	inv, err := d.Trigger(ctx, d.path, true)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		d.inverses = append(d.inverses, inv)
	}
	if len(d.inverses) == 0 {
		return nil, nil
	}
	return &BulkAction{Actions: reverseActions(d.inverses)}, nil
}

func (d *DrawDragEvent) Cancel(ctx context.Context) error {
	if len(d.inverses) == 0 {
		return nil
	}
	_, err := (&BulkAction{Actions: reverseActions(d.inverses)}).Perform(ctx)
	d.inverses = nil
	return err
}
