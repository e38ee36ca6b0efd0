package mapper

import (
	"context"
	"fmt"

	"github.com/worldforge/cartograph/pkg/entity"
	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/hooks"
	"github.com/worldforge/cartograph/pkg/registry"
	"github.com/worldforge/cartograph/pkg/store"
)

// unitsPerMeter is the only place the units↔meters ratio appears (spec
// §4.F).
const unitsPerMeter = 2.0

// InsertOptions carries the optional fields accepted by Mapper.InsertNode.
type InsertOptions struct {
	Parent store.EntityID // store.NoEntity for a root object node
	Type   string         // key into the node-type registry
	Radius float64
	Layer  string // key into the layer registry; "" falls back to Type's default layer
}

// Mapper owns the store, the node-type and layer registries, and the hook
// bus, and exposes the mutation surface the rest of the engine drives
// (spec §4.F).
type Mapper struct {
	store     store.MapStore
	NodeTypes *registry.NodeTypeRegistry
	Layers    *registry.LayerRegistry
	Hooks     *hooks.Bus

	nodeHandles map[store.EntityID]*entity.NodeHandle
	edgeHandles map[store.EntityID]*entity.EdgeHandle

	unsavedChanges bool
}

// New constructs a Mapper over s, pre-seeding the node-type and layer
// registries with the built-in descriptors.
func New(s store.MapStore) *Mapper {
	return &Mapper{
		store:       s,
		NodeTypes:   registry.NewNodeTypeRegistry(),
		Layers:      registry.NewLayerRegistry(),
		Hooks:       hooks.New(),
		nodeHandles: make(map[store.EntityID]*entity.NodeHandle),
		edgeHandles: make(map[store.EntityID]*entity.EdgeHandle),
	}
}

// Store returns the underlying store, for components (RenderContext,
// spatial queries) that need direct read access.
func (m *Mapper) Store() store.MapStore { return m.store }

// UnitsToMeters converts a world-unit length to meters.
func UnitsToMeters(u float64) float64 { return u * unitsPerMeter }

// MetersToUnits converts a meter length to world units.
func MetersToUnits(me float64) float64 { return me / unitsPerMeter }

// Node returns the cached NodeHandle for id, creating one on first
// access. The same *entity.NodeHandle is returned for repeated calls with
// the same id, so its caches (descendants/edges/neighbors) stay coherent
// across callers until Mapper invalidates them.
func (m *Mapper) Node(id store.EntityID) *entity.NodeHandle {
	if h, ok := m.nodeHandles[id]; ok {
		return h
	}
	h := entity.NewNodeHandle(m.store, id)
	m.nodeHandles[id] = h
	return h
}

// Edge returns the cached EdgeHandle for id, creating one on first access.
func (m *Mapper) Edge(id store.EntityID) *entity.EdgeHandle {
	if h, ok := m.edgeHandles[id]; ok {
		return h
	}
	h := entity.NewEdgeHandle(m.store, id)
	m.edgeHandles[id] = h
	return h
}

// invalidateAround discards the cached handles whose view of the graph
// changed because of a mutation to id: id itself, its parent (child list
// changed), and its neighbors (edge/neighbor list changed). Mirrors spec
// §4.C: "remove()/unremove() must invalidate self and clear parent's
// children cache and all neighbors' edges/neighbors caches."
func (m *Mapper) invalidateAround(ctx context.Context, id store.EntityID) {
	n := m.Node(id)
	if parent, err := n.Parent(ctx); err == nil && parent != store.NoEntity {
		if ph, ok := m.nodeHandles[parent]; ok {
			ph.Invalidate()
		}
	}
	for _, neighbor := range neighborsBestEffort(ctx, n) {
		if nh, ok := m.nodeHandles[neighbor]; ok {
			nh.Invalidate()
		}
	}
	n.Invalidate()
}

func neighborsBestEffort(ctx context.Context, n *entity.NodeHandle) []store.EntityID {
	neighbors, err := n.GetNeighbors(ctx)
	if err != nil {
		return nil
	}
	return neighbors
}

// emit fires a hook event and wraps any listener error with the event
// name for easier diagnosis upstream.
func (m *Mapper) emit(ctx context.Context, name string, args ...any) error {
	if err := m.Hooks.Emit(ctx, name, args...); err != nil {
		return fmt.Errorf("mapper: hook %q: %w", name, err)
	}
	return nil
}

// HasUnsavedChanges reports whether any mutation has occurred since the
// last ClearUnsavedChangeState.
func (m *Mapper) HasUnsavedChanges() bool { return m.unsavedChanges }

// DeclareUnsavedChanges marks the map dirty and emits "unsavedChanges" if
// this is a transition from clean to dirty.
func (m *Mapper) DeclareUnsavedChanges(ctx context.Context) error {
	if m.unsavedChanges {
		return nil
	}
	m.unsavedChanges = true
	return m.emit(ctx, "unsavedChanges", true)
}

// ClearUnsavedChangeState marks the map clean (after a successful save)
// and emits "unsavedChanges" if this is a transition from dirty to clean.
func (m *Mapper) ClearUnsavedChangeState(ctx context.Context) error {
	if !m.unsavedChanges {
		return nil
	}
	m.unsavedChanges = false
	return m.emit(ctx, "unsavedChanges", false)
}

// Flush forces the store to persist (spec §4.B flush(), exposed as a
// pass-through per §5 "the Mapper exposes a flush() pass-through for
// explicit save before export").
func (m *Mapper) Flush(ctx context.Context) error {
	return m.store.Flush(ctx)
}

// NodesTouchingArea forwards to the store's spatial query.
func (m *Mapper) NodesTouchingArea(ctx context.Context, box geometry.Box3, minRadius float64) ([]store.EntityID, error) {
	seq, err := m.store.GetNodesTouchingArea(ctx, box, minRadius)
	if err != nil {
		return nil, err
	}
	return collect(seq), nil
}

// ObjectNodesTouchingArea forwards to the store's spatial query,
// restricted to "object"-role nodes.
func (m *Mapper) ObjectNodesTouchingArea(ctx context.Context, box geometry.Box3, minRadius float64) ([]store.EntityID, error) {
	seq, err := m.store.GetObjectNodesTouchingArea(ctx, box, minRadius)
	if err != nil {
		return nil, err
	}
	return collect(seq), nil
}

func collect(seq func(func(store.EntityID) bool)) []store.EntityID {
	var out []store.EntityID
	for id := range seq {
		out = append(out, id)
	}
	return out
}
