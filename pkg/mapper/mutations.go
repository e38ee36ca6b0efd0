package mapper

import (
	"context"
	"fmt"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/store"
)

// InsertNode creates a node at point with the given structural role and
// options, sets center and effective center equal (spec invariant 1:
// "center.z == eCenter.z on insert"), and emits "insertNode" then
// "update".
func (m *Mapper) InsertNode(ctx context.Context, point geometry.Vector3, role store.NodeRole, opts InsertOptions) (store.EntityID, error) {
	id, err := m.store.CreateNode(ctx, opts.Parent, role)
	if err != nil {
		return store.NoEntity, err
	}
	n := m.Node(id)
	if err := n.SetCenter(ctx, point); err != nil {
		return store.NoEntity, err
	}
	if err := n.SetEffectiveCenter(ctx, point); err != nil {
		return store.NoEntity, err
	}
	if err := n.SetRadius(ctx, opts.Radius); err != nil {
		return store.NoEntity, err
	}
	if opts.Type != "" {
		if err := n.SetTypeKey(ctx, opts.Type); err != nil {
			return store.NoEntity, err
		}
	}
	layer := opts.Layer
	if layer == "" {
		if nt, ok := m.NodeTypes.Get(opts.Type); ok {
			layer = nt.Layer
		}
	}
	if layer != "" {
		if err := n.SetLayerKey(ctx, layer); err != nil {
			return store.NoEntity, err
		}
	}
	if opts.Parent != store.NoEntity {
		if ph, ok := m.nodeHandles[opts.Parent]; ok {
			ph.Invalidate()
		}
	}

	if err := m.DeclareUnsavedChanges(ctx); err != nil {
		return id, err
	}
	if err := m.emit(ctx, "insertNode", id); err != nil {
		return id, err
	}
	return id, m.emit(ctx, "update")
}

// TranslateNode moves origin and all of its descendants by offset,
// updating both center and eCenter on every affected node (spec §4.F).
// Emits "translateNodes" once with the full affected set, then
// "updateNode" once per affected node, then "update".
func (m *Mapper) TranslateNode(ctx context.Context, origin store.EntityID, offset geometry.Vector3) error {
	n := m.Node(origin)
	affected, err := n.GetSelfAndAllDescendants(ctx)
	if err != nil {
		return err
	}
	for _, id := range affected {
		h := m.Node(id)
		center, err := h.Center(ctx)
		if err != nil {
			return err
		}
		eCenter, err := h.EffectiveCenter(ctx)
		if err != nil {
			return err
		}
		if err := h.SetCenter(ctx, center.Add(offset)); err != nil {
			return err
		}
		if err := h.SetEffectiveCenter(ctx, eCenter.Add(offset)); err != nil {
			return err
		}
	}

	if err := m.DeclareUnsavedChanges(ctx); err != nil {
		return err
	}
	if err := m.emit(ctx, "translateNodes", affected); err != nil {
		return err
	}
	for _, id := range affected {
		if err := m.emit(ctx, "updateNode", id); err != nil {
			return err
		}
	}
	return m.emit(ctx, "update")
}

// RemoveNodes expands refs to include all descendants, soft-deletes the
// full set, then soft-deletes any parent left childless by the deletion,
// returning the full affected set so the caller can build an inverse
// (spec §4.F).
func (m *Mapper) RemoveNodes(ctx context.Context, refs []store.EntityID) ([]store.EntityID, error) {
	seen := make(map[store.EntityID]bool)
	var affected []store.EntityID
	addAffected := func(id store.EntityID) {
		if !seen[id] {
			seen[id] = true
			affected = append(affected, id)
		}
	}

	parents := make(map[store.EntityID]bool)
	for _, ref := range refs {
		n := m.Node(ref)
		parent, err := n.Parent(ctx)
		if err != nil {
			return nil, err
		}
		if parent != store.NoEntity {
			parents[parent] = true
		}
		set, err := n.GetSelfAndAllDescendants(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range set {
			addAffected(id)
		}
	}

	for _, id := range affected {
		if err := m.store.Invalidate(ctx, id); err != nil {
			return nil, err
		}
		m.invalidateAround(ctx, id)
	}

	for parent := range parents {
		if seen[parent] {
			continue
		}
		children, err := m.store.GetNodeChildren(ctx, parent)
		if err != nil {
			return nil, err
		}
		hasChildren := false
		for child := range children {
			valid, err := m.store.EntityValid(ctx, child)
			if err != nil {
				return nil, err
			}
			if valid {
				hasChildren = true
				break
			}
		}
		if hasChildren {
			continue
		}
		if err := m.store.Invalidate(ctx, parent); err != nil {
			return nil, err
		}
		m.invalidateAround(ctx, parent)
		addAffected(parent)
	}

	if err := m.DeclareUnsavedChanges(ctx); err != nil {
		return affected, err
	}
	if err := m.emit(ctx, "removeNodes", affected); err != nil {
		return affected, err
	}
	return affected, m.emit(ctx, "update")
}

// UnremoveNodes is the reverse of RemoveNodes: it revalidates every ID in
// refs (spec §4.F).
func (m *Mapper) UnremoveNodes(ctx context.Context, refs []store.EntityID) error {
	for _, id := range refs {
		if err := m.store.Revalidate(ctx, id); err != nil {
			return err
		}
		m.invalidateAround(ctx, id)
	}
	if err := m.DeclareUnsavedChanges(ctx); err != nil {
		return err
	}
	if err := m.emit(ctx, "unremoveNodes", refs); err != nil {
		return err
	}
	return m.emit(ctx, "update")
}

// edgeRemover is implemented by stores that support hard edge removal
// (spec §3: "hard removal is rare ... edges").
type edgeRemover interface {
	RemoveEdge(ctx context.Context, id store.EntityID) error
}

// RemoveEdges hard-removes each edge in refs. Emits "removeEdges" then
// "update".
func (m *Mapper) RemoveEdges(ctx context.Context, refs []store.EntityID) error {
	remover, ok := m.store.(edgeRemover)
	if !ok {
		return fmt.Errorf("mapper: store does not support edge removal")
	}
	for _, id := range refs {
		a, b, err := m.store.GetEdgeNodes(ctx, id)
		if err != nil {
			return err
		}
		if err := remover.RemoveEdge(ctx, id); err != nil {
			return err
		}
		delete(m.edgeHandles, id)
		m.invalidateAround(ctx, a)
		m.invalidateAround(ctx, b)
	}
	if err := m.DeclareUnsavedChanges(ctx); err != nil {
		return err
	}
	if err := m.emit(ctx, "removeEdges", refs); err != nil {
		return err
	}
	return m.emit(ctx, "update")
}

// UnremoveEdges recreates an edge between each pair in pairs (spec §3:
// edges have no soft-delete flag, so undo recreates an equivalent edge).
// Returns the new edge IDs in the same order as pairs.
func (m *Mapper) UnremoveEdges(ctx context.Context, pairs [][2]store.EntityID) ([]store.EntityID, error) {
	ids := make([]store.EntityID, 0, len(pairs))
	for _, pair := range pairs {
		id, err := m.store.CreateEdge(ctx, pair[0], pair[1])
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
		m.invalidateAround(ctx, pair[0])
		m.invalidateAround(ctx, pair[1])
	}
	if err := m.DeclareUnsavedChanges(ctx); err != nil {
		return ids, err
	}
	if err := m.emit(ctx, "unremoveEdges", ids); err != nil {
		return ids, err
	}
	return ids, m.emit(ctx, "update")
}
