package entity

import (
	"context"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/store"
)

// NodeHandle wraps a store.EntityID known to be a node, caching the
// traversal results that are expensive to recompute (descendants, edges,
// neighbors). Caches are populated lazily on first access and discarded
// by Invalidate, which callers must run after any mutation that could
// change hierarchy or adjacency (spec §9).
type NodeHandle struct {
	Handle

	descendants    []store.EntityID
	descendantsSet bool
	edges          []store.DirectedEdge
	edgesSet       bool
	neighbors      []store.EntityID
	neighborsSet   bool
}

// NewNodeHandle wraps id as a NodeHandle backed by s.
func NewNodeHandle(s store.MapStore, id store.EntityID) *NodeHandle {
	return &NodeHandle{Handle: Handle{Store: s, ID: id}}
}

// Invalidate discards every cache on this handle. Call after any
// mutation to this node's hierarchy, edges, or this node's own identity.
func (n *NodeHandle) Invalidate() {
	n.descendants = nil
	n.descendantsSet = false
	n.edges = nil
	n.edgesSet = false
	n.neighbors = nil
	n.neighborsSet = false
}

// Role returns the node's structural role ("object", "point", "path").
func (n *NodeHandle) Role(ctx context.Context) (store.NodeRole, error) {
	return n.Store.GetNodeRole(ctx, n.ID)
}

// Parent returns the parent node's ID, or store.NoEntity for a root.
func (n *NodeHandle) Parent(ctx context.Context) (store.EntityID, error) {
	return n.Store.GetNodeParent(ctx, n.ID)
}

// SetParent reparents this node. Invalidates this handle's own caches;
// the caller is responsible for invalidating any handle it holds on the
// old and new parent, since their children lists changed too.
func (n *NodeHandle) SetParent(ctx context.Context, parent store.EntityID) error {
	if err := n.Store.SetNodeParent(ctx, n.ID, parent); err != nil {
		return err
	}
	n.Invalidate()
	return nil
}

// Children returns this node's direct children in insertion order.
func (n *NodeHandle) Children(ctx context.Context) ([]store.EntityID, error) {
	seq, err := n.Store.GetNodeChildren(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	var out []store.EntityID
	for id := range seq {
		out = append(out, id)
	}
	return out, nil
}

// HasChildren reports whether this node has at least one child.
func (n *NodeHandle) HasChildren(ctx context.Context) (bool, error) {
	return n.Store.NodeHasChildren(ctx, n.ID)
}

// GetAllDescendants returns every descendant of this node (not including
// itself), computed depth-first and cached until Invalidate.
func (n *NodeHandle) GetAllDescendants(ctx context.Context) ([]store.EntityID, error) {
	if n.descendantsSet {
		return n.descendants, nil
	}
	var out []store.EntityID
	stack := []store.EntityID{n.ID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur != n.ID {
			out = append(out, cur)
		}
		seq, err := n.Store.GetNodeChildren(ctx, cur)
		if err != nil {
			return nil, err
		}
		var kids []store.EntityID
		for child := range seq {
			kids = append(kids, child)
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	n.descendants = out
	n.descendantsSet = true
	return out, nil
}

// GetSelfAndAllDescendants returns this node's ID followed by every
// descendant.
func (n *NodeHandle) GetSelfAndAllDescendants(ctx context.Context) ([]store.EntityID, error) {
	descendants, err := n.GetAllDescendants(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]store.EntityID, 0, len(descendants)+1)
	out = append(out, n.ID)
	out = append(out, descendants...)
	return out, nil
}

// GetEdges returns every directed edge touching this node, cached until
// Invalidate.
func (n *NodeHandle) GetEdges(ctx context.Context) ([]store.DirectedEdge, error) {
	if n.edgesSet {
		return n.edges, nil
	}
	seq, err := n.Store.GetNodeEdges(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	var out []store.DirectedEdge
	for e := range seq {
		out = append(out, e)
	}
	n.edges = out
	n.edgesSet = true
	return out, nil
}

// GetNeighbors returns the node at the far end of each of this node's
// edges, cached until Invalidate.
func (n *NodeHandle) GetNeighbors(ctx context.Context) ([]store.EntityID, error) {
	if n.neighborsSet {
		return n.neighbors, nil
	}
	edges, err := n.GetEdges(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]store.EntityID, 0, len(edges))
	for _, e := range edges {
		other, err := n.Store.GetEdgeOtherNode(ctx, e.Edge, n.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, other)
	}
	n.neighbors = out
	n.neighborsSet = true
	return out, nil
}

// GetSelfAndNeighbors returns this node's ID followed by each neighbor.
func (n *NodeHandle) GetSelfAndNeighbors(ctx context.Context) ([]store.EntityID, error) {
	neighbors, err := n.GetNeighbors(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]store.EntityID, 0, len(neighbors)+1)
	out = append(out, n.ID)
	out = append(out, neighbors...)
	return out, nil
}

// Center returns the node's nominal position (spec §3: "center").
func (n *NodeHandle) Center(ctx context.Context) (geometry.Vector3, error) {
	return getVector3(ctx, n.Store, n.ID, store.PropCenter)
}

// SetCenter sets the nominal position. On insert, spec invariant 1
// requires center.z == eCenter.z; callers that create a node are
// responsible for calling SetEffectiveCenter with the same value.
func (n *NodeHandle) SetCenter(ctx context.Context, v geometry.Vector3) error {
	return n.Store.SetPVector3(ctx, n.ID, store.PropCenter, v)
}

// EffectiveCenter returns the position used for rendering, which may
// differ from Center after cleanup averaging (spec §3: "eCenter").
func (n *NodeHandle) EffectiveCenter(ctx context.Context) (geometry.Vector3, error) {
	return getVector3(ctx, n.Store, n.ID, store.PropECenter)
}

// SetEffectiveCenter sets the render-time position.
func (n *NodeHandle) SetEffectiveCenter(ctx context.Context, v geometry.Vector3) error {
	return n.Store.SetPVector3(ctx, n.ID, store.PropECenter, v)
}

// Radius returns the node's influence radius in world units.
func (n *NodeHandle) Radius(ctx context.Context) (float64, error) {
	return getNumber(ctx, n.Store, n.ID, store.PropRadius)
}

// SetRadius sets the node's influence radius.
func (n *NodeHandle) SetRadius(ctx context.Context, r float64) error {
	return n.Store.SetPNumber(ctx, n.ID, store.PropRadius, r)
}

// TypeKey returns the key into the node-type registry.
func (n *NodeHandle) TypeKey(ctx context.Context) (string, error) {
	return getString(ctx, n.Store, n.ID, store.PropType)
}

// SetTypeKey sets the key into the node-type registry.
func (n *NodeHandle) SetTypeKey(ctx context.Context, key string) error {
	return n.Store.SetPString(ctx, n.ID, store.PropType, key)
}

// LayerKey returns the key into the layer registry.
func (n *NodeHandle) LayerKey(ctx context.Context) (string, error) {
	return getString(ctx, n.Store, n.ID, store.PropLayer)
}

// SetLayerKey sets the key into the layer registry.
func (n *NodeHandle) SetLayerKey(ctx context.Context, key string) error {
	return n.Store.SetPString(ctx, n.ID, store.PropLayer, key)
}

// Name returns the node's displayed label, or "" if unset.
func (n *NodeHandle) Name(ctx context.Context) (string, error) {
	return getString(ctx, n.Store, n.ID, store.PropName)
}

// SetName sets the node's displayed label.
func (n *NodeHandle) SetName(ctx context.Context, name string) error {
	return n.Store.SetPString(ctx, n.ID, store.PropName, name)
}
