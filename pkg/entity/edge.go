package entity

import (
	"context"

	"github.com/worldforge/cartograph/pkg/store"
)

// EdgeHandle wraps a store.EntityID known to be an edge.
type EdgeHandle struct {
	Handle
}

// NewEdgeHandle wraps id as an EdgeHandle backed by s.
func NewEdgeHandle(s store.MapStore, id store.EntityID) *EdgeHandle {
	return &EdgeHandle{Handle: Handle{Store: s, ID: id}}
}

// Nodes returns the two endpoints of this edge.
func (e *EdgeHandle) Nodes(ctx context.Context) (a, b store.EntityID, err error) {
	return e.Store.GetEdgeNodes(ctx, e.ID)
}

// OtherNode returns the endpoint opposite to, given one endpoint.
func (e *EdgeHandle) OtherNode(ctx context.Context, endpoint store.EntityID) (store.EntityID, error) {
	return e.Store.GetEdgeOtherNode(ctx, e.ID, endpoint)
}

// Remove hard-removes this edge (spec §4.F: "hard removal is rare ...
// edges") when the store has a RemoveEdge method; callers that need undo
// must recreate an equivalent edge themselves. On a store without
// RemoveEdge it falls back to Handle.Remove, which soft-deletes.
func (e *EdgeHandle) Remove(ctx context.Context) error {
	remover, ok := e.Store.(interface {
		RemoveEdge(ctx context.Context, id store.EntityID) error
	})
	if !ok {
		return e.Handle.Remove(ctx)
	}
	return remover.RemoveEdge(ctx, e.ID)
}

// DirectedEdgeHandle pairs an EdgeHandle with the endpoint it was reached
// from, mirroring store.DirectedEdge (the result shape of
// MapStore.GetNodeEdges / NodeHandle.GetEdges).
type DirectedEdgeHandle struct {
	EdgeHandle
	Start store.EntityID
}

// NewDirectedEdgeHandle wraps a store.DirectedEdge as a DirectedEdgeHandle.
func NewDirectedEdgeHandle(s store.MapStore, e store.DirectedEdge) *DirectedEdgeHandle {
	return &DirectedEdgeHandle{EdgeHandle: EdgeHandle{Handle: Handle{Store: s, ID: e.Edge}}, Start: e.Start}
}

// End returns the endpoint opposite Start.
func (d *DirectedEdgeHandle) End(ctx context.Context) (store.EntityID, error) {
	return d.OtherNode(ctx, d.Start)
}
