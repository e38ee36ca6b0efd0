package entity

import (
	"context"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/store"
)

// Handle is the common base embedded by every entity wrapper: a store
// reference plus the ID it addresses. It carries no cached state itself.
type Handle struct {
	Store store.MapStore
	ID    store.EntityID
}

// Valid reports whether this entity is currently valid (not soft-deleted).
func (h Handle) Valid(ctx context.Context) (bool, error) {
	return h.Store.EntityValid(ctx, h.ID)
}

// Exists reports whether this entity was ever created (including if it
// has since been soft-deleted).
func (h Handle) Exists(ctx context.Context) (bool, error) {
	return h.Store.EntityExists(ctx, h.ID)
}

// Remove soft-deletes this entity (and, for nodes, cascades to
// descendants per the store's Invalidate semantics).
func (h Handle) Remove(ctx context.Context) error {
	return h.Store.Invalidate(ctx, h.ID)
}

// Unremove restores a soft-deleted entity. It does not cascade; callers
// that removed a subtree must unremove each member themselves (spec
// §4.F: removeNodes/unremoveNodes operate on the full affected set).
func (h Handle) Unremove(ctx context.Context) error {
	return h.Store.Revalidate(ctx, h.ID)
}

func getNumber(ctx context.Context, s store.MapStore, id store.EntityID, name string) (float64, error) {
	v, ok, err := s.GetPNumber(ctx, id, name)
	if err != nil || !ok {
		return 0, err
	}
	return v, nil
}

func getString(ctx context.Context, s store.MapStore, id store.EntityID, name string) (string, error) {
	v, ok, err := s.GetPString(ctx, id, name)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

func getVector3(ctx context.Context, s store.MapStore, id store.EntityID, name string) (geometry.Vector3, error) {
	v, ok, err := s.GetPVector3(ctx, id, name)
	if err != nil || !ok {
		return geometry.Vector3{}, err
	}
	return v, nil
}
