package store

import "context"

// RemoveEdge hard-removes an edge (spec §4.F: "hard removal is rare ...
// edges"). Unlike node soft-delete, edges have no undo-friendly valid
// flag in the reference store's node_edge bookkeeping — Mapper is
// responsible for recreating an equivalent edge on undo.
func (s *MemStore) RemoveEdge(ctx context.Context, id EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.edges[id]
	if !ok {
		return ErrNotFound
	}
	s.removeNodeEdgeLocked(e.a, id)
	s.removeNodeEdgeLocked(e.b, id)
	delete(s.edges, id)
	delete(s.entities, id)
	delete(s.properties, id)
	return nil
}
